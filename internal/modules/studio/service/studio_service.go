package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	projectdomain "recstudio/internal/modules/project/domain"
	"recstudio/internal/modules/studio/domain"
	studioout "recstudio/internal/modules/studio/port/out"
	"recstudio/internal/platform/clock"
	apperrors "recstudio/internal/platform/errors"
	"recstudio/internal/platform/id"
)

const (
	defaultTickInterval = time.Second
	phaseDelay          = 200 * time.Millisecond
	minRawBytes         = 1024
)

// Service is the daemon core: it owns every live capture session and every
// render task, persists manifests, and pushes status to connected clients.
type Service struct {
	recorder  studioout.Recorder
	encoder   studioout.Encoder
	manifests studioout.ManifestStore
	index     studioout.ProjectIndex
	events    studioout.EventSink
	clk       clock.Clock
	sleeper   clock.Sleeper
	ids       id.Generator
	logger    hclog.Logger

	appVersion   string
	tickInterval time.Duration
	shutdown     func()

	mu       sync.Mutex
	sessions map[string]*liveSession
	tasks    map[string]*domain.Task
}

type liveSession struct {
	session *domain.Session
	handle  studioout.CaptureHandle
}

type Deps struct {
	Recorder  studioout.Recorder
	Encoder   studioout.Encoder
	Manifests studioout.ManifestStore
	Index     studioout.ProjectIndex
	Events    studioout.EventSink
	Clock     clock.Clock
	Sleeper   clock.Sleeper
	IDs       id.Generator
	Logger    hclog.Logger

	AppVersion   string
	TickInterval time.Duration
	OnShutdown   func()
}

func NewService(deps Deps) *Service {
	if deps.Clock == nil {
		deps.Clock = clock.SystemClock{}
	}
	if deps.Sleeper == nil {
		deps.Sleeper = clock.SystemSleeper{}
	}
	if deps.IDs == nil {
		deps.IDs = id.RandomHex{}
	}
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.TickInterval <= 0 {
		deps.TickInterval = defaultTickInterval
	}
	if deps.OnShutdown == nil {
		deps.OnShutdown = func() {}
	}
	return &Service{
		recorder:     deps.Recorder,
		encoder:      deps.Encoder,
		manifests:    deps.Manifests,
		index:        deps.Index,
		events:       deps.Events,
		clk:          deps.Clock,
		sleeper:      deps.Sleeper,
		ids:          deps.IDs,
		logger:       deps.Logger.Named("studio"),
		appVersion:   deps.AppVersion,
		tickInterval: deps.TickInterval,
		shutdown:     deps.OnShutdown,
		sessions:     map[string]*liveSession{},
		tasks:        map[string]*domain.Task{},
	}
}

// RebuildIndex scans the manifest store and repopulates the project index.
// Called once at daemon startup so the browser survives index loss.
func (s *Service) RebuildIndex(ctx context.Context) error {
	ids, err := s.manifests.ProjectIDs()
	if err != nil {
		return err
	}
	for _, projectID := range ids {
		manifest, err := s.manifests.Load(projectID)
		if err != nil {
			s.logger.Warn("skipping unreadable manifest", "project", projectID, "error", err)
			continue
		}
		s.indexManifest(ctx, projectID, manifest)
	}
	return nil
}

func (s *Service) StartRecording(ctx context.Context, profile projectdomain.RecordingProfile) (string, error) {
	if err := s.recorder.EnsureAvailable(ctx); err != nil {
		return "", err
	}
	capability := s.recorder.Capability(ctx)
	if !capability.SupportsScreenCapture {
		return "", apperrors.WithSuggestion("PLATFORM_NOT_SUPPORTED", "this platform has no screen capture support", "recording requires windows or macos")
	}

	s.mu.Lock()
	for _, live := range s.sessions {
		state := live.session.Machine.State()
		if state == domain.RecordingActive || state == domain.RecordingPaused {
			s.mu.Unlock()
			return "", apperrors.WithSuggestion("RECORDING_ALREADY_ACTIVE", "another recording session is in progress", "stop the current recording before starting a new one")
		}
	}
	s.mu.Unlock()

	degrade := ""
	if profile.SystemAudioEnabled && !capability.SupportsSystemAudio {
		profile.SystemAudioEnabled = false
		degrade = capability.SystemAudioDegradeMessage
		if degrade == "" {
			degrade = "system audio capture is unavailable, continuing without it"
		}
	}
	if profile.CaptureMode == "window" && strings.TrimSpace(profile.WindowTarget) == "" {
		profile.CaptureMode = "fullscreen"
		degrade = "no window target given, downgraded to full screen capture"
	}

	sessionID := s.ids.New()
	projectID := sessionID
	now := s.clk.Now()

	manifest := projectdomain.NewManifest(profile, s.appVersion, now)
	manifest.Status = projectdomain.StatusRecording
	manifest.Artifacts.RawRecordingPath = s.manifests.RawRecordingPath(projectID)
	manifest.Artifacts.CursorTrackPath = s.manifests.CursorTrackPath(projectID)
	if err := s.manifests.Save(projectID, manifest); err != nil {
		return "", err
	}
	s.indexManifest(ctx, projectID, manifest)

	handle, spawnDegrade, err := s.recorder.Start(ctx, profile, manifest.Artifacts.RawRecordingPath)
	if err != nil {
		return "", err
	}
	if degrade == "" {
		degrade = spawnDegrade
	}
	if err := s.manifests.MarkRecovery(projectID); err != nil {
		s.logger.Warn("recovery marker write failed", "project", projectID, "error", err)
	}

	session := domain.NewSession(sessionID, profile, now)
	_ = session.Machine.Start()
	session.DegradeMessage = degrade

	s.mu.Lock()
	s.sessions[sessionID] = &liveSession{session: session, handle: handle}
	event := s.sessionEventLocked(session, "recording started")
	s.mu.Unlock()

	s.events.Publish(domain.RecordingStatusChannel, event)
	go s.sessionTicker(sessionID)
	return sessionID, nil
}

func (s *Service) PauseRecording(_ context.Context, sessionID string) error {
	s.mu.Lock()
	live, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return sessionNotFound(sessionID)
	}
	if err := live.session.Machine.Pause(); err != nil {
		s.mu.Unlock()
		return err
	}
	handle := live.handle
	event := s.sessionEventLocked(live.session, "recording paused")
	s.mu.Unlock()

	if err := handle.Pause(); err != nil {
		return err
	}
	s.events.Publish(domain.RecordingStatusChannel, event)
	return nil
}

func (s *Service) ResumeRecording(_ context.Context, sessionID string) error {
	s.mu.Lock()
	live, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return sessionNotFound(sessionID)
	}
	if err := live.session.Machine.Resume(); err != nil {
		s.mu.Unlock()
		return err
	}
	handle := live.handle
	event := s.sessionEventLocked(live.session, "recording resumed")
	s.mu.Unlock()

	if err := handle.Resume(); err != nil {
		return err
	}
	s.events.Publish(domain.RecordingStatusChannel, event)
	return nil
}

func (s *Service) StopRecording(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	live, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return "", sessionNotFound(sessionID)
	}
	if err := live.session.Machine.Stop(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	delete(s.sessions, sessionID)
	session := live.session
	handle := live.handle
	s.mu.Unlock()

	projectID := session.ProjectID
	result, stopErr := handle.Stop(ctx)
	if stopErr != nil || result.Bytes <= minRawBytes {
		appErr := apperrors.WithSuggestion("RECORDING_OUTPUT_MISSING", "recording produced no usable video file", "check microphone and system audio devices, then record again")
		failed := projectdomain.NewManifest(session.Profile, s.appVersion, s.clk.Now())
		failed.Status = projectdomain.StatusRecording
		failed.LastError = &appErr
		failed.Artifacts.RawRecordingPath = s.manifests.RawRecordingPath(projectID)
		failed.Artifacts.CursorTrackPath = s.manifests.CursorTrackPath(projectID)
		if err := s.manifests.Save(projectID, failed); err != nil {
			s.logger.Warn("failed manifest write after bad stop", "project", projectID, "error", err)
		}
		s.events.Publish(domain.RecordingStatusChannel, domain.RecordingStatusEvent{
			SessionID:      sessionID,
			Status:         string(domain.RecordingErrored),
			SourceLabel:    "recording failed",
			Detail:         "recording output file missing",
			DegradeMessage: session.DegradeMessage,
		})
		return "", appErr
	}

	now := s.clk.Now()
	durationMS := session.DurationMS(now)
	manifest, err := s.manifests.Load(projectID)
	if err != nil {
		manifest = projectdomain.NewManifest(session.Profile, s.appVersion, now)
	}
	manifest.Status = projectdomain.StatusReadyToEdit
	manifest.Timeline.TrimEndMS = durationMS
	manifest.UpdatedAt = now
	manifest.Artifacts.RawRecordingPath = s.manifests.RawRecordingPath(projectID)
	manifest.Artifacts.CursorTrackPath = s.manifests.CursorTrackPath(projectID)
	if err := s.manifests.WriteCursorTrack(projectID, domain.NormalizeCursorTrack(nil, durationMS)); err != nil {
		return "", err
	}
	if err := s.manifests.Save(projectID, manifest); err != nil {
		return "", err
	}
	if err := s.manifests.ClearRecovery(projectID); err != nil {
		s.logger.Warn("recovery marker clear failed", "project", projectID, "error", err)
	}
	s.indexManifest(ctx, projectID, manifest)

	s.events.Publish(domain.RecordingStatusChannel, domain.RecordingStatusEvent{
		SessionID:      sessionID,
		Status:         string(domain.RecordingStopped),
		DurationMS:     durationMS,
		SourceLabel:    "recording complete",
		Detail:         "recording stopped, ready to edit",
		DegradeMessage: session.DegradeMessage,
	})
	return projectID, nil
}

// sessionTicker emits a status heartbeat once per interval and watches for
// the capture process dying underneath the session.
func (s *Service) sessionTicker(sessionID string) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		live, ok := s.sessions[sessionID]
		if !ok {
			s.mu.Unlock()
			return
		}
		if live.handle.Exited() {
			live.session.Machine.Fail()
			delete(s.sessions, sessionID)
			session := live.session
			duration := session.DurationMS(s.clk.Now())
			s.mu.Unlock()
			s.events.Publish(domain.RecordingStatusChannel, domain.RecordingStatusEvent{
				SessionID:      sessionID,
				Status:         string(domain.RecordingErrored),
				DurationMS:     duration,
				SourceLabel:    "recording interrupted",
				Detail:         "recording process exited unexpectedly, check permissions and input sources",
				DegradeMessage: session.DegradeMessage,
			})
			return
		}
		event := s.sessionEventLocked(live.session, "recording status update")
		s.mu.Unlock()
		s.events.Publish(domain.RecordingStatusChannel, event)
	}
}

func (s *Service) sessionEventLocked(session *domain.Session, detail string) domain.RecordingStatusEvent {
	return domain.RecordingStatusEvent{
		SessionID:      session.ID,
		Status:         string(session.Machine.State()),
		DurationMS:     session.DurationMS(s.clk.Now()),
		SourceLabel:    session.SourceLabel(),
		Detail:         detail,
		DegradeMessage: session.DegradeMessage,
	}
}

func (s *Service) LoadProject(_ context.Context, projectID string) (projectdomain.Manifest, error) {
	if err := validateProjectID(projectID); err != nil {
		return projectdomain.Manifest{}, err
	}
	return s.manifests.Load(projectID)
}

func (s *Service) PatchTimeline(ctx context.Context, projectID string, patch projectdomain.TimelinePatch) error {
	if err := validateProjectID(projectID); err != nil {
		return err
	}
	manifest, err := s.manifests.Load(projectID)
	if err != nil {
		return err
	}
	manifest.ApplyTimeline(patch)
	if err := manifest.ValidateTimeline(); err != nil {
		return err
	}
	manifest.UpdatedAt = s.clk.Now()
	if err := s.manifests.Save(projectID, manifest); err != nil {
		return err
	}
	s.indexManifest(ctx, projectID, manifest)
	return nil
}

func (s *Service) PatchCameraMotion(ctx context.Context, projectID string, patch projectdomain.CameraMotionPatch) error {
	if err := validateProjectID(projectID); err != nil {
		return err
	}
	manifest, err := s.manifests.Load(projectID)
	if err != nil {
		return err
	}
	manifest.ApplyCameraMotion(patch)
	manifest.UpdatedAt = s.clk.Now()
	if err := s.manifests.Save(projectID, manifest); err != nil {
		return err
	}
	s.indexManifest(ctx, projectID, manifest)
	return nil
}

func (s *Service) ListProjects(ctx context.Context) ([]projectdomain.ListItem, error) {
	return s.index.List(ctx)
}

func (s *Service) UpdateProjectTitle(ctx context.Context, projectID, title string) error {
	if err := validateProjectID(projectID); err != nil {
		return err
	}
	manifest, err := s.manifests.Load(projectID)
	if err != nil {
		return err
	}
	manifest.Title = strings.TrimSpace(title)
	manifest.UpdatedAt = s.clk.Now()
	if err := s.manifests.Save(projectID, manifest); err != nil {
		return err
	}
	s.indexManifest(ctx, projectID, manifest)
	return nil
}

func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	if err := validateProjectID(projectID); err != nil {
		return err
	}
	s.mu.Lock()
	for _, live := range s.sessions {
		if live.session.ProjectID == projectID {
			s.mu.Unlock()
			return apperrors.WithSuggestion("PROJECT_BUSY", "project has a recording in progress", "stop the recording before deleting the project")
		}
	}
	for _, task := range s.tasks {
		if task.ProjectID == projectID && task.Active() {
			s.mu.Unlock()
			return apperrors.WithSuggestion("PROJECT_BUSY", "project has an export in progress", "wait for the export to finish before deleting the project")
		}
	}
	for taskID, task := range s.tasks {
		if task.ProjectID == projectID {
			delete(s.tasks, taskID)
		}
	}
	s.mu.Unlock()

	if err := s.manifests.Delete(projectID); err != nil {
		return err
	}
	return s.index.Remove(ctx, projectID)
}

func (s *Service) RecoverProjects(_ context.Context) ([]projectdomain.Recoverable, error) {
	ids, err := s.manifests.ProjectIDs()
	if err != nil {
		return nil, err
	}
	recovered := []projectdomain.Recoverable{}
	for _, projectID := range ids {
		if !s.manifests.HasRecoveryMarker(projectID) {
			continue
		}
		if _, err := s.manifests.Load(projectID); err != nil {
			continue
		}
		if s.manifests.RawRecordingSize(projectID) <= 0 {
			continue
		}
		recovered = append(recovered, projectdomain.Recoverable{
			ProjectID: projectID,
			Reason:    "interrupted recording detected, project can be recovered",
			Path:      s.manifests.ProjectDir(projectID),
		})
	}
	return recovered, nil
}

func (s *Service) StartExport(ctx context.Context, projectID string, profile projectdomain.ExportProfile) (string, error) {
	if err := validateProjectID(projectID); err != nil {
		return "", err
	}
	s.mu.Lock()
	for _, task := range s.tasks {
		if task.ProjectID == projectID && task.Active() {
			s.mu.Unlock()
			return "", exportAlreadyActive()
		}
	}
	s.mu.Unlock()

	manifest, err := s.manifests.Load(projectID)
	if err != nil {
		return "", err
	}
	manifest.Status = projectdomain.StatusExporting
	manifest.Export = profile
	manifest.UpdatedAt = s.clk.Now()
	if err := s.manifests.Save(projectID, manifest); err != nil {
		return "", err
	}
	s.indexManifest(ctx, projectID, manifest)

	taskID := s.ids.New()
	task := domain.NewTask(taskID, projectID, profile, 0)

	s.mu.Lock()
	for _, existing := range s.tasks {
		if existing.ProjectID == projectID && existing.Active() {
			s.mu.Unlock()
			return "", exportAlreadyActive()
		}
	}
	s.tasks[taskID] = task
	s.mu.Unlock()

	go s.runExport(taskID)
	return taskID, nil
}

func (s *Service) RetryExport(_ context.Context, taskID string) (string, error) {
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return "", exportTaskNotFound(taskID)
	}
	for otherID, other := range s.tasks {
		if otherID != taskID && other.ProjectID == task.ProjectID && other.Active() {
			s.mu.Unlock()
			return "", exportAlreadyActive()
		}
	}
	newID := s.ids.New()
	replacement := domain.NewTask(newID, task.ProjectID, task.Profile, task.Retries+1)
	s.tasks[newID] = replacement
	s.mu.Unlock()

	go s.runExport(newID)
	return newID, nil
}

func (s *Service) ExportTaskStatus(_ context.Context, taskID string) (domain.TaskReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return domain.TaskReport{}, exportTaskNotFound(taskID)
	}
	return taskReportLocked(task), nil
}

func (s *Service) ListDevices(ctx context.Context) ([]domain.Device, error) {
	return s.recorder.ListAudioDevices(ctx), nil
}

func (s *Service) Capability(ctx context.Context) (domain.Capability, error) {
	return s.recorder.Capability(ctx), nil
}

func (s *Service) Shutdown(context.Context) error {
	s.shutdown()
	return nil
}

func (s *Service) runExport(taskID string) {
	if err := s.exportPipeline(taskID); err != nil {
		appErr := apperrors.Normalize(err, "IO_FAIL", "export failed")
		s.mu.Lock()
		task, ok := s.tasks[taskID]
		if !ok {
			s.mu.Unlock()
			return
		}
		_ = task.Machine.Fail()
		task.Progress = 100
		task.Detail = appErr.Message
		task.LastError = &appErr
		projectID := task.ProjectID
		report := taskReportLocked(task)
		s.mu.Unlock()

		s.events.Publish(domain.ExportProgressChannel, report)
		s.markExportFailed(projectID, appErr)
	}
}

func (s *Service) exportPipeline(taskID string) error {
	ctx := context.Background()
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	projectID := task.ProjectID
	profile := task.Profile
	s.mu.Unlock()

	manifest, err := s.manifests.Load(projectID)
	if err != nil {
		return err
	}
	if manifest.Artifacts.RawRecordingPath == "" {
		return apperrors.WithSuggestion("PROJECT_ASSET_MISSING", "project raw recording path missing", "finish a recording before exporting")
	}
	if s.manifests.RawRecordingSize(projectID) <= 0 {
		return apperrors.WithSuggestion("PROJECT_ASSET_MISSING", "recording asset file not found", "record again before exporting")
	}

	hw := s.encoder.DetectHardware(ctx)
	s.logger.Info("hardware encoder probe", "detail", hw.Detail)

	phases := []struct {
		state    domain.ExportState
		progress int
		detail   string
	}{
		{domain.ExportQueued, 0, "export task queued"},
		{domain.ExportRunning, 20, "parsing project configuration"},
		{domain.ExportRunning, 50, "encoding video stream"},
	}
	for _, phase := range phases {
		s.sleeper.Sleep(phaseDelay)
		s.advanceTask(taskID, phase.state, phase.progress, phase.detail, "")
	}

	result, encodeErr := s.encoder.Encode(ctx, studioout.EncodeJob{
		Manifest:   manifest,
		InputPath:  manifest.Artifacts.RawRecordingPath,
		CursorPath: manifest.Artifacts.CursorTrackPath,
		OutputPath: s.manifests.ExportOutputPath(projectID),
		Profile:    profile,
	})
	logBody := result.Stderr
	if logBody == "" {
		logBody = "no stderr output"
	}
	logPath, logErr := s.manifests.WriteExportLog(projectID, taskID, logBody)
	if logErr != nil {
		s.logger.Warn("export log write failed", "task", taskID, "error", logErr)
	}
	if encodeErr != nil {
		return encodeErr
	}

	if result.UsedCodec == "libx264" && hw.Codec != "libx264" {
		s.advanceTask(taskID, domain.ExportFallback, 62, "hardware encoding failed, fell back to software encoding", "")
	}
	s.advanceTask(taskID, domain.ExportRunning, 85, "muxing mp4 container", "")

	outputPath := s.manifests.ExportOutputPath(projectID)
	s.markExportSuccess(ctx, projectID, outputPath, logPath, result.Stderr)
	s.advanceTask(taskID, domain.ExportSuccess, 100, "export complete", outputPath)
	return nil
}

// advanceTask moves the task machine toward the given state, bumps its
// progress monotonically and publishes the resulting report.
func (s *Service) advanceTask(taskID string, state domain.ExportState, progress int, detail, outputPath string) {
	s.mu.Lock()
	task, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return
	}
	switch state {
	case domain.ExportRunning:
		if task.Machine.State() == domain.ExportQueued {
			_ = task.Machine.Start()
		}
	case domain.ExportFallback:
		_ = task.Machine.Fallback()
	case domain.ExportSuccess:
		_ = task.Machine.Succeed()
	case domain.ExportFailed:
		_ = task.Machine.Fail()
	}
	if progress > task.Progress {
		task.Progress = progress
	}
	task.Detail = detail
	report := taskReportLocked(task)
	report.OutputPath = outputPath
	s.mu.Unlock()

	s.events.Publish(domain.ExportProgressChannel, report)
}

func (s *Service) markExportSuccess(ctx context.Context, projectID, outputPath, logPath, stderr string) {
	manifest, err := s.manifests.Load(projectID)
	if err != nil {
		s.logger.Warn("manifest load after export failed", "project", projectID, "error", err)
		return
	}
	manifest.Status = projectdomain.StatusExportSucceeded
	manifest.UpdatedAt = s.clk.Now()
	manifest.Artifacts.LastExportPath = outputPath
	manifest.Artifacts.ExportLogPath = logPath
	manifest.LastError = nil

	if summary, err := s.encoder.Probe(ctx, outputPath); err == nil {
		manifest.Quality.AVOffsetMS = domain.AVOffsetMS(summary.VideoDurationMS, summary.AudioDurationMS)
		if manifest.Timeline.TrimEndMS == 0 {
			manifest.Timeline.TrimEndMS = summary.ContainerDurationMS
		}
	}
	if strings.Contains(stderr, "drop=") {
		manifest.Quality.AvgDropRate, manifest.Quality.PeakDropRate = domain.ParseDropRates(stderr)
	} else {
		manifest.Quality.AvgDropRate = -1
		manifest.Quality.PeakDropRate = -1
	}

	if err := s.manifests.Save(projectID, manifest); err != nil {
		s.logger.Warn("manifest save after export failed", "project", projectID, "error", err)
		return
	}
	s.indexManifest(ctx, projectID, manifest)
}

func (s *Service) markExportFailed(projectID string, appErr apperrors.AppError) {
	manifest, err := s.manifests.Load(projectID)
	if err != nil {
		s.logger.Warn("manifest load after failed export", "project", projectID, "error", err)
		return
	}
	manifest.Status = projectdomain.StatusExportFailed
	manifest.LastError = &appErr
	manifest.UpdatedAt = s.clk.Now()
	if err := s.manifests.Save(projectID, manifest); err != nil {
		s.logger.Warn("manifest save after failed export", "project", projectID, "error", err)
		return
	}
	s.indexManifest(context.Background(), projectID, manifest)
}

func (s *Service) indexManifest(ctx context.Context, projectID string, manifest projectdomain.Manifest) {
	duration := manifest.Timeline.TrimEndMS - manifest.Timeline.TrimStartMS
	if duration < 0 {
		duration = 0
	}
	item := projectdomain.ListItem{
		ProjectID:  projectID,
		Title:      manifest.Title,
		CreatedAt:  manifest.CreatedAt,
		UpdatedAt:  manifest.UpdatedAt,
		Status:     manifest.Status,
		DurationMS: duration,
		HasExport:  manifest.Artifacts.LastExportPath != "",
		ExportPath: manifest.Artifacts.LastExportPath,
		RawPath:    manifest.Artifacts.RawRecordingPath,
	}
	if err := s.index.Upsert(ctx, item); err != nil {
		s.logger.Warn("project index update failed", "project", projectID, "error", err)
	}
}

func taskReportLocked(task *domain.Task) domain.TaskReport {
	report := domain.TaskReport{
		TaskID:   task.ID,
		Status:   string(task.Machine.State()),
		Progress: task.Progress,
		Retries:  task.Retries,
		Detail:   task.Detail,
	}
	if task.LastError != nil {
		if raw, err := json.Marshal(task.LastError); err == nil {
			report.Error = string(raw)
		}
	}
	return report
}

func sessionNotFound(sessionID string) error {
	return apperrors.New("SESSION_NOT_FOUND", "session not found: "+sessionID)
}

func exportAlreadyActive() error {
	return apperrors.WithSuggestion("EXPORT_ALREADY_ACTIVE", "this project already has an export in progress", "wait for the running export to finish first")
}

func exportTaskNotFound(taskID string) error {
	return apperrors.WithSuggestion("EXPORT_TASK_NOT_FOUND", "export task not found: "+taskID, "start a new export")
}

func validateProjectID(projectID string) error {
	trimmed := strings.TrimSpace(projectID)
	if trimmed == "" || strings.ContainsAny(trimmed, `/\`) || strings.Contains(trimmed, "..") {
		return apperrors.WithSuggestion("INVALID_PROJECT_ID", "invalid project id", "use a project id from the list, not a path")
	}
	return nil
}
