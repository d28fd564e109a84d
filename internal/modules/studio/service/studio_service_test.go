package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	projectdomain "recstudio/internal/modules/project/domain"
	"recstudio/internal/modules/studio/domain"
	studioout "recstudio/internal/modules/studio/port/out"
	apperrors "recstudio/internal/platform/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type nopSleeper struct{}

func (nopSleeper) Sleep(time.Duration) {}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fakeHandle struct {
	mu         sync.Mutex
	paused     int
	resumed    int
	stopped    int
	exited     bool
	stopResult studioout.CaptureResult
	stopErr    error
}

func (h *fakeHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused++
	return nil
}

func (h *fakeHandle) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resumed++
	return nil
}

func (h *fakeHandle) Stop(context.Context) (studioout.CaptureResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped++
	return h.stopResult, h.stopErr
}

func (h *fakeHandle) Exited() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exited
}

func (h *fakeHandle) setExited() {
	h.mu.Lock()
	h.exited = true
	h.mu.Unlock()
}

type fakeRecorder struct {
	mu         sync.Mutex
	capability domain.Capability
	handle     *fakeHandle
	startErr   error
	degrade    string
	started    []projectdomain.RecordingProfile
}

func (r *fakeRecorder) EnsureAvailable(context.Context) error { return nil }

func (r *fakeRecorder) Capability(context.Context) domain.Capability { return r.capability }

func (r *fakeRecorder) ListAudioDevices(context.Context) []domain.Device {
	return []domain.Device{{ID: "mic0", Label: "Built-in Microphone", Kind: "microphone"}}
}

func (r *fakeRecorder) Start(_ context.Context, profile projectdomain.RecordingProfile, _ string) (studioout.CaptureHandle, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return nil, "", r.startErr
	}
	r.started = append(r.started, profile)
	return r.handle, r.degrade, nil
}

func (r *fakeRecorder) lastProfile(t *testing.T) projectdomain.RecordingProfile {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.started) == 0 {
		t.Fatal("recorder never started")
	}
	return r.started[len(r.started)-1]
}

type fakeEncoder struct {
	mu        sync.Mutex
	hw        studioout.HardwareEncoder
	result    studioout.EncodeResult
	encodeErr error
	summary   studioout.MediaSummary
	probeErr  error
	gate      chan struct{}
	jobs      []studioout.EncodeJob
}

func (e *fakeEncoder) DetectHardware(context.Context) studioout.HardwareEncoder { return e.hw }

func (e *fakeEncoder) Encode(_ context.Context, job studioout.EncodeJob) (studioout.EncodeResult, error) {
	if e.gate != nil {
		<-e.gate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, job)
	return e.result, e.encodeErr
}

func (e *fakeEncoder) Probe(context.Context, string) (studioout.MediaSummary, error) {
	return e.summary, e.probeErr
}

type memManifestStore struct {
	mu        sync.Mutex
	manifests map[string]projectdomain.Manifest
	markers   map[string]bool
	rawSizes  map[string]int64
	tracks    map[string][]domain.CursorSample
	logs      map[string]string
}

func newMemManifestStore() *memManifestStore {
	return &memManifestStore{
		manifests: map[string]projectdomain.Manifest{},
		markers:   map[string]bool{},
		rawSizes:  map[string]int64{},
		tracks:    map[string][]domain.CursorSample{},
		logs:      map[string]string{},
	}
}

func (s *memManifestStore) Save(projectID string, manifest projectdomain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[projectID] = manifest
	return nil
}

func (s *memManifestStore) Load(projectID string) (projectdomain.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	manifest, ok := s.manifests[projectID]
	if !ok {
		return projectdomain.Manifest{}, apperrors.New("PROJECT_NOT_FOUND", "project not found: "+projectID)
	}
	return manifest, nil
}

func (s *memManifestStore) Delete(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.manifests, projectID)
	delete(s.markers, projectID)
	return nil
}

func (s *memManifestStore) ProjectIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.manifests))
	for id := range s.manifests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memManifestStore) MarkRecovery(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[projectID] = true
	return nil
}

func (s *memManifestStore) ClearRecovery(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, projectID)
	return nil
}

func (s *memManifestStore) HasRecoveryMarker(projectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers[projectID]
}

func (s *memManifestStore) ProjectDir(projectID string) string { return "projects/" + projectID }

func (s *memManifestStore) RawRecordingPath(projectID string) string {
	return "projects/" + projectID + "/assets/recording_raw.mp4"
}

func (s *memManifestStore) RawRecordingSize(projectID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawSizes[projectID]
}

func (s *memManifestStore) CursorTrackPath(projectID string) string {
	return "projects/" + projectID + "/assets/cursor_track.json"
}

func (s *memManifestStore) ExportOutputPath(projectID string) string {
	return "projects/" + projectID + "/renders/output.mp4"
}

func (s *memManifestStore) ExportLogPath(projectID, taskID string) string {
	return "projects/" + projectID + "/renders/export-" + taskID + ".log"
}

func (s *memManifestStore) WriteCursorTrack(projectID string, samples []domain.CursorSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[projectID] = samples
	return nil
}

func (s *memManifestStore) WriteExportLog(projectID, taskID, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.ExportLogPath(projectID, taskID)
	s.logs[path] = body
	return path, nil
}

func (s *memManifestStore) manifest(t *testing.T, projectID string) projectdomain.Manifest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	manifest, ok := s.manifests[projectID]
	if !ok {
		t.Fatalf("no manifest for %s", projectID)
	}
	return manifest
}

type memIndex struct {
	mu    sync.Mutex
	items map[string]projectdomain.ListItem
}

func newMemIndex() *memIndex {
	return &memIndex{items: map[string]projectdomain.ListItem{}}
}

func (i *memIndex) Upsert(_ context.Context, item projectdomain.ListItem) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.items[item.ProjectID] = item
	return nil
}

func (i *memIndex) Remove(_ context.Context, projectID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.items, projectID)
	return nil
}

func (i *memIndex) List(context.Context) ([]projectdomain.ListItem, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	items := make([]projectdomain.ListItem, 0, len(i.items))
	for _, item := range i.items {
		items = append(items, item)
	}
	sort.Slice(items, func(a, b int) bool { return items[a].UpdatedAt.After(items[b].UpdatedAt) })
	return items, nil
}

func (i *memIndex) Close() error { return nil }

type capturedEvent struct {
	channel string
	payload any
}

type recordingSink struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (s *recordingSink) Publish(channel string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, capturedEvent{channel: channel, payload: payload})
}

func (s *recordingSink) snapshot() []capturedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]capturedEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) taskReports() []domain.TaskReport {
	var reports []domain.TaskReport
	for _, event := range s.snapshot() {
		if event.channel != domain.ExportProgressChannel {
			continue
		}
		if report, ok := event.payload.(domain.TaskReport); ok {
			reports = append(reports, report)
		}
	}
	return reports
}

type harness struct {
	svc      *Service
	recorder *fakeRecorder
	encoder  *fakeEncoder
	store    *memManifestStore
	index    *memIndex
	sink     *recordingSink
	clk      *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	recorder := &fakeRecorder{
		capability: domain.Capability{
			Platform:              "darwin",
			SupportsScreenCapture: true,
			SupportsWindowCapture: true,
			SupportsMicrophone:    true,
			SupportsSystemAudio:   true,
		},
		handle: &fakeHandle{stopResult: studioout.CaptureResult{OutputPath: "raw.mp4", Bytes: 8 << 20}},
	}
	encoder := &fakeEncoder{
		hw:      studioout.HardwareEncoder{Available: true, Codec: "h264_videotoolbox", Detail: "videotoolbox present"},
		result:  studioout.EncodeResult{UsedCodec: "h264_videotoolbox", Stderr: "frame=100 fps=30 drop=1"},
		summary: studioout.MediaSummary{VideoDurationMS: 5000, AudioDurationMS: 4988, ContainerDurationMS: 5000},
	}
	store := newMemManifestStore()
	index := newMemIndex()
	sink := &recordingSink{}
	clk := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewService(Deps{
		Recorder:     recorder,
		Encoder:      encoder,
		Manifests:    store,
		Index:        index,
		Events:       sink,
		Clock:        clk,
		Sleeper:      nopSleeper{},
		IDs:          &seqIDs{},
		AppVersion:   "1.0.0",
		TickInterval: time.Hour,
	})
	return &harness{svc: svc, recorder: recorder, encoder: encoder, store: store, index: index, sink: sink, clk: clk}
}

func (h *harness) seedProject(t *testing.T, projectID string) projectdomain.Manifest {
	t.Helper()
	manifest := projectdomain.NewManifest(projectdomain.RecordingProfile{CaptureMode: "fullscreen", FrameRate: 30}, "1.0.0", h.clk.Now())
	manifest.Status = projectdomain.StatusReadyToEdit
	manifest.Timeline.TrimEndMS = 5000
	manifest.Artifacts.RawRecordingPath = h.store.RawRecordingPath(projectID)
	manifest.Artifacts.CursorTrackPath = h.store.CursorTrackPath(projectID)
	if err := h.store.Save(projectID, manifest); err != nil {
		t.Fatal(err)
	}
	h.store.mu.Lock()
	h.store.rawSizes[projectID] = 4 << 20
	h.store.mu.Unlock()
	return manifest
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("not an AppError: %v", err)
	}
	return appErr.Code
}

func TestStartRecordingDegradesUnsupportedInputs(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.recorder.capability.SupportsSystemAudio = false
	h.recorder.capability.SystemAudioDegradeMessage = "system audio capture needs a loopback device"

	sessionID, err := h.svc.StartRecording(context.Background(), projectdomain.RecordingProfile{
		CaptureMode:        "window",
		SystemAudioEnabled: true,
		FrameRate:          30,
	})
	if err != nil {
		t.Fatal(err)
	}

	profile := h.recorder.lastProfile(t)
	if profile.SystemAudioEnabled {
		t.Fatal("system audio should have been disabled")
	}
	if profile.CaptureMode != "fullscreen" {
		t.Fatalf("capture mode = %q, want fullscreen downgrade", profile.CaptureMode)
	}
	manifest := h.store.manifest(t, sessionID)
	if manifest.Status != projectdomain.StatusRecording {
		t.Fatalf("status = %q", manifest.Status)
	}
	if !h.store.HasRecoveryMarker(sessionID) {
		t.Fatal("recovery marker missing for live recording")
	}
}

func TestStartRecordingRejectsSecondSession(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	if _, err := h.svc.StartRecording(context.Background(), projectdomain.RecordingProfile{CaptureMode: "fullscreen"}); err != nil {
		t.Fatal(err)
	}
	_, err := h.svc.StartRecording(context.Background(), projectdomain.RecordingProfile{CaptureMode: "fullscreen"})
	if code := appErrCode(t, err); code != "RECORDING_ALREADY_ACTIVE" {
		t.Fatalf("code = %q", code)
	}
}

func TestStopRecordingMaterializesProject(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	sessionID, err := h.svc.StartRecording(context.Background(), projectdomain.RecordingProfile{CaptureMode: "fullscreen", FrameRate: 30})
	if err != nil {
		t.Fatal(err)
	}
	h.clk.Advance(7 * time.Second)

	projectID, err := h.svc.StopRecording(context.Background(), sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if projectID != sessionID {
		t.Fatalf("projectID = %q, want session identity %q", projectID, sessionID)
	}
	manifest := h.store.manifest(t, projectID)
	if manifest.Status != projectdomain.StatusReadyToEdit {
		t.Fatalf("status = %q", manifest.Status)
	}
	if manifest.Timeline.TrimEndMS != 7000 {
		t.Fatalf("trimEndMs = %d, want recording duration", manifest.Timeline.TrimEndMS)
	}
	h.store.mu.Lock()
	track := h.store.tracks[projectID]
	h.store.mu.Unlock()
	if len(track) == 0 {
		t.Fatal("cursor track was not written")
	}
	if h.store.HasRecoveryMarker(projectID) {
		t.Fatal("recovery marker should be cleared after clean stop")
	}
}

func TestStopRecordingRejectsEmptyOutput(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.recorder.handle.stopResult = studioout.CaptureResult{OutputPath: "raw.mp4", Bytes: 512}
	sessionID, err := h.svc.StartRecording(context.Background(), projectdomain.RecordingProfile{CaptureMode: "fullscreen"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = h.svc.StopRecording(context.Background(), sessionID)
	if code := appErrCode(t, err); code != "RECORDING_OUTPUT_MISSING" {
		t.Fatalf("code = %q", code)
	}
	manifest := h.store.manifest(t, sessionID)
	if manifest.LastError == nil || manifest.LastError.Code != "RECORDING_OUTPUT_MISSING" {
		t.Fatalf("manifest lastError = %+v", manifest.LastError)
	}
}

func TestTickerReportsInterruptedCapture(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.svc.tickInterval = time.Millisecond
	sessionID, err := h.svc.StartRecording(context.Background(), projectdomain.RecordingProfile{CaptureMode: "fullscreen"})
	if err != nil {
		t.Fatal(err)
	}
	h.recorder.handle.setExited()

	waitFor(t, func() bool {
		for _, event := range h.sink.snapshot() {
			status, ok := event.payload.(domain.RecordingStatusEvent)
			if ok && status.Status == string(domain.RecordingErrored) {
				return true
			}
		}
		return false
	})
	if err := h.svc.PauseRecording(context.Background(), sessionID); err == nil {
		t.Fatal("session should be gone after interruption")
	}
}

func TestPatchTimelineValidatesInput(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedProject(t, "p1")

	if err := h.svc.PatchTimeline(context.Background(), "../evil", projectdomain.TimelinePatch{}); appErrCode(t, err) != "INVALID_PROJECT_ID" {
		t.Fatalf("err = %v", err)
	}

	start := int64(4000)
	end := int64(1000)
	err := h.svc.PatchTimeline(context.Background(), "p1", projectdomain.TimelinePatch{TrimStartMS: &start, TrimEndMS: &end})
	if code := appErrCode(t, err); code != "INVALID_TIMELINE" {
		t.Fatalf("code = %q", code)
	}
	if h.store.manifest(t, "p1").Timeline.TrimStartMS != 0 {
		t.Fatal("rejected patch must not be persisted")
	}
}

func TestExportPipelineSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedProject(t, "p1")

	taskID, err := h.svc.StartExport(context.Background(), "p1", projectdomain.ExportProfile{Format: "mp4", Resolution: "1080p", BitrateMbps: 8, FPS: 30})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		for _, report := range h.sink.taskReports() {
			if report.TaskID == taskID && report.Status == string(domain.ExportSuccess) {
				return true
			}
		}
		return false
	})

	var progress []int
	for _, report := range h.sink.taskReports() {
		progress = append(progress, report.Progress)
	}
	want := []int{0, 20, 50, 85, 100}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("progress = %v, want %v", progress, want)
		}
	}

	manifest := h.store.manifest(t, "p1")
	if manifest.Status != projectdomain.StatusExportSucceeded {
		t.Fatalf("status = %q", manifest.Status)
	}
	if manifest.Quality.AVOffsetMS != 12 {
		t.Fatalf("avOffsetMs = %d", manifest.Quality.AVOffsetMS)
	}
	if manifest.Quality.AvgDropRate <= 0 {
		t.Fatalf("avgDropRate = %v, want parsed from stderr", manifest.Quality.AvgDropRate)
	}
	if manifest.Artifacts.LastExportPath == "" || manifest.Artifacts.ExportLogPath == "" {
		t.Fatalf("artifacts = %+v", manifest.Artifacts)
	}
}

func TestExportPipelineReportsSoftwareFallback(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedProject(t, "p1")
	h.encoder.result = studioout.EncodeResult{UsedCodec: "libx264", Stderr: "frame=10 drop=0"}

	taskID, err := h.svc.StartExport(context.Background(), "p1", projectdomain.ExportProfile{Format: "mp4"})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		for _, report := range h.sink.taskReports() {
			if report.TaskID == taskID && report.Status == string(domain.ExportSuccess) {
				return true
			}
		}
		return false
	})
	sawFallback := false
	for _, report := range h.sink.taskReports() {
		if report.Status == string(domain.ExportFallback) && report.Progress == 62 {
			sawFallback = true
		}
	}
	if !sawFallback {
		t.Fatal("expected fallback report at 62")
	}
}

func TestExportPipelineFailureMarksManifest(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedProject(t, "p1")
	h.encoder.encodeErr = apperrors.WithSuggestion("ENCODER_FAIL", "encoder rejected the input stream", "try a lower bitrate")
	h.encoder.result = studioout.EncodeResult{Stderr: "Error while opening encoder"}

	taskID, err := h.svc.StartExport(context.Background(), "p1", projectdomain.ExportProfile{Format: "mp4"})
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		manifest := h.store.manifest(t, "p1")
		return manifest.Status == projectdomain.StatusExportFailed
	})
	manifest := h.store.manifest(t, "p1")
	if manifest.LastError == nil || manifest.LastError.Code != "ENCODER_FAIL" {
		t.Fatalf("lastError = %+v", manifest.LastError)
	}
	report, err := h.svc.ExportTaskStatus(context.Background(), taskID)
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != string(domain.ExportFailed) || report.Progress != 100 {
		t.Fatalf("report = %+v", report)
	}
	if report.Error == "" {
		t.Fatal("failed report should carry the encoded error")
	}
}

func TestStartExportRejectsConcurrentTask(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedProject(t, "p1")
	h.encoder.gate = make(chan struct{})
	defer close(h.encoder.gate)

	if _, err := h.svc.StartExport(context.Background(), "p1", projectdomain.ExportProfile{Format: "mp4"}); err != nil {
		t.Fatal(err)
	}
	_, err := h.svc.StartExport(context.Background(), "p1", projectdomain.ExportProfile{Format: "mp4"})
	if code := appErrCode(t, err); code != "EXPORT_ALREADY_ACTIVE" {
		t.Fatalf("code = %q", code)
	}
}

func TestRetryExportRegistersFreshTask(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedProject(t, "p1")
	h.encoder.encodeErr = apperrors.New("IO_FAIL", "disk write failed")

	taskID, err := h.svc.StartExport(context.Background(), "p1", projectdomain.ExportProfile{Format: "mp4"})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		report, err := h.svc.ExportTaskStatus(context.Background(), taskID)
		return err == nil && report.Status == string(domain.ExportFailed)
	})

	h.encoder.mu.Lock()
	h.encoder.encodeErr = nil
	h.encoder.mu.Unlock()

	retryID, err := h.svc.RetryExport(context.Background(), taskID)
	if err != nil {
		t.Fatal(err)
	}
	if retryID == taskID {
		t.Fatal("retry must register a new task identity")
	}
	waitFor(t, func() bool {
		report, err := h.svc.ExportTaskStatus(context.Background(), retryID)
		return err == nil && report.Status == string(domain.ExportSuccess)
	})
	report, err := h.svc.ExportTaskStatus(context.Background(), retryID)
	if err != nil {
		t.Fatal(err)
	}
	if report.Retries != 1 {
		t.Fatalf("retries = %d, want 1", report.Retries)
	}

	if _, err := h.svc.RetryExport(context.Background(), "missing"); appErrCode(t, err) != "EXPORT_TASK_NOT_FOUND" {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteProjectRefusesWhileExporting(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedProject(t, "p1")
	h.encoder.gate = make(chan struct{})

	if _, err := h.svc.StartExport(context.Background(), "p1", projectdomain.ExportProfile{Format: "mp4"}); err != nil {
		t.Fatal(err)
	}
	err := h.svc.DeleteProject(context.Background(), "p1")
	if code := appErrCode(t, err); code != "PROJECT_BUSY" {
		t.Fatalf("code = %q", code)
	}

	close(h.encoder.gate)
	waitFor(t, func() bool {
		manifest := h.store.manifest(t, "p1")
		return manifest.Status == projectdomain.StatusExportSucceeded
	})
	if err := h.svc.DeleteProject(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}
	items, err := h.index.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("index still lists %d projects", len(items))
	}
}

func TestRecoverProjectsRequiresMarkerAndAssets(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.seedProject(t, "intact")

	h.seedProject(t, "crashed")
	if err := h.store.MarkRecovery("crashed"); err != nil {
		t.Fatal(err)
	}

	h.seedProject(t, "empty")
	if err := h.store.MarkRecovery("empty"); err != nil {
		t.Fatal(err)
	}
	h.store.mu.Lock()
	h.store.rawSizes["empty"] = 0
	h.store.mu.Unlock()

	recovered, err := h.svc.RecoverProjects(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recovered) != 1 || recovered[0].ProjectID != "crashed" {
		t.Fatalf("recovered = %+v", recovered)
	}
}
