package out

import (
	"context"

	projectdomain "recstudio/internal/modules/project/domain"
	"recstudio/internal/modules/studio/domain"
)

// Recorder drives the capture process.
type Recorder interface {
	EnsureAvailable(ctx context.Context) error
	Capability(ctx context.Context) domain.Capability
	ListAudioDevices(ctx context.Context) []domain.Device
	// Start spawns a capture for the profile writing to outputPath. The
	// returned degrade message, when non-empty, describes an automatic
	// downgrade applied to keep the capture alive.
	Start(ctx context.Context, profile projectdomain.RecordingProfile, outputPath string) (CaptureHandle, string, error)
}

// CaptureHandle controls one running capture process.
type CaptureHandle interface {
	Pause() error
	Resume() error
	// Stop asks the process to finish the container and waits for exit.
	Stop(ctx context.Context) (CaptureResult, error)
	// Exited reports whether the process terminated on its own.
	Exited() bool
}

type CaptureResult struct {
	OutputPath string
	Bytes      int64
}

// HardwareEncoder is the platform's preferred accelerated codec probe.
type HardwareEncoder struct {
	Available bool
	Codec     string
	Detail    string
}

type EncodeJob struct {
	Manifest   projectdomain.Manifest
	InputPath  string
	CursorPath string
	OutputPath string
	Profile    projectdomain.ExportProfile
}

type EncodeResult struct {
	UsedCodec string
	Stderr    string
}

type MediaSummary struct {
	VideoDurationMS     int64
	AudioDurationMS     int64
	ContainerDurationMS int64
}

// Encoder renders the final artifact. Encode tries the hardware codec
// first and falls back to software; a returned error is already classified
// into an AppError.
type Encoder interface {
	DetectHardware(ctx context.Context) HardwareEncoder
	Encode(ctx context.Context, job EncodeJob) (EncodeResult, error)
	Probe(ctx context.Context, path string) (MediaSummary, error)
}

// ManifestStore owns the on-disk project layout: one directory per project
// with the manifest, raw assets and rendered outputs.
type ManifestStore interface {
	Save(projectID string, manifest projectdomain.Manifest) error
	Load(projectID string) (projectdomain.Manifest, error)
	Delete(projectID string) error
	ProjectIDs() ([]string, error)

	MarkRecovery(projectID string) error
	ClearRecovery(projectID string) error
	HasRecoveryMarker(projectID string) bool

	ProjectDir(projectID string) string
	RawRecordingPath(projectID string) string
	RawRecordingSize(projectID string) int64
	CursorTrackPath(projectID string) string
	ExportOutputPath(projectID string) string
	ExportLogPath(projectID, taskID string) string

	WriteCursorTrack(projectID string, samples []domain.CursorSample) error
	WriteExportLog(projectID, taskID, body string) (string, error)
}

// ProjectIndex is the queryable mirror of manifest summaries backing the
// project browser.
type ProjectIndex interface {
	Upsert(ctx context.Context, item projectdomain.ListItem) error
	Remove(ctx context.Context, projectID string) error
	List(ctx context.Context) ([]projectdomain.ListItem, error)
	Close() error
}

// EventSink broadcasts push notifications to every connected client.
type EventSink interface {
	Publish(channel string, payload any)
}

// DaemonStore tracks the daemon process outside the process itself.
type DaemonStore interface {
	WritePID(ctx context.Context, pid int) error
	ReadPID(ctx context.Context) (int, error)
	ClearPID(ctx context.Context) error
	CommandSocketPath() string
	EventSocketPath() string
	LogPath() string
}

// IPCHandler is the daemon's full command surface.
type IPCHandler interface {
	StartRecording(ctx context.Context, profile projectdomain.RecordingProfile) (string, error)
	PauseRecording(ctx context.Context, sessionID string) error
	ResumeRecording(ctx context.Context, sessionID string) error
	StopRecording(ctx context.Context, sessionID string) (string, error)

	LoadProject(ctx context.Context, projectID string) (projectdomain.Manifest, error)
	PatchTimeline(ctx context.Context, projectID string, patch projectdomain.TimelinePatch) error
	PatchCameraMotion(ctx context.Context, projectID string, patch projectdomain.CameraMotionPatch) error
	ListProjects(ctx context.Context) ([]projectdomain.ListItem, error)
	UpdateProjectTitle(ctx context.Context, projectID, title string) error
	DeleteProject(ctx context.Context, projectID string) error
	RecoverProjects(ctx context.Context) ([]projectdomain.Recoverable, error)

	StartExport(ctx context.Context, projectID string, profile projectdomain.ExportProfile) (string, error)
	RetryExport(ctx context.Context, taskID string) (string, error)
	ExportTaskStatus(ctx context.Context, taskID string) (domain.TaskReport, error)

	ListDevices(ctx context.Context) ([]domain.Device, error)
	Capability(ctx context.Context) (domain.Capability, error)
	Shutdown(ctx context.Context) error
}

// IPCServer serves the command surface on a unix socket.
type IPCServer interface {
	Serve(ctx context.Context, socketPath string, handler IPCHandler) error
}

// EventServer serves the push notification socket.
type EventServer interface {
	Serve(ctx context.Context, socketPath string) error
}

// DaemonRuntimeStatus describes the daemon process from the outside.
type DaemonRuntimeStatus struct {
	Running    bool
	PID        int
	SocketPath string
	EventPath  string
}
