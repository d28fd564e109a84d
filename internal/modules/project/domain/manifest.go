package domain

import (
	"time"

	apperrors "recstudio/internal/platform/errors"
)

const SchemaVersion = 1

type Status string

const (
	StatusRecording       Status = "recording"
	StatusReadyToEdit     Status = "ready_to_edit"
	StatusExporting       Status = "exporting"
	StatusExportFailed    Status = "export_failed"
	StatusExportSucceeded Status = "export_succeeded"
)

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

type Hotkeys struct {
	StartStop   string `json:"startStop"`
	PauseResume string `json:"pauseResume"`
}

type RecordingProfile struct {
	CaptureMode        string  `json:"captureMode"`
	WindowTarget       string  `json:"windowTarget,omitempty"`
	FrameRate          int     `json:"frameRate"`
	Resolution         string  `json:"resolution"`
	MicrophoneDeviceID string  `json:"microphoneDeviceId,omitempty"`
	SystemAudioEnabled bool    `json:"systemAudioEnabled"`
	Hotkeys            Hotkeys `json:"hotkeys"`
}

type CameraMotionProfile struct {
	Enabled         bool      `json:"enabled"`
	Intensity       Intensity `json:"intensity"`
	Smoothing       float64   `json:"smoothing"`
	MaxZoom         float64   `json:"maxZoom"`
	IdleThresholdMS int64     `json:"idleThresholdMs"`
}

type ExportProfile struct {
	Format      string `json:"format"`
	Resolution  string `json:"resolution"`
	BitrateMbps int    `json:"bitrateMbps"`
	FPS         int    `json:"fps"`
	VideoCodec  string `json:"videoCodec"`
	AudioCodec  string `json:"audioCodec"`
}

type TimelineConfig struct {
	TrimStartMS            int64  `json:"trimStartMs"`
	TrimEndMS              int64  `json:"trimEndMs"`
	AspectRatio            string `json:"aspectRatio"`
	CursorHighlightEnabled bool   `json:"cursorHighlightEnabled"`
}

type Artifacts struct {
	RawRecordingPath string `json:"rawRecordingPath,omitempty"`
	CursorTrackPath  string `json:"cursorTrackPath,omitempty"`
	LastExportPath   string `json:"lastExportPath,omitempty"`
	ExportLogPath    string `json:"exportLogPath,omitempty"`
}

type QualityMetrics struct {
	AVOffsetMS   int64   `json:"avOffsetMs"`
	AvgDropRate  float64 `json:"avgDropRate"`
	PeakDropRate float64 `json:"peakDropRate"`
}

// Manifest is the persisted description of one recording-turned-project.
// The daemon owns the authoritative copy; the client caches at most one.
type Manifest struct {
	SchemaVersion int                 `json:"schemaVersion"`
	AppVersion    string              `json:"appVersion"`
	Title         string              `json:"title,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	Recording     RecordingProfile    `json:"recording"`
	CameraMotion  CameraMotionProfile `json:"cameraMotion"`
	Export        ExportProfile       `json:"export"`
	Timeline      TimelineConfig      `json:"timeline"`
	Artifacts     Artifacts           `json:"artifacts"`
	Quality       QualityMetrics      `json:"quality"`
	Status        Status              `json:"status"`
	LastError     *apperrors.AppError `json:"lastError,omitempty"`
}

func NewManifest(recording RecordingProfile, appVersion string, now time.Time) Manifest {
	return Manifest{
		SchemaVersion: SchemaVersion,
		AppVersion:    appVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		Recording:     recording,
		CameraMotion: CameraMotionProfile{
			Enabled:         true,
			Intensity:       IntensityMedium,
			Smoothing:       0.68,
			MaxZoom:         1.35,
			IdleThresholdMS: 500,
		},
		Export: ExportProfile{
			Format:      "mp4",
			Resolution:  "1080p",
			BitrateMbps: 8,
			FPS:         30,
			VideoCodec:  "h264",
			AudioCodec:  "aac",
		},
		Timeline: TimelineConfig{AspectRatio: "16:9", CursorHighlightEnabled: true},
		Status:   StatusRecording,
	}
}

// TimelinePatch and CameraMotionPatch are partial-field updates; nil fields
// are left untouched. A patch targets exactly one sub-object.
type TimelinePatch struct {
	TrimStartMS            *int64  `json:"trimStartMs,omitempty"`
	TrimEndMS              *int64  `json:"trimEndMs,omitempty"`
	AspectRatio            *string `json:"aspectRatio,omitempty"`
	CursorHighlightEnabled *bool   `json:"cursorHighlightEnabled,omitempty"`
}

type CameraMotionPatch struct {
	Enabled         *bool      `json:"enabled,omitempty"`
	Intensity       *Intensity `json:"intensity,omitempty"`
	Smoothing       *float64   `json:"smoothing,omitempty"`
	MaxZoom         *float64   `json:"maxZoom,omitempty"`
	IdleThresholdMS *int64     `json:"idleThresholdMs,omitempty"`
}

// ApplyTimeline merges the patch by shallow field overwrite.
func (m *Manifest) ApplyTimeline(patch TimelinePatch) {
	if patch.TrimStartMS != nil {
		m.Timeline.TrimStartMS = *patch.TrimStartMS
	}
	if patch.TrimEndMS != nil {
		m.Timeline.TrimEndMS = *patch.TrimEndMS
	}
	if patch.AspectRatio != nil {
		m.Timeline.AspectRatio = *patch.AspectRatio
	}
	if patch.CursorHighlightEnabled != nil {
		m.Timeline.CursorHighlightEnabled = *patch.CursorHighlightEnabled
	}
}

// ValidateTimeline rejects inverted trim bounds; a zero TrimEndMS means
// "until end of recording" and is always valid.
func (m *Manifest) ValidateTimeline() error {
	if m.Timeline.TrimEndMS > 0 && m.Timeline.TrimEndMS < m.Timeline.TrimStartMS {
		return apperrors.WithSuggestion("INVALID_TIMELINE", "trimEndMs must be greater than trimStartMs", "adjust the trim range")
	}
	return nil
}

// ApplyCameraMotion merges the patch by shallow field overwrite, clamping
// values to the supported envelope.
func (m *Manifest) ApplyCameraMotion(patch CameraMotionPatch) {
	if patch.Enabled != nil {
		m.CameraMotion.Enabled = *patch.Enabled
	}
	if patch.Intensity != nil {
		m.CameraMotion.Intensity = *patch.Intensity
	}
	if patch.Smoothing != nil {
		m.CameraMotion.Smoothing = clampFloat(*patch.Smoothing, 0, 1)
	}
	if patch.MaxZoom != nil {
		m.CameraMotion.MaxZoom = clampFloat(*patch.MaxZoom, 1, 2)
	}
	if patch.IdleThresholdMS != nil {
		m.CameraMotion.IdleThresholdMS = clampInt(*patch.IdleThresholdMS, 120, 900)
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ListItem is the project browser row derived from a manifest.
type ListItem struct {
	ProjectID  string    `json:"projectId"`
	Title      string    `json:"title,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Status     Status    `json:"status"`
	DurationMS int64     `json:"durationMs"`
	HasExport  bool      `json:"hasExport"`
	ExportPath string    `json:"exportPath,omitempty"`
	RawPath    string    `json:"rawPath,omitempty"`
}

// Recoverable describes a project whose recording was interrupted and left
// a recovery marker behind.
type Recoverable struct {
	ProjectID string `json:"projectId"`
	Reason    string `json:"reason"`
	Path      string `json:"path"`
}
