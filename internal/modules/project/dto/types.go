package dto

import "time"

type LoadInput struct {
	ProjectID string
}

type TimelinePatchInput struct {
	TrimStartMS            *int64
	TrimEndMS              *int64
	AspectRatio            *string
	CursorHighlightEnabled *bool
}

type CameraMotionPatchInput struct {
	Enabled         *bool
	Intensity       *string
	Smoothing       *float64
	MaxZoom         *float64
	IdleThresholdMS *int64
}

type TimelineOutput struct {
	TrimStartMS            int64
	TrimEndMS              int64
	AspectRatio            string
	CursorHighlightEnabled bool
}

type CameraMotionOutput struct {
	Enabled         bool
	Intensity       string
	Smoothing       float64
	MaxZoom         float64
	IdleThresholdMS int64
}

type ExportProfileOutput struct {
	Format      string
	Resolution  string
	BitrateMbps int
	FPS         int
	VideoCodec  string
	AudioCodec  string
}

type ProjectOutput struct {
	ProjectID        string
	Loaded           bool
	Title            string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Timeline         TimelineOutput
	CameraMotion     CameraMotionOutput
	Export           ExportProfileOutput
	RawRecordingPath string
	LastExportPath   string
	ErrorCode        string
	ErrorMessage     string
	Suggestion       string
}

type ProjectListItem struct {
	ProjectID  string
	Title      string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DurationMS int64
	HasExport  bool
	ExportPath string
}

type RecoverableOutput struct {
	ProjectID string
	Reason    string
	Path      string
}
