package domain

import apperrors "recstudio/internal/platform/errors"

type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusFallback Status = "fallback"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Floor is the minimum progress implied by a status. The backend reports
// percentages for encode work only; phase transitions carry their own
// progress meaning, so an update can never drag the bar below its phase.
func (s Status) Floor() int {
	switch s {
	case StatusRunning:
		return 45
	case StatusFallback:
		return 62
	case StatusSuccess, StatusFailed:
		return 100
	default:
		return 0
	}
}

// Profile mirrors the manifest's export settings at submission time.
type Profile struct {
	Format      string `json:"format"`
	Resolution  string `json:"resolution"`
	BitrateMbps int    `json:"bitrateMbps"`
	FPS         int    `json:"fps"`
	VideoCodec  string `json:"videoCodec"`
	AudioCodec  string `json:"audioCodec"`
}

// Update is one authoritative report about a task, from either a poll
// response or a push notification. Both sources carry the same shape.
type Update struct {
	TaskID     string `json:"taskId"`
	Status     Status `json:"status"`
	Progress   int    `json:"progress"`
	Retries    int    `json:"retries"`
	Detail     string `json:"detail,omitempty"`
	ErrorJSON  string `json:"error,omitempty"`
	OutputPath string `json:"outputPath,omitempty"`
}

// Snapshot is the engine's view of the current task. TaskID is empty when
// no export has been submitted or the last one was never adopted.
type Snapshot struct {
	TaskID     string
	ProjectID  string
	Status     Status
	Progress   int
	Retries    int
	Detail     string
	OutputPath string
	LastError  *apperrors.AppError
}
