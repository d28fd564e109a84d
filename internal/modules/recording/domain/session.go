package domain

import (
	apperrors "recstudio/internal/platform/errors"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusPaused    Status = "paused"
	StatusStopped   Status = "stopped"
	StatusError     Status = "error"
)

// Active reports whether the status implies a live backend session, and
// therefore a non-empty session identity.
func (s Status) Active() bool {
	return s == StatusRecording || s == StatusPaused
}

// Terminal reports whether the status clears the session identity.
func (s Status) Terminal() bool {
	return s == StatusStopped || s == StatusError
}

type CaptureMode string

const (
	CaptureFullscreen CaptureMode = "fullscreen"
	CaptureWindow     CaptureMode = "window"
)

func (m CaptureMode) SourceLabel() string {
	if m == CaptureWindow {
		return "window"
	}
	return "fullscreen"
}

type Hotkeys struct {
	StartStop   string `json:"startStop"`
	PauseResume string `json:"pauseResume"`
}

// Profile describes one recording attempt as handed to the backend.
type Profile struct {
	CaptureMode        CaptureMode `json:"captureMode"`
	WindowTarget       string      `json:"windowTarget,omitempty"`
	FrameRate          int         `json:"frameRate"`
	Resolution         string      `json:"resolution"`
	MicrophoneDeviceID string      `json:"microphoneDeviceId,omitempty"`
	SystemAudioEnabled bool        `json:"systemAudioEnabled"`
	Hotkeys            Hotkeys     `json:"hotkeys"`
}

// Snapshot is the controller's observable state. SessionID is non-empty iff
// Status is recording or paused; ProjectID is assigned only once a stop
// materializes a project.
type Snapshot struct {
	SessionID      string
	ProjectID      string
	Status         Status
	DurationMS     int64
	SourceLabel    string
	Detail         string
	DegradeMessage string
	LastError      *apperrors.AppError
}

// StatusEvent is one push notification from the recording status stream.
type StatusEvent struct {
	SessionID      string `json:"sessionId"`
	Status         Status `json:"status"`
	DurationMS     int64  `json:"durationMs"`
	SourceLabel    string `json:"sourceLabel"`
	Detail         string `json:"detail"`
	DegradeMessage string `json:"degradeMessage,omitempty"`
}
