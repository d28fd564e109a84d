package domain

import (
	"time"

	projectdomain "recstudio/internal/modules/project/domain"
)

// Session is one live capture owned by the daemon. The project shares the
// session's identity; stopping the session materializes the project.
type Session struct {
	ID             string
	ProjectID      string
	Profile        projectdomain.RecordingProfile
	Machine        *RecordingMachine
	StartedAt      time.Time
	DegradeMessage string
}

func NewSession(id string, profile projectdomain.RecordingProfile, startedAt time.Time) *Session {
	return &Session{
		ID:        id,
		ProjectID: id,
		Profile:   profile,
		Machine:   NewRecordingMachine(),
		StartedAt: startedAt,
	}
}

func (s *Session) DurationMS(now time.Time) int64 {
	d := now.Sub(s.StartedAt).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}

func (s *Session) SourceLabel() string {
	if s.Profile.CaptureMode == "window" {
		return "window"
	}
	return "full screen"
}

// Device is one capture input reported to the UI.
type Device struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// Capability describes what the host platform's capture stack supports.
type Capability struct {
	Platform                  string `json:"platform"`
	SupportsScreenCapture     bool   `json:"supportsScreenCapture"`
	SupportsWindowCapture     bool   `json:"supportsWindowCapture"`
	SupportsMicrophone        bool   `json:"supportsMicrophone"`
	SupportsSystemAudio       bool   `json:"supportsSystemAudio"`
	SystemAudioDegradeMessage string `json:"systemAudioDegradeMessage,omitempty"`
}
