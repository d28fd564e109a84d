package dto

type StartInput struct {
	CaptureMode        string
	WindowTarget       string
	FrameRate          int
	Resolution         string
	MicrophoneDeviceID string
	SystemAudioEnabled bool
}

type SessionOutput struct {
	SessionID      string
	ProjectID      string
	Status         string
	DurationMS     int64
	SourceLabel    string
	Detail         string
	DegradeMessage string
	ErrorCode      string
	ErrorMessage   string
	Suggestion     string
}
