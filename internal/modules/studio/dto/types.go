package dto

type DaemonStatusOutput struct {
	Running    bool
	PID        int
	SocketPath string
	EventPath  string
	LogPath    string
}

type DeviceOutput struct {
	ID    string
	Label string
	Kind  string
}

type CapabilityOutput struct {
	Platform              string
	SupportsScreenCapture bool
	SupportsWindowCapture bool
	SupportsMicrophone    bool
	SupportsSystemAudio   bool
	DegradeMessage        string
}
