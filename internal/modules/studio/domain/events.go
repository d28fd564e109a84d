package domain

// Wire payloads pushed on the daemon event socket. Field names are part of
// the client contract.

const (
	RecordingStatusChannel = "recording/status"
	ExportProgressChannel  = "export/progress"
)

type RecordingStatusEvent struct {
	SessionID      string `json:"sessionId"`
	Status         string `json:"status"`
	DurationMS     int64  `json:"durationMs"`
	SourceLabel    string `json:"sourceLabel"`
	Detail         string `json:"detail"`
	DegradeMessage string `json:"degradeMessage,omitempty"`
}

// TaskReport doubles as the export progress event payload and the task
// status reply. Error carries a JSON-encoded failure so it survives RPC
// error flattening.
type TaskReport struct {
	TaskID     string `json:"taskId"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Retries    int    `json:"retries"`
	Detail     string `json:"detail,omitempty"`
	Error      string `json:"error,omitempty"`
	OutputPath string `json:"outputPath,omitempty"`
}
