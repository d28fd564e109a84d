package dto

type StartInput struct {
	ProjectID   string
	Format      string
	Resolution  string
	BitrateMbps int
	FPS         int
}

type TaskOutput struct {
	TaskID       string
	ProjectID    string
	Status       string
	Progress     int
	Retries      int
	Detail       string
	OutputPath   string
	ErrorCode    string
	ErrorMessage string
	Suggestion   string
}
