package dto

type PublisherInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type TargetInfo struct {
	ID              string
	Title           string
	Description     string
	InputSchemaJSON string
	TimeoutMS       int
}

type PublishInput struct {
	PublisherName string
	TargetID      string
	InputJSON     string
	ProjectID     string
	Title         string
	ExportPath    string
	Env           map[string]string
}

type PublishOutput struct {
	PublisherName string
	TargetID      string
	URL           string
	Detail        string
	Stderr        string
	ExitCode      int
}
