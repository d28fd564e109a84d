package domain

import (
	projectdomain "recstudio/internal/modules/project/domain"
	apperrors "recstudio/internal/platform/errors"
)

// Task is one render job. Retry never revives a task; it registers a new
// one with a fresh identity and a bumped retry counter.
type Task struct {
	ID        string
	ProjectID string
	Profile   projectdomain.ExportProfile
	Machine   *ExportMachine
	Retries   int
	Progress  int
	Detail    string
	LastError *apperrors.AppError
}

func NewTask(id, projectID string, profile projectdomain.ExportProfile, retries int) *Task {
	return &Task{
		ID:        id,
		ProjectID: projectID,
		Profile:   profile,
		Machine:   NewExportMachine(),
		Retries:   retries,
	}
}

func (t *Task) Active() bool {
	return t.Machine.State().Active()
}
