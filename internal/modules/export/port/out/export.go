package out

import (
	"context"

	"recstudio/internal/modules/export/domain"
)

// Backend submits and inspects render jobs on the daemon.
type Backend interface {
	StartExport(ctx context.Context, projectID string, profile domain.Profile) (string, error)
	RetryExport(ctx context.Context, taskID string) (string, error)
	TaskStatus(ctx context.Context, taskID string) (domain.Update, error)
}

// EventStream delivers unsolicited progress updates pushed by the daemon.
type EventStream interface {
	Subscribe(ctx context.Context, handler func(domain.Update)) error
}
