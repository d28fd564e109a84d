package out

import (
	"context"

	"recstudio/internal/modules/recording/domain"
)

// Backend is the recording slice of the studio command surface. Every call
// is one asynchronous round trip that may fail.
type Backend interface {
	StartRecording(ctx context.Context, profile domain.Profile) (sessionID string, err error)
	PauseRecording(ctx context.Context, sessionID string) error
	ResumeRecording(ctx context.Context, sessionID string) error
	// StopRecording materializes the session into a project and returns its id.
	StopRecording(ctx context.Context, sessionID string) (projectID string, err error)
}

// EventStream delivers recording status push notifications until the context
// is cancelled. Implementations must call the handler from a single
// goroutine so controller updates are never interleaved.
type EventStream interface {
	Subscribe(ctx context.Context, handler func(domain.StatusEvent)) error
}
