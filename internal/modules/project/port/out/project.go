package out

import (
	"context"

	"recstudio/internal/modules/project/domain"
)

// Backend is the daemon surface the project module drives. Load and the two
// patch commands are routed through the mutation queue; the rest are
// straight request/response calls.
type Backend interface {
	LoadProject(ctx context.Context, projectID string) (domain.Manifest, error)
	PatchTimeline(ctx context.Context, projectID string, patch domain.TimelinePatch) error
	PatchCameraMotion(ctx context.Context, projectID string, patch domain.CameraMotionPatch) error

	ListProjects(ctx context.Context) ([]domain.ListItem, error)
	UpdateTitle(ctx context.Context, projectID, title string) error
	DeleteProject(ctx context.Context, projectID string) error
	RecoverProjects(ctx context.Context) ([]domain.Recoverable, error)
}
