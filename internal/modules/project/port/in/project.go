package in

import (
	"context"

	"recstudio/internal/modules/project/dto"
)

type Usecase interface {
	Load(ctx context.Context, input dto.LoadInput) (dto.ProjectOutput, error)
	Current(ctx context.Context) (dto.ProjectOutput, error)
	PatchTimeline(ctx context.Context, input dto.TimelinePatchInput) error
	PatchCameraMotion(ctx context.Context, input dto.CameraMotionPatchInput) error
	Flush(ctx context.Context) error
	List(ctx context.Context) ([]dto.ProjectListItem, error)
	Rename(ctx context.Context, projectID, title string) error
	Delete(ctx context.Context, projectID string) error
	Recover(ctx context.Context) ([]dto.RecoverableOutput, error)
}
