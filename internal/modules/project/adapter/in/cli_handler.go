package in

import (
	"context"

	projectdto "recstudio/internal/modules/project/dto"
	projectin "recstudio/internal/modules/project/port/in"
)

type CLIHandler struct {
	usecase projectin.Usecase
}

func NewCLIHandler(usecase projectin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Load(ctx context.Context, projectID string) (projectdto.ProjectOutput, error) {
	return h.usecase.Load(ctx, projectdto.LoadInput{ProjectID: projectID})
}

func (h CLIHandler) Current(ctx context.Context) (projectdto.ProjectOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Trim(ctx context.Context, projectID string, startMS, endMS int64) error {
	if _, err := h.usecase.Load(ctx, projectdto.LoadInput{ProjectID: projectID}); err != nil {
		return err
	}
	if err := h.usecase.PatchTimeline(ctx, projectdto.TimelinePatchInput{
		TrimStartMS: &startMS,
		TrimEndMS:   &endMS,
	}); err != nil {
		return err
	}
	return h.usecase.Flush(ctx)
}

func (h CLIHandler) Aspect(ctx context.Context, projectID, ratio string) error {
	if _, err := h.usecase.Load(ctx, projectdto.LoadInput{ProjectID: projectID}); err != nil {
		return err
	}
	if err := h.usecase.PatchTimeline(ctx, projectdto.TimelinePatchInput{
		AspectRatio: &ratio,
	}); err != nil {
		return err
	}
	return h.usecase.Flush(ctx)
}

func (h CLIHandler) Motion(ctx context.Context, projectID string, input projectdto.CameraMotionPatchInput) error {
	if _, err := h.usecase.Load(ctx, projectdto.LoadInput{ProjectID: projectID}); err != nil {
		return err
	}
	if err := h.usecase.PatchCameraMotion(ctx, input); err != nil {
		return err
	}
	return h.usecase.Flush(ctx)
}

func (h CLIHandler) List(ctx context.Context) ([]projectdto.ProjectListItem, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Rename(ctx context.Context, projectID, title string) error {
	return h.usecase.Rename(ctx, projectID, title)
}

func (h CLIHandler) Delete(ctx context.Context, projectID string) error {
	return h.usecase.Delete(ctx, projectID)
}

func (h CLIHandler) Recover(ctx context.Context) ([]projectdto.RecoverableOutput, error) {
	return h.usecase.Recover(ctx)
}
