package in

import (
	"context"

	"recstudio/internal/modules/publish/dto"
	publishin "recstudio/internal/modules/publish/port/in"
)

type CLIHandler struct {
	usecase publishin.Usecase
}

func NewCLIHandler(usecase publishin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PublisherInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) ListTargets(ctx context.Context, publisherName string) ([]dto.TargetInfo, error) {
	return h.usecase.ListTargets(ctx, publisherName)
}

func (h CLIHandler) Publish(ctx context.Context, input dto.PublishInput) (dto.PublishOutput, error) {
	return h.usecase.Publish(ctx, input)
}
