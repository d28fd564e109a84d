package in

import (
	"context"

	"recstudio/internal/modules/publish/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PublisherInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	ListTargets(ctx context.Context, publisherName string) ([]dto.TargetInfo, error)
	Publish(ctx context.Context, input dto.PublishInput) (dto.PublishOutput, error)
}
