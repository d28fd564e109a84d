package in

import (
	"context"

	"recstudio/internal/modules/export/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.TaskOutput, error)
	Retry(ctx context.Context) (dto.TaskOutput, error)
	Current(ctx context.Context) (dto.TaskOutput, error)
}
