package in

import (
	"context"

	"recstudio/internal/modules/recording/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	Pause(ctx context.Context) (dto.SessionOutput, error)
	Resume(ctx context.Context) (dto.SessionOutput, error)
	Stop(ctx context.Context) (dto.SessionOutput, error)
	Current(ctx context.Context) (dto.SessionOutput, error)
}
