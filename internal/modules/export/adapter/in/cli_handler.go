package in

import (
	"context"

	exportdto "recstudio/internal/modules/export/dto"
	exportin "recstudio/internal/modules/export/port/in"
)

type CLIHandler struct {
	usecase exportin.Usecase
}

func NewCLIHandler(usecase exportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, input exportdto.StartInput) (exportdto.TaskOutput, error) {
	return h.usecase.Start(ctx, input)
}

func (h CLIHandler) Retry(ctx context.Context) (exportdto.TaskOutput, error) {
	return h.usecase.Retry(ctx)
}

func (h CLIHandler) Current(ctx context.Context) (exportdto.TaskOutput, error) {
	return h.usecase.Current(ctx)
}
