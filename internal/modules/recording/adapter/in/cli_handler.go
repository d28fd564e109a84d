package in

import (
	"context"

	recordingdto "recstudio/internal/modules/recording/dto"
	recordingin "recstudio/internal/modules/recording/port/in"
)

type CLIHandler struct {
	usecase recordingin.Usecase
}

func NewCLIHandler(usecase recordingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, input recordingdto.StartInput) (recordingdto.SessionOutput, error) {
	return h.usecase.Start(ctx, input)
}

func (h CLIHandler) Pause(ctx context.Context) (recordingdto.SessionOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (recordingdto.SessionOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (recordingdto.SessionOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Current(ctx context.Context) (recordingdto.SessionOutput, error) {
	return h.usecase.Current(ctx)
}
