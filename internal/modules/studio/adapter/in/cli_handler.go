package in

import (
	"context"

	studiodto "recstudio/internal/modules/studio/dto"
	studioin "recstudio/internal/modules/studio/port/in"
)

type CLIHandler struct {
	usecase studioin.Usecase
}

func NewCLIHandler(usecase studioin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) RunDaemon(ctx context.Context) error {
	return h.usecase.RunDaemon(ctx)
}

func (h CLIHandler) StartDaemon(ctx context.Context) error {
	return h.usecase.StartDaemon(ctx)
}

func (h CLIHandler) StopDaemon(ctx context.Context) error {
	return h.usecase.StopDaemon(ctx)
}

func (h CLIHandler) DaemonStatus(ctx context.Context) (studiodto.DaemonStatusOutput, error) {
	return h.usecase.DaemonStatus(ctx)
}

func (h CLIHandler) Devices(ctx context.Context) ([]studiodto.DeviceOutput, error) {
	return h.usecase.Devices(ctx)
}

func (h CLIHandler) Capability(ctx context.Context) (studiodto.CapabilityOutput, error) {
	return h.usecase.Capability(ctx)
}
