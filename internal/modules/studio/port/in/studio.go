package in

import (
	"context"

	"recstudio/internal/modules/studio/dto"
)

// Usecase is the daemon lifecycle and host inspection surface exposed to
// the CLI.
type Usecase interface {
	RunDaemon(ctx context.Context) error
	StartDaemon(ctx context.Context) error
	StopDaemon(ctx context.Context) error
	DaemonStatus(ctx context.Context) (dto.DaemonStatusOutput, error)
	Devices(ctx context.Context) ([]dto.DeviceOutput, error)
	Capability(ctx context.Context) (dto.CapabilityOutput, error)
}
