package usecase

import (
	"context"

	"recstudio/internal/modules/studio/dto"
	studioin "recstudio/internal/modules/studio/port/in"
	studioout "recstudio/internal/modules/studio/port/out"
	"recstudio/internal/modules/studio/service"
)

type Interactor struct {
	core   *service.Service
	daemon *service.DaemonService
	store  studioout.DaemonStore
}

func NewInteractor(core *service.Service, daemon *service.DaemonService, store studioout.DaemonStore) studioin.Usecase {
	return &Interactor{core: core, daemon: daemon, store: store}
}

func (i *Interactor) RunDaemon(ctx context.Context) error {
	if err := i.core.RebuildIndex(ctx); err != nil {
		return err
	}
	return i.daemon.RunDaemon(ctx, i.core)
}

func (i *Interactor) StartDaemon(ctx context.Context) error {
	return i.daemon.StartDaemon(ctx)
}

func (i *Interactor) StopDaemon(ctx context.Context) error {
	return i.daemon.StopDaemon(ctx)
}

func (i *Interactor) DaemonStatus(ctx context.Context) (dto.DaemonStatusOutput, error) {
	status := i.daemon.Status(ctx)
	return dto.DaemonStatusOutput{
		Running:    status.Running,
		PID:        status.PID,
		SocketPath: status.SocketPath,
		EventPath:  status.EventPath,
		LogPath:    i.store.LogPath(),
	}, nil
}

func (i *Interactor) Devices(ctx context.Context) ([]dto.DeviceOutput, error) {
	devices, err := i.core.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeviceOutput, 0, len(devices))
	for _, device := range devices {
		out = append(out, dto.DeviceOutput{ID: device.ID, Label: device.Label, Kind: device.Kind})
	}
	return out, nil
}

func (i *Interactor) Capability(ctx context.Context) (dto.CapabilityOutput, error) {
	capability, err := i.core.Capability(ctx)
	if err != nil {
		return dto.CapabilityOutput{}, err
	}
	return dto.CapabilityOutput{
		Platform:              capability.Platform,
		SupportsScreenCapture: capability.SupportsScreenCapture,
		SupportsWindowCapture: capability.SupportsWindowCapture,
		SupportsMicrophone:    capability.SupportsMicrophone,
		SupportsSystemAudio:   capability.SupportsSystemAudio,
		DegradeMessage:        capability.SystemAudioDegradeMessage,
	}, nil
}
