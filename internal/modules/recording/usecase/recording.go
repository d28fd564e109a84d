package usecase

import (
	"context"

	"recstudio/internal/modules/recording/domain"
	"recstudio/internal/modules/recording/dto"
	recordingin "recstudio/internal/modules/recording/port/in"
	"recstudio/internal/modules/recording/service"
)

type Interactor struct {
	ctl *service.Controller
}

func NewInteractor(ctl *service.Controller) recordingin.Usecase {
	return &Interactor{ctl: ctl}
}

func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error) {
	profile := domain.Profile{
		CaptureMode:        domain.CaptureMode(input.CaptureMode),
		WindowTarget:       input.WindowTarget,
		FrameRate:          input.FrameRate,
		Resolution:         input.Resolution,
		MicrophoneDeviceID: input.MicrophoneDeviceID,
		SystemAudioEnabled: input.SystemAudioEnabled,
	}
	snap, err := i.ctl.Start(ctx, profile)
	return toOutput(snap), err
}

func (i *Interactor) Pause(ctx context.Context) (dto.SessionOutput, error) {
	snap, err := i.ctl.Pause(ctx)
	return toOutput(snap), err
}

func (i *Interactor) Resume(ctx context.Context) (dto.SessionOutput, error) {
	snap, err := i.ctl.Resume(ctx)
	return toOutput(snap), err
}

func (i *Interactor) Stop(ctx context.Context) (dto.SessionOutput, error) {
	snap, err := i.ctl.Stop(ctx)
	return toOutput(snap), err
}

func (i *Interactor) Current(context.Context) (dto.SessionOutput, error) {
	return toOutput(i.ctl.Snapshot()), nil
}

func toOutput(snap domain.Snapshot) dto.SessionOutput {
	out := dto.SessionOutput{
		SessionID:      snap.SessionID,
		ProjectID:      snap.ProjectID,
		Status:         string(snap.Status),
		DurationMS:     snap.DurationMS,
		SourceLabel:    snap.SourceLabel,
		Detail:         snap.Detail,
		DegradeMessage: snap.DegradeMessage,
	}
	if snap.LastError != nil {
		out.ErrorCode = snap.LastError.Code
		out.ErrorMessage = snap.LastError.Message
		out.Suggestion = snap.LastError.Suggestion
	}
	return out
}
