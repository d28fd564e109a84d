package usecase

import (
	"context"

	"recstudio/internal/modules/export/domain"
	"recstudio/internal/modules/export/dto"
	exportin "recstudio/internal/modules/export/port/in"
	"recstudio/internal/modules/export/service"
	projectdto "recstudio/internal/modules/project/dto"
	projectin "recstudio/internal/modules/project/port/in"
)

type Interactor struct {
	engine   *service.Engine
	projects projectin.Usecase
}

func NewInteractor(engine *service.Engine, projects projectin.Usecase) exportin.Usecase {
	return &Interactor{engine: engine, projects: projects}
}

// Start flushes pending manifest edits before submitting, so the render
// always sees the manifest state the user last saw.
func (i *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.TaskOutput, error) {
	project, err := i.projects.Current(ctx)
	if err != nil || project.ProjectID != input.ProjectID || !project.Loaded {
		project, err = i.projects.Load(ctx, projectdto.LoadInput{ProjectID: input.ProjectID})
		if err != nil {
			return dto.TaskOutput{}, err
		}
	}
	if err := i.projects.Flush(ctx); err != nil {
		return dto.TaskOutput{}, err
	}

	profile := domain.Profile{
		Format:      project.Export.Format,
		Resolution:  project.Export.Resolution,
		BitrateMbps: project.Export.BitrateMbps,
		FPS:         project.Export.FPS,
		VideoCodec:  project.Export.VideoCodec,
		AudioCodec:  project.Export.AudioCodec,
	}
	if input.Format != "" {
		profile.Format = input.Format
	}
	if input.Resolution != "" {
		profile.Resolution = input.Resolution
	}
	if input.BitrateMbps > 0 {
		profile.BitrateMbps = input.BitrateMbps
	}
	if input.FPS > 0 {
		profile.FPS = input.FPS
	}

	snap, err := i.engine.Start(ctx, input.ProjectID, profile)
	return toOutput(snap), err
}

func (i *Interactor) Retry(ctx context.Context) (dto.TaskOutput, error) {
	snap, err := i.engine.Retry(ctx)
	return toOutput(snap), err
}

func (i *Interactor) Current(context.Context) (dto.TaskOutput, error) {
	return toOutput(i.engine.Snapshot()), nil
}

func toOutput(snap domain.Snapshot) dto.TaskOutput {
	out := dto.TaskOutput{
		TaskID:     snap.TaskID,
		ProjectID:  snap.ProjectID,
		Status:     string(snap.Status),
		Progress:   snap.Progress,
		Retries:    snap.Retries,
		Detail:     snap.Detail,
		OutputPath: snap.OutputPath,
	}
	if snap.LastError != nil {
		out.ErrorCode = snap.LastError.Code
		out.ErrorMessage = snap.LastError.Message
		out.Suggestion = snap.LastError.Suggestion
	}
	return out
}
