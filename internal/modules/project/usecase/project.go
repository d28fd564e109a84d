package usecase

import (
	"context"
	"errors"

	"recstudio/internal/modules/project/domain"
	"recstudio/internal/modules/project/dto"
	projectin "recstudio/internal/modules/project/port/in"
	projectout "recstudio/internal/modules/project/port/out"
	"recstudio/internal/modules/project/service"
	apperrors "recstudio/internal/platform/errors"
)

type Interactor struct {
	queue   *service.MutationQueue
	backend projectout.Backend
}

func NewInteractor(queue *service.MutationQueue, backend projectout.Backend) projectin.Usecase {
	return &Interactor{queue: queue, backend: backend}
}

func (i *Interactor) Load(ctx context.Context, input dto.LoadInput) (dto.ProjectOutput, error) {
	snap, err := i.queue.Load(ctx, input.ProjectID)
	return toOutput(snap, err), err
}

func (i *Interactor) Current(context.Context) (dto.ProjectOutput, error) {
	return toOutput(i.queue.Current(), nil), nil
}

func (i *Interactor) PatchTimeline(_ context.Context, input dto.TimelinePatchInput) error {
	return i.queue.PatchTimeline(domain.TimelinePatch{
		TrimStartMS:            input.TrimStartMS,
		TrimEndMS:              input.TrimEndMS,
		AspectRatio:            input.AspectRatio,
		CursorHighlightEnabled: input.CursorHighlightEnabled,
	})
}

func (i *Interactor) PatchCameraMotion(_ context.Context, input dto.CameraMotionPatchInput) error {
	patch := domain.CameraMotionPatch{
		Enabled:         input.Enabled,
		Smoothing:       input.Smoothing,
		MaxZoom:         input.MaxZoom,
		IdleThresholdMS: input.IdleThresholdMS,
	}
	if input.Intensity != nil {
		intensity := domain.Intensity(*input.Intensity)
		patch.Intensity = &intensity
	}
	return i.queue.PatchCameraMotion(patch)
}

func (i *Interactor) Flush(ctx context.Context) error {
	return i.queue.Flush(ctx)
}

func (i *Interactor) List(ctx context.Context) ([]dto.ProjectListItem, error) {
	items, err := i.backend.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProjectListItem, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ProjectListItem{
			ProjectID:  item.ProjectID,
			Title:      item.Title,
			Status:     string(item.Status),
			CreatedAt:  item.CreatedAt,
			UpdatedAt:  item.UpdatedAt,
			DurationMS: item.DurationMS,
			HasExport:  item.HasExport,
			ExportPath: item.ExportPath,
		})
	}
	return out, nil
}

func (i *Interactor) Rename(ctx context.Context, projectID, title string) error {
	return i.backend.UpdateTitle(ctx, projectID, title)
}

func (i *Interactor) Delete(ctx context.Context, projectID string) error {
	if err := i.backend.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	if i.queue.Current().ProjectID == projectID {
		i.queue.Clear()
	}
	return nil
}

func (i *Interactor) Recover(ctx context.Context) ([]dto.RecoverableOutput, error) {
	items, err := i.backend.RecoverProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecoverableOutput, 0, len(items))
	for _, item := range items {
		out = append(out, dto.RecoverableOutput{ProjectID: item.ProjectID, Reason: item.Reason, Path: item.Path})
	}
	return out, nil
}

func toOutput(snap service.Snapshot, err error) dto.ProjectOutput {
	out := dto.ProjectOutput{ProjectID: snap.ProjectID}
	if appErr := errorFields(err); appErr != nil {
		out.ErrorCode = appErr.Code
		out.ErrorMessage = appErr.Message
		out.Suggestion = appErr.Suggestion
	}
	m := snap.Manifest
	if m == nil {
		return out
	}
	out.Loaded = true
	out.Title = m.Title
	out.Status = string(m.Status)
	out.CreatedAt = m.CreatedAt
	out.UpdatedAt = m.UpdatedAt
	out.Timeline = dto.TimelineOutput{
		TrimStartMS:            m.Timeline.TrimStartMS,
		TrimEndMS:              m.Timeline.TrimEndMS,
		AspectRatio:            m.Timeline.AspectRatio,
		CursorHighlightEnabled: m.Timeline.CursorHighlightEnabled,
	}
	out.CameraMotion = dto.CameraMotionOutput{
		Enabled:         m.CameraMotion.Enabled,
		Intensity:       string(m.CameraMotion.Intensity),
		Smoothing:       m.CameraMotion.Smoothing,
		MaxZoom:         m.CameraMotion.MaxZoom,
		IdleThresholdMS: m.CameraMotion.IdleThresholdMS,
	}
	out.Export = dto.ExportProfileOutput{
		Format:      m.Export.Format,
		Resolution:  m.Export.Resolution,
		BitrateMbps: m.Export.BitrateMbps,
		FPS:         m.Export.FPS,
		VideoCodec:  m.Export.VideoCodec,
		AudioCodec:  m.Export.AudioCodec,
	}
	out.RawRecordingPath = m.Artifacts.RawRecordingPath
	out.LastExportPath = m.Artifacts.LastExportPath
	if m.LastError != nil && out.ErrorCode == "" {
		out.ErrorCode = m.LastError.Code
		out.ErrorMessage = m.LastError.Message
		out.Suggestion = m.LastError.Suggestion
	}
	return out
}

func errorFields(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Normalize(err, "PROJECT_ERROR", err.Error())
	}
	return &appErr
}
