package usecase

import (
	"context"

	"recstudio/internal/modules/publish/dto"
	publishin "recstudio/internal/modules/publish/port/in"
	"recstudio/internal/modules/publish/service"
)

type Interactor struct {
	svc *service.PublishService
}

func NewInteractor(svc *service.PublishService) publishin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PublisherInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) ListTargets(ctx context.Context, publisherName string) ([]dto.TargetInfo, error) {
	return i.svc.ListTargets(ctx, publisherName)
}

func (i *Interactor) Publish(ctx context.Context, input dto.PublishInput) (dto.PublishOutput, error) {
	return i.svc.Publish(ctx, input)
}
