package out

import (
	"context"

	"recstudio/internal/modules/publish/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	ListTargets(ctx context.Context, manifest domain.Manifest) ([]domain.TargetDescriptor, error)
	Publish(ctx context.Context, manifest domain.Manifest, input domain.PublishRequest) (domain.PublishResult, error)
}
