package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"recstudio/internal/modules/publish/domain"
	"recstudio/internal/modules/publish/dto"
	"recstudio/internal/modules/publish/service"
	"recstudio/internal/modules/publish/usecase"
)

type fakeManifestStore struct {
	manifests []domain.Manifest
}

func (s fakeManifestStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	published []domain.PublishRequest
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }

func (h *fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "copydir", Version: "1.0.0"}, nil
}

func (h *fakeHost) ListTargets(context.Context, domain.Manifest) ([]domain.TargetDescriptor, error) {
	return []domain.TargetDescriptor{
		{ID: "local-dir", Title: "Local directory", TimeoutMS: 1000},
	}, nil
}

func (h *fakeHost) Publish(_ context.Context, _ domain.Manifest, input domain.PublishRequest) (domain.PublishResult, error) {
	h.published = append(h.published, input)
	return domain.PublishResult{URL: "file:///exports/out.mp4", ExitCode: 0}, nil
}

func manifestWithBinary(t *testing.T) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "publisher-bin")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:         "copydir",
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityPublish},
	}
}

func exportFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output.mp4")
	if err := os.WriteFile(path, []byte("mp4"), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func TestUsecaseListTargetsAndPublish(t *testing.T) {
	t.Parallel()

	manifest := manifestWithBinary(t)
	host := &fakeHost{}
	uc := usecase.NewInteractor(service.NewPublishService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, host))

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "copydir" {
		t.Fatalf("list = %+v", list)
	}

	docs, err := uc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(docs) != 1 || !docs[0].ChecksumValid || !docs[0].LifecycleOK {
		t.Fatalf("doctor = %+v", docs)
	}

	targets, err := uc.ListTargets(context.Background(), "copydir")
	if err != nil {
		t.Fatalf("list targets: %v", err)
	}
	if len(targets) != 1 || targets[0].ID != "local-dir" {
		t.Fatalf("targets = %+v", targets)
	}

	out, err := uc.Publish(context.Background(), dto.PublishInput{
		PublisherName: "copydir",
		TargetID:      "local-dir",
		ProjectID:     "p1",
		Title:         "demo",
		ExportPath:    exportFile(t),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if out.URL == "" || out.ExitCode != 0 {
		t.Fatalf("publish output = %+v", out)
	}
	if len(host.published) != 1 || host.published[0].Context.ProjectID != "p1" {
		t.Fatalf("host saw %+v", host.published)
	}
}

func TestPublishRejectsUnknownTarget(t *testing.T) {
	t.Parallel()

	manifest := manifestWithBinary(t)
	uc := usecase.NewInteractor(service.NewPublishService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, &fakeHost{}))

	_, err := uc.Publish(context.Background(), dto.PublishInput{
		PublisherName: "copydir",
		TargetID:      "s3-bucket",
		ExportPath:    exportFile(t),
	})
	if !errors.Is(err, domain.ErrTargetNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestPublishRejectsDisabledPublisher(t *testing.T) {
	t.Parallel()

	manifest := manifestWithBinary(t)
	manifest.Enabled = false
	uc := usecase.NewInteractor(service.NewPublishService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, &fakeHost{}))

	_, err := uc.Publish(context.Background(), dto.PublishInput{
		PublisherName: "copydir",
		TargetID:      "local-dir",
		ExportPath:    exportFile(t),
	})
	if !errors.Is(err, domain.ErrPublisherDisabled) {
		t.Fatalf("err = %v", err)
	}
}

func TestPublishRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()

	manifest := manifestWithBinary(t)
	manifest.SHA256 = hexOfZeros()
	uc := usecase.NewInteractor(service.NewPublishService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, &fakeHost{}))

	_, err := uc.Publish(context.Background(), dto.PublishInput{
		PublisherName: "copydir",
		TargetID:      "local-dir",
		ExportPath:    exportFile(t),
	})
	if !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestPublishRejectsMissingCapability(t *testing.T) {
	t.Parallel()

	manifest := manifestWithBinary(t)
	manifest.Capabilities = []domain.Capability{domain.CapabilityValidate}
	uc := usecase.NewInteractor(service.NewPublishService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, &fakeHost{}))

	_, err := uc.Publish(context.Background(), dto.PublishInput{
		PublisherName: "copydir",
		TargetID:      "local-dir",
		ExportPath:    exportFile(t),
	})
	if !errors.Is(err, domain.ErrCapabilityMissing) {
		t.Fatalf("err = %v", err)
	}
}

func TestPublishRejectsMissingExportFile(t *testing.T) {
	t.Parallel()

	manifest := manifestWithBinary(t)
	uc := usecase.NewInteractor(service.NewPublishService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, &fakeHost{}))

	_, err := uc.Publish(context.Background(), dto.PublishInput{
		PublisherName: "copydir",
		TargetID:      "local-dir",
		ExportPath:    filepath.Join(t.TempDir(), "missing.mp4"),
	})
	if err == nil {
		t.Fatal("expected error for missing export file")
	}
}

func hexOfZeros() string {
	b := make([]byte, 32)
	return hex.EncodeToString(b)
}
