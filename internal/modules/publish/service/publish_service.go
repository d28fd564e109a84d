package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"recstudio/internal/modules/publish/domain"
	"recstudio/internal/modules/publish/dto"
	publishout "recstudio/internal/modules/publish/port/out"
)

type PublishService struct {
	store publishout.ManifestStore
	host  publishout.Host
}

func NewPublishService(store publishout.ManifestStore, host publishout.Host) *PublishService {
	return &PublishService{store: store, host: host}
}

func (s *PublishService) List(ctx context.Context) ([]dto.PublisherInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PublisherInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.PublisherInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

func (s *PublishService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *PublishService) ListTargets(ctx context.Context, publisherName string) ([]dto.TargetInfo, error) {
	manifest, err := s.getRunnableManifest(ctx, publisherName, "")
	if err != nil {
		return nil, err
	}
	targets, err := s.host.ListTargets(ctx, manifest)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TargetInfo, 0, len(targets))
	for _, target := range targets {
		out = append(out, dto.TargetInfo{
			ID:              target.ID,
			Title:           target.Title,
			Description:     target.Description,
			InputSchemaJSON: target.InputSchemaJSON,
			TimeoutMS:       target.TimeoutMS,
		})
	}
	return out, nil
}

func (s *PublishService) Publish(ctx context.Context, input dto.PublishInput) (dto.PublishOutput, error) {
	manifest, err := s.getRunnableManifest(ctx, input.PublisherName, domain.CapabilityPublish)
	if err != nil {
		return dto.PublishOutput{}, err
	}
	if input.InputJSON != "" && !json.Valid([]byte(input.InputJSON)) {
		return dto.PublishOutput{}, fmt.Errorf("input-json must be valid JSON")
	}
	req := domain.PublishRequest{
		TargetID:  input.TargetID,
		InputJSON: input.InputJSON,
		Context: domain.PublishContext{
			ProjectID:  input.ProjectID,
			Title:      input.Title,
			ExportPath: input.ExportPath,
			Env:        input.Env,
		},
	}
	if err := req.Validate(); err != nil {
		return dto.PublishOutput{}, err
	}
	if !fileExists(input.ExportPath) {
		return dto.PublishOutput{}, fmt.Errorf("export file does not exist: %s", input.ExportPath)
	}
	targets, err := s.host.ListTargets(ctx, manifest)
	if err != nil {
		return dto.PublishOutput{}, err
	}
	if _, err := requireTarget(targets, input.TargetID); err != nil {
		return dto.PublishOutput{}, err
	}

	result, err := s.host.Publish(ctx, manifest, req)
	if err != nil {
		return dto.PublishOutput{}, err
	}
	return dto.PublishOutput{
		PublisherName: input.PublisherName,
		TargetID:      input.TargetID,
		URL:           result.URL,
		Detail:        result.Detail,
		Stderr:        result.Stderr,
		ExitCode:      result.ExitCode,
	}, nil
}

func (s *PublishService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate publisher name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *PublishService) getRunnableManifest(ctx context.Context, publisherName string, requiredCapability domain.Capability) (domain.Manifest, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	manifest := domain.Manifest{}
	found := false
	for _, item := range manifests {
		if item.Name == publisherName {
			manifest = item
			found = true
			break
		}
	}
	if !found {
		return domain.Manifest{}, fmt.Errorf("publisher %q not found", publisherName)
	}
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPublisherDisabled, publisherName)
	}
	if requiredCapability != "" && !manifest.HasCapability(requiredCapability) {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, requiredCapability)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return domain.Manifest{}, err
	}
	if s.host != nil {
		if err := s.host.CheckLifecycle(ctx, manifest); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPublisherTimeout, publisherName)
			}
			return domain.Manifest{}, err
		}
	}
	return manifest, nil
}

func requireTarget(targets []domain.TargetDescriptor, targetID string) (domain.TargetDescriptor, error) {
	for _, target := range targets {
		if err := target.Validate(); err != nil {
			return domain.TargetDescriptor{}, err
		}
		if target.ID == targetID {
			return target, nil
		}
	}
	return domain.TargetDescriptor{}, fmt.Errorf("%w: %s", domain.ErrTargetNotFound, targetID)
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read publisher binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
