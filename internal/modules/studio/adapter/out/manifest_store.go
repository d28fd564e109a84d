package out

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	projectdomain "recstudio/internal/modules/project/domain"
	"recstudio/internal/modules/studio/domain"
	studioout "recstudio/internal/modules/studio/port/out"
	apperrors "recstudio/internal/platform/errors"
)

const (
	manifestFile = "project.json"
	markerFile   = "recovery.marker"
	rawAsset     = "recording_raw.mp4"
	cursorAsset  = "cursor_track.json"
	renderOutput = "output.mp4"
)

// FileManifestStore keeps one directory per project under the studio root:
//
//	<root>/projects/<id>/project.json
//	<root>/projects/<id>/assets/recording_raw.mp4
//	<root>/projects/<id>/assets/cursor_track.json
//	<root>/projects/<id>/renders/output.mp4
//	<root>/projects/<id>/renders/export-<task>.log
//	<root>/projects/<id>/recovery.marker
type FileManifestStore struct {
	root string
}

func NewFileManifestStore(root string) studioout.ManifestStore {
	return &FileManifestStore{root: filepath.Join(root, "projects")}
}

func (s *FileManifestStore) ProjectDir(projectID string) string {
	return filepath.Join(s.root, projectID)
}

func (s *FileManifestStore) RawRecordingPath(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), "assets", rawAsset)
}

func (s *FileManifestStore) CursorTrackPath(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), "assets", cursorAsset)
}

func (s *FileManifestStore) ExportOutputPath(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), "renders", renderOutput)
}

func (s *FileManifestStore) ExportLogPath(projectID, taskID string) string {
	return filepath.Join(s.ProjectDir(projectID), "renders", "export-"+taskID+".log")
}

func (s *FileManifestStore) Save(projectID string, manifest projectdomain.Manifest) error {
	dir := s.ProjectDir(projectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return atomicWrite(filepath.Join(dir, manifestFile), raw)
}

func (s *FileManifestStore) Load(projectID string) (projectdomain.Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(s.ProjectDir(projectID), manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return projectdomain.Manifest{}, apperrors.WithSuggestion("PROJECT_NOT_FOUND", "project not found: "+projectID, "list projects to see what exists")
		}
		return projectdomain.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var probe struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return projectdomain.Manifest{}, apperrors.New("PROJECT_CORRUPT", "project manifest is not valid json: "+projectID)
	}
	if probe.SchemaVersion > projectdomain.SchemaVersion {
		return projectdomain.Manifest{}, apperrors.WithSuggestion("UNSUPPORTED_SCHEMA", "project was created by a newer app version", "update the app to open this project")
	}

	// Older manifests decode over a defaulted base so fields added since
	// their schema version pick up current defaults.
	manifest := projectdomain.NewManifest(projectdomain.RecordingProfile{}, "", time.Time{})
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return projectdomain.Manifest{}, apperrors.New("PROJECT_CORRUPT", "project manifest is not valid json: "+projectID)
	}
	manifest.SchemaVersion = projectdomain.SchemaVersion
	return manifest, nil
}

func (s *FileManifestStore) Delete(projectID string) error {
	dir := s.ProjectDir(projectID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return apperrors.WithSuggestion("PROJECT_NOT_FOUND", "project not found: "+projectID, "list projects to see what exists")
	}
	return os.RemoveAll(dir)
}

func (s *FileManifestStore) ProjectIDs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects dir: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), manifestFile)); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileManifestStore) MarkRecovery(projectID string) error {
	dir := s.ProjectDir(projectID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, markerFile), []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644)
}

func (s *FileManifestStore) ClearRecovery(projectID string) error {
	err := os.Remove(filepath.Join(s.ProjectDir(projectID), markerFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileManifestStore) HasRecoveryMarker(projectID string) bool {
	_, err := os.Stat(filepath.Join(s.ProjectDir(projectID), markerFile))
	return err == nil
}

func (s *FileManifestStore) RawRecordingSize(projectID string) int64 {
	info, err := os.Stat(s.RawRecordingPath(projectID))
	if err != nil {
		return 0
	}
	return info.Size()
}

func (s *FileManifestStore) WriteCursorTrack(projectID string, samples []domain.CursorSample) error {
	path := s.CursorTrackPath(projectID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create assets dir: %w", err)
	}
	raw, err := json.Marshal(samples)
	if err != nil {
		return fmt.Errorf("encode cursor track: %w", err)
	}
	return atomicWrite(path, raw)
}

func (s *FileManifestStore) WriteExportLog(projectID, taskID, body string) (string, error) {
	path := s.ExportLogPath(projectID, taskID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create renders dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write export log: %w", err)
	}
	return path, nil
}

func atomicWrite(path string, raw []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
