package out

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	projectdomain "recstudio/internal/modules/project/domain"
	"recstudio/internal/modules/studio/domain"
	apperrors "recstudio/internal/platform/errors"
)

func newStore(t *testing.T) *FileManifestStore {
	t.Helper()
	return NewFileManifestStore(t.TempDir()).(*FileManifestStore)
}

func TestManifestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	manifest := projectdomain.NewManifest(projectdomain.RecordingProfile{CaptureMode: "fullscreen", FrameRate: 30}, "1.0.0", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	manifest.Title = "demo walkthrough"
	if err := store.Save("p1", manifest); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load("p1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Title != "demo walkthrough" || loaded.Recording.FrameRate != 30 {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.SchemaVersion != projectdomain.SchemaVersion {
		t.Fatalf("schemaVersion = %d", loaded.SchemaVersion)
	}
}

func TestManifestStoreLoadMissingProject(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	_, err := store.Load("nope")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != "PROJECT_NOT_FOUND" {
		t.Fatalf("err = %v", err)
	}
}

func TestManifestStoreRejectsNewerSchema(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	dir := store.ProjectDir("future")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	raw := []byte(`{"schemaVersion": 99, "status": "ready_to_edit"}`)
	if err := os.WriteFile(filepath.Join(dir, manifestFile), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.Load("future")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != "UNSUPPORTED_SCHEMA" {
		t.Fatalf("err = %v", err)
	}
}

func TestManifestStoreMigratesOlderSchemaWithDefaults(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	dir := store.ProjectDir("old")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// A pre-camera-motion manifest: absent sections must pick up defaults.
	raw := []byte(`{"schemaVersion": 0, "title": "legacy", "status": "ready_to_edit"}`)
	if err := os.WriteFile(filepath.Join(dir, manifestFile), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	manifest, err := store.Load("old")
	if err != nil {
		t.Fatal(err)
	}
	if manifest.Title != "legacy" {
		t.Fatalf("title = %q", manifest.Title)
	}
	if !manifest.CameraMotion.Enabled || manifest.CameraMotion.Intensity != projectdomain.IntensityMedium {
		t.Fatalf("cameraMotion = %+v, want defaults filled in", manifest.CameraMotion)
	}
	if manifest.SchemaVersion != projectdomain.SchemaVersion {
		t.Fatalf("schemaVersion = %d, want upgraded", manifest.SchemaVersion)
	}
}

func TestManifestStoreRecoveryMarker(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	if store.HasRecoveryMarker("p1") {
		t.Fatal("marker should not exist yet")
	}
	if err := store.MarkRecovery("p1"); err != nil {
		t.Fatal(err)
	}
	if !store.HasRecoveryMarker("p1") {
		t.Fatal("marker should exist")
	}
	if err := store.ClearRecovery("p1"); err != nil {
		t.Fatal(err)
	}
	if store.HasRecoveryMarker("p1") {
		t.Fatal("marker should be gone")
	}
	if err := store.ClearRecovery("p1"); err != nil {
		t.Fatalf("clearing twice should be fine: %v", err)
	}
}

func TestManifestStoreProjectIDsSkipsStrays(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	manifest := projectdomain.NewManifest(projectdomain.RecordingProfile{}, "1.0.0", time.Now().UTC())
	if err := store.Save("b", manifest); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("a", manifest); err != nil {
		t.Fatal(err)
	}
	// A directory without a manifest is not a project.
	if err := os.MkdirAll(store.ProjectDir("stray"), 0o755); err != nil {
		t.Fatal(err)
	}

	ids, err := store.ProjectIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestManifestStoreWritesCursorTrack(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	samples := domain.FallbackCursorTrack(1000)
	if err := store.WriteCursorTrack("p1", samples); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(store.CursorTrackPath("p1"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded []domain.CursorSample
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(samples))
	}
}
