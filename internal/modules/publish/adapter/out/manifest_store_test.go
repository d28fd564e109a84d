package out

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManifestStoreLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewFileManifestStore(t.TempDir())
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(manifests) != 0 {
		t.Fatalf("manifests = %+v", manifests)
	}
}

func TestManifestStoreResolvesRelativeBinaries(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	dir := filepath.Join(base, "publishers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	raw := `[{"name":"copydir","version":"1.0.0","binary":"publishers/bin/copydir","sha256":"` + strings.Repeat("ab", 32) + `","enabled":true,"capabilities":["publish"]}]`
	if err := os.WriteFile(filepath.Join(dir, "publishers.json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	manifests, err := NewFileManifestStore(base).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(manifests) != 1 {
		t.Fatalf("manifests = %+v", manifests)
	}
	want := filepath.Join(base, "publishers", "bin", "copydir")
	if manifests[0].Binary != want {
		t.Fatalf("binary = %q, want %q", manifests[0].Binary, want)
	}
}

func TestManifestStoreRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	dir := filepath.Join(base, "publishers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	raw := `[{"name":"copydir","surprise":true}]`
	if err := os.WriteFile(filepath.Join(dir, "publishers.json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileManifestStore(base).Load(context.Background()); err == nil {
		t.Fatal("expected decode error for unknown field")
	}
}
