package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"recstudio/internal/modules/project/domain"
	apperrors "recstudio/internal/platform/errors"
)

type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	timeline []domain.TimelinePatch

	manifests map[string]domain.Manifest
	loadGate  map[string]chan struct{}
	loadErr   map[string]error

	patchGate chan struct{}
	patchErrs []error
	slowFirst time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		manifests: map[string]domain.Manifest{},
		loadGate:  map[string]chan struct{}{},
		loadErr:   map[string]error{},
	}
}

func (f *fakeBackend) record(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return len(f.calls)
}

func (f *fakeBackend) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) LoadProject(_ context.Context, projectID string) (domain.Manifest, error) {
	f.record("load:" + projectID)
	f.mu.Lock()
	gate := f.loadGate[projectID]
	loadErr := f.loadErr[projectID]
	manifest := f.manifests[projectID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if loadErr != nil {
		return domain.Manifest{}, loadErr
	}
	return manifest, nil
}

func (f *fakeBackend) PatchTimeline(_ context.Context, projectID string, patch domain.TimelinePatch) error {
	n := f.record("timeline:" + projectID)
	f.mu.Lock()
	f.timeline = append(f.timeline, patch)
	gate := f.patchGate
	f.patchGate = nil
	var err error
	if len(f.patchErrs) > 0 {
		err = f.patchErrs[0]
		f.patchErrs = f.patchErrs[1:]
	}
	slow := f.slowFirst
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if n == 1 && slow > 0 {
		time.Sleep(slow)
	}
	return err
}

func (f *fakeBackend) PatchCameraMotion(_ context.Context, projectID string, _ domain.CameraMotionPatch) error {
	f.record("camera:" + projectID)
	return nil
}

func (f *fakeBackend) ListProjects(context.Context) ([]domain.ListItem, error) { return nil, nil }
func (f *fakeBackend) UpdateTitle(context.Context, string, string) error      { return nil }
func (f *fakeBackend) DeleteProject(context.Context, string) error            { return nil }
func (f *fakeBackend) RecoverProjects(context.Context) ([]domain.Recoverable, error) {
	return nil, nil
}

func newQueue(t *testing.T, backend *fakeBackend) *MutationQueue {
	t.Helper()
	q := NewMutationQueue(backend, hclog.NewNullLogger())
	t.Cleanup(q.Close)
	return q
}

func TestLoadInstallsManifest(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.manifests["p1"] = domain.Manifest{Title: "demo", Status: domain.StatusReadyToEdit}
	q := newQueue(t, backend)

	snap, err := q.Load(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.ProjectID != "p1" || snap.Manifest == nil || snap.Manifest.Title != "demo" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestLoadClearsCacheBeforeFetch(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.manifests["p1"] = domain.Manifest{Title: "first"}
	backend.manifests["p2"] = domain.Manifest{Title: "second"}
	gate := make(chan struct{})
	backend.loadGate["p2"] = gate
	q := newQueue(t, backend)

	if _, err := q.Load(context.Background(), "p1"); err != nil {
		t.Fatalf("Load p1: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = q.Load(context.Background(), "p2")
	}()

	deadline := time.After(time.Second)
	for {
		snap := q.Current()
		if snap.ProjectID == "p2" {
			if snap.Manifest != nil {
				t.Errorf("cache should be empty while the load is in flight, got %+v", snap.Manifest)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("load never switched current project")
		case <-time.After(time.Millisecond):
		}
	}

	close(gate)
	<-done
	if snap := q.Current(); snap.Manifest == nil || snap.Manifest.Title != "second" {
		t.Fatalf("cache = %+v, want second manifest", snap.Manifest)
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.manifests["a"] = domain.Manifest{Title: "A"}
	backend.manifests["b"] = domain.Manifest{Title: "B"}
	gateA := make(chan struct{})
	backend.loadGate["a"] = gateA
	q := newQueue(t, backend)

	loadedA := make(chan struct{})
	go func() {
		defer close(loadedA)
		_, _ = q.Load(context.Background(), "a")
	}()

	waitForCall(t, backend, "load:a")
	if _, err := q.Load(context.Background(), "b"); err != nil {
		t.Fatalf("Load b: %v", err)
	}

	close(gateA)
	<-loadedA

	snap := q.Current()
	if snap.ProjectID != "b" || snap.Manifest == nil || snap.Manifest.Title != "B" {
		t.Fatalf("cache = %+v, want B to win over the late A response", snap)
	}
}

func TestLoadFailureIsNormalized(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.loadErr["p1"] = errors.New(`{"code":"PROJECT_NOT_FOUND","message":"no manifest on disk"}`)
	q := newQueue(t, backend)

	_, err := q.Load(context.Background(), "p1")
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != "PROJECT_NOT_FOUND" {
		t.Fatalf("err = %v, want PROJECT_NOT_FOUND", err)
	}
}

func TestPatchRequiresCurrentProject(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	q := newQueue(t, backend)

	start := int64(100)
	if err := q.PatchTimeline(domain.TimelinePatch{TrimStartMS: &start}); !errors.Is(err, apperrors.ErrNoCurrentProject) {
		t.Fatalf("err = %v, want ErrNoCurrentProject", err)
	}
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if calls := backend.callLog(); len(calls) != 0 {
		t.Fatalf("backend saw %v, want no calls", calls)
	}
}

func TestWritesReachBackendInIssueOrder(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.manifests["p1"] = domain.Manifest{}
	backend.slowFirst = 30 * time.Millisecond
	q := newQueue(t, backend)

	if _, err := q.Load(context.Background(), "p1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	start := int64(500)
	enabled := false
	if err := q.PatchTimeline(domain.TimelinePatch{TrimStartMS: &start}); err != nil {
		t.Fatalf("PatchTimeline: %v", err)
	}
	if err := q.PatchCameraMotion(domain.CameraMotionPatch{Enabled: &enabled}); err != nil {
		t.Fatalf("PatchCameraMotion: %v", err)
	}
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	calls := backend.callLog()
	want := []string{"load:p1", "timeline:p1", "camera:p1"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}

func TestWriteFailureDoesNotHaltQueue(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.manifests["p1"] = domain.Manifest{}
	backend.patchErrs = []error{errors.New("disk full")}
	q := newQueue(t, backend)

	if _, err := q.Load(context.Background(), "p1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	first := int64(100)
	second := int64(200)
	if err := q.PatchTimeline(domain.TimelinePatch{TrimStartMS: &first}); err != nil {
		t.Fatalf("first patch: %v", err)
	}
	if err := q.PatchTimeline(domain.TimelinePatch{TrimStartMS: &second}); err != nil {
		t.Fatalf("second patch: %v", err)
	}
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	backend.mu.Lock()
	patches := len(backend.timeline)
	backend.mu.Unlock()
	if patches != 2 {
		t.Fatalf("backend saw %d timeline writes, want 2", patches)
	}
	if snap := q.Current(); snap.Manifest.Timeline.TrimStartMS != 200 {
		t.Fatalf("TrimStartMS = %d, want 200", snap.Manifest.Timeline.TrimStartMS)
	}
}

func TestPatchSkipsMergeWhenProjectSwitched(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend()
	backend.manifests["a"] = domain.Manifest{Title: "A"}
	backend.manifests["b"] = domain.Manifest{Title: "B"}
	gate := make(chan struct{})
	backend.patchGate = gate
	q := newQueue(t, backend)

	if _, err := q.Load(context.Background(), "a"); err != nil {
		t.Fatalf("Load a: %v", err)
	}
	start := int64(777)
	if err := q.PatchTimeline(domain.TimelinePatch{TrimStartMS: &start}); err != nil {
		t.Fatalf("PatchTimeline: %v", err)
	}

	waitForCall(t, backend, "timeline:a")
	if _, err := q.Load(context.Background(), "b"); err != nil {
		t.Fatalf("Load b: %v", err)
	}

	close(gate)
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	snap := q.Current()
	if snap.ProjectID != "b" {
		t.Fatalf("project = %q, want b", snap.ProjectID)
	}
	if snap.Manifest.Timeline.TrimStartMS != 0 {
		t.Fatalf("patch for a leaked into b's cache: %+v", snap.Manifest.Timeline)
	}
	found := false
	for _, call := range backend.callLog() {
		if call == "timeline:a" {
			found = true
		}
	}
	if !found {
		t.Fatal("write should still reach the backend for the original target")
	}
}

func waitForCall(t *testing.T, backend *fakeBackend, call string) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		for _, c := range backend.callLog() {
			if c == call {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", call)
		case <-time.After(time.Millisecond):
		}
	}
}
