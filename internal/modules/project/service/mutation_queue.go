package service

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"recstudio/internal/modules/project/domain"
	projectout "recstudio/internal/modules/project/port/out"
	apperrors "recstudio/internal/platform/errors"
)

const (
	queueDepth   = 256
	writeTimeout = 15 * time.Second
)

// Snapshot is the queue's current view of the selected project. Manifest is
// nil while no project is selected or while a load is in flight.
type Snapshot struct {
	ProjectID string
	Manifest  *domain.Manifest
}

// MutationQueue caches at most one project manifest and serializes every
// edit into a single ordered stream of backend writes. Ordering is the
// contract: the backend observes patches in the exact order the UI issued
// them, because only one write command is ever in flight.
//
// Loads bypass the queue. Each load takes a fresh sequence number and the
// response is discarded if a newer load was issued in the meantime.
type MutationQueue struct {
	backend projectout.Backend
	logger  hclog.Logger

	mu        sync.Mutex
	loadSeq   uint64
	projectID string
	manifest  *domain.Manifest

	ops       chan func()
	workerEnd chan struct{}
	closeOnce sync.Once
}

func NewMutationQueue(backend projectout.Backend, logger hclog.Logger) *MutationQueue {
	q := &MutationQueue{
		backend:   backend,
		logger:    logger.Named("mutation-queue"),
		ops:       make(chan func(), queueDepth),
		workerEnd: make(chan struct{}),
	}
	go q.worker()
	return q
}

func (q *MutationQueue) worker() {
	defer close(q.workerEnd)
	for op := range q.ops {
		op()
	}
}

// Close drains the queue and stops the worker. Pending writes still run.
func (q *MutationQueue) Close() {
	q.closeOnce.Do(func() { close(q.ops) })
	<-q.workerEnd
}

// Load selects a project and fetches its manifest. The cache is cleared
// before the fetch goes out so the UI never shows another project's data
// while waiting. A response that lost the race to a newer Load is dropped.
func (q *MutationQueue) Load(ctx context.Context, projectID string) (Snapshot, error) {
	q.mu.Lock()
	q.loadSeq++
	seq := q.loadSeq
	q.projectID = projectID
	q.manifest = nil
	q.mu.Unlock()

	manifest, err := q.backend.LoadProject(ctx, projectID)

	q.mu.Lock()
	defer q.mu.Unlock()
	if seq != q.loadSeq || q.projectID != projectID {
		q.logger.Debug("discarding stale load", "project", projectID, "seq", seq)
		return q.snapshotLocked(), nil
	}
	if err != nil {
		appErr := apperrors.Normalize(err, "PROJECT_LOAD_FAILED", "failed to load project")
		return q.snapshotLocked(), appErr
	}
	q.manifest = &manifest
	return q.snapshotLocked(), nil
}

// PatchTimeline enqueues a timeline edit against the currently selected
// project. The call returns once the edit is queued, not once it is written.
func (q *MutationQueue) PatchTimeline(patch domain.TimelinePatch) error {
	target, err := q.currentTarget()
	if err != nil {
		return err
	}
	q.enqueue(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := q.backend.PatchTimeline(ctx, target, patch); err != nil {
			q.logger.Warn("timeline write failed", "project", target, "error", err)
		}
		q.mu.Lock()
		if q.projectID == target && q.manifest != nil {
			q.manifest.ApplyTimeline(patch)
		}
		q.mu.Unlock()
	})
	return nil
}

// PatchCameraMotion enqueues a camera-motion edit. Shares the timeline's
// queue so alternating edits cannot reach the backend out of order.
func (q *MutationQueue) PatchCameraMotion(patch domain.CameraMotionPatch) error {
	target, err := q.currentTarget()
	if err != nil {
		return err
	}
	q.enqueue(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := q.backend.PatchCameraMotion(ctx, target, patch); err != nil {
			q.logger.Warn("camera motion write failed", "project", target, "error", err)
		}
		q.mu.Lock()
		if q.projectID == target && q.manifest != nil {
			q.manifest.ApplyCameraMotion(patch)
		}
		q.mu.Unlock()
	})
	return nil
}

// Flush resolves once every write enqueued before it has completed,
// successfully or not. Callers that need the backend to reflect all edits
// made so far, such as an export start, wait on this barrier first.
func (q *MutationQueue) Flush(ctx context.Context) error {
	barrier := make(chan struct{})
	q.enqueue(func() { close(barrier) })
	select {
	case <-barrier:
		return nil
	case <-q.workerEnd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Current returns the cached view without touching the backend.
func (q *MutationQueue) Current() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// Clear drops the selection and cache, for example after the project is
// deleted. In-flight load responses for the old selection become stale.
func (q *MutationQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.loadSeq++
	q.projectID = ""
	q.manifest = nil
}

func (q *MutationQueue) currentTarget() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.projectID == "" {
		return "", apperrors.ErrNoCurrentProject
	}
	return q.projectID, nil
}

func (q *MutationQueue) enqueue(op func()) {
	q.ops <- op
}

func (q *MutationQueue) snapshotLocked() Snapshot {
	snap := Snapshot{ProjectID: q.projectID}
	if q.manifest != nil {
		copied := *q.manifest
		snap.Manifest = &copied
	}
	return snap
}
