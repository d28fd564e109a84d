package service

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"recstudio/internal/modules/export/domain"
	exportout "recstudio/internal/modules/export/port/out"
	"recstudio/internal/platform/clock"
	apperrors "recstudio/internal/platform/errors"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 450
	fetchTimeout        = 10 * time.Second
)

// Engine tracks at most one export task. Every status source, poll response
// or pushed event, is admitted only when its task identity matches the
// currently adopted one; stale sources are discarded without ordering
// checks because a superseded task can never share the current identity.
//
// Poll loops are cancelled by token: each adoption bumps a generation
// counter, and a loop that wakes up under a newer generation exits without
// touching state.
type Engine struct {
	backend exportout.Backend
	sleeper clock.Sleeper
	logger  hclog.Logger

	pollInterval time.Duration
	maxPolls     int

	mu         sync.Mutex
	generation uint64
	snap       domain.Snapshot
}

func NewEngine(backend exportout.Backend, sleeper clock.Sleeper, logger hclog.Logger) *Engine {
	return &Engine{
		backend:      backend,
		sleeper:      sleeper,
		logger:       logger.Named("export-engine"),
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
}

// Start submits a render job and adopts the returned task identity. On
// command failure no identity is adopted and the failure is surfaced.
func (e *Engine) Start(ctx context.Context, projectID string, profile domain.Profile) (domain.Snapshot, error) {
	taskID, err := e.backend.StartExport(ctx, projectID, profile)

	e.mu.Lock()
	e.generation++
	if err != nil {
		appErr := apperrors.Normalize(err, "EXPORT_START_FAILED", "failed to start export")
		e.snap = domain.Snapshot{
			ProjectID: projectID,
			Status:    domain.StatusFailed,
			Progress:  100,
			Detail:    appErr.Message,
			LastError: &appErr,
		}
		snap := e.snap
		e.mu.Unlock()
		return snap, appErr
	}
	gen := e.generation
	e.snap = domain.Snapshot{TaskID: taskID, ProjectID: projectID, Status: domain.StatusQueued}
	snap := e.snap
	e.mu.Unlock()

	go e.pollLoop(gen, taskID)
	return snap, nil
}

// Retry asks the daemon to re-run the current task. The reply carries a new
// identity that fully replaces the old one; the old identity's poll loop
// notices the generation change on its next tick and exits. Updates still
// arriving for the old identity no longer match and are dropped.
func (e *Engine) Retry(ctx context.Context) (domain.Snapshot, error) {
	e.mu.Lock()
	oldTaskID := e.snap.TaskID
	projectID := e.snap.ProjectID
	e.mu.Unlock()
	if oldTaskID == "" {
		return e.Snapshot(), apperrors.ErrNoExportTask
	}

	newTaskID, err := e.backend.RetryExport(ctx, oldTaskID)

	e.mu.Lock()
	if err != nil {
		appErr := apperrors.Normalize(err, "EXPORT_RETRY_FAILED", "failed to retry export")
		e.snap.Detail = appErr.Message
		e.snap.LastError = &appErr
		snap := e.snap
		e.mu.Unlock()
		return snap, appErr
	}
	e.generation++
	gen := e.generation
	e.snap = domain.Snapshot{TaskID: newTaskID, ProjectID: projectID, Status: domain.StatusQueued}
	snap := e.snap
	e.mu.Unlock()

	go e.pollLoop(gen, newTaskID)
	return snap, nil
}

// ApplyUpdate merges a pushed progress event under the same admission rule
// as poll responses.
func (e *Engine) ApplyUpdate(update domain.Update) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocked(update)
}

func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

func (e *Engine) pollLoop(gen uint64, taskID string) {
	for i := 0; i < e.maxPolls; i++ {
		e.sleeper.Sleep(e.pollInterval)
		if e.stale(gen) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		update, err := e.backend.TaskStatus(ctx, taskID)
		cancel()
		if err != nil {
			e.logger.Debug("status fetch failed", "task", taskID, "error", err)
			continue
		}

		e.mu.Lock()
		if gen != e.generation {
			e.mu.Unlock()
			return
		}
		e.applyLocked(update)
		terminal := e.snap.Status.Terminal()
		e.mu.Unlock()
		if terminal {
			return
		}
	}
	e.logger.Warn("poll ceiling reached, task may still be running", "task", taskID)
}

func (e *Engine) stale(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen != e.generation
}

func (e *Engine) applyLocked(update domain.Update) {
	if update.TaskID == "" || update.TaskID != e.snap.TaskID {
		return
	}
	e.snap.Status = update.Status
	e.snap.Progress = mergedProgress(e.snap.Progress, update)
	if update.Retries > e.snap.Retries {
		e.snap.Retries = update.Retries
	}
	if update.Detail != "" {
		e.snap.Detail = update.Detail
	}
	if update.OutputPath != "" {
		e.snap.OutputPath = update.OutputPath
	}
	if update.Status == domain.StatusFailed {
		appErr := apperrors.Normalize(update.ErrorJSON, "EXPORT_FAILED", "export failed")
		e.snap.Detail = appErr.Message
		e.snap.LastError = &appErr
	}
}

// mergedProgress applies the phase floor and forbids regression within one
// task's lifetime.
func mergedProgress(current int, update domain.Update) int {
	progress := update.Progress
	if floor := update.Status.Floor(); progress < floor {
		progress = floor
	}
	if progress < current {
		progress = current
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}
