package service

import (
	"context"
	"sync"

	"recstudio/internal/modules/recording/domain"
	recordingout "recstudio/internal/modules/recording/port/out"
	apperrors "recstudio/internal/platform/errors"
)

// Controller owns the lifecycle of a single recording session. It merges its
// own command results with the push notification stream; both write the same
// snapshot fields and the last writer wins, except that a notification for a
// session the controller already ended locally is dropped rather than
// resurrecting cleared state.
type Controller struct {
	backend recordingout.Backend

	mu          sync.Mutex
	snap        domain.Snapshot
	lastCleared string
}

func NewController(backend recordingout.Backend) *Controller {
	return &Controller{backend: backend, snap: domain.Snapshot{Status: domain.StatusIdle}}
}

func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

func (c *Controller) Start(ctx context.Context, profile domain.Profile) (domain.Snapshot, error) {
	sessionID, err := c.backend.StartRecording(ctx, profile)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		appErr := apperrors.Normalize(err, "RECORDING_START_FAILED", "failed to start recording")
		c.snap = domain.Snapshot{
			Status:    domain.StatusError,
			Detail:    appErr.Message,
			LastError: &appErr,
		}
		return c.copyLocked(), appErr
	}
	c.snap = domain.Snapshot{
		SessionID:   sessionID,
		Status:      domain.StatusRecording,
		DurationMS:  0,
		SourceLabel: profile.CaptureMode.SourceLabel(),
		Detail:      "recording started",
	}
	return c.copyLocked(), nil
}

func (c *Controller) Pause(ctx context.Context) (domain.Snapshot, error) {
	sessionID, ok := c.activeSession()
	if !ok {
		return c.failUsage()
	}
	if err := c.backend.PauseRecording(ctx, sessionID); err != nil {
		return c.failCommand(sessionID, err, "RECORDING_PAUSE_FAILED", "failed to pause recording")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Status = domain.StatusPaused
	c.snap.Detail = "recording paused"
	return c.copyLocked(), nil
}

func (c *Controller) Resume(ctx context.Context) (domain.Snapshot, error) {
	sessionID, ok := c.activeSession()
	if !ok {
		return c.failUsage()
	}
	if err := c.backend.ResumeRecording(ctx, sessionID); err != nil {
		return c.failCommand(sessionID, err, "RECORDING_RESUME_FAILED", "failed to resume recording")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Status = domain.StatusRecording
	c.snap.Detail = "recording resumed"
	return c.copyLocked(), nil
}

func (c *Controller) Stop(ctx context.Context) (domain.Snapshot, error) {
	sessionID, ok := c.activeSession()
	if !ok {
		return c.failUsage()
	}
	projectID, err := c.backend.StopRecording(ctx, sessionID)
	if err != nil {
		return c.failCommand(sessionID, err, "RECORDING_STOP_FAILED", "failed to stop recording")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCleared = sessionID
	c.snap.SessionID = ""
	c.snap.ProjectID = projectID
	c.snap.Status = domain.StatusStopped
	c.snap.Detail = "recording stopped"
	return c.copyLocked(), nil
}

// ApplyEvent merges a push notification authoritatively. The stream always
// describes the backend's current session, so no sequencing guard is needed
// against command results; the only admission rule is that a notification
// for the session we last cleared must not resurrect it.
func (c *Controller) ApplyEvent(event domain.StatusEvent) domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap.SessionID == "" && event.SessionID != "" && event.SessionID == c.lastCleared {
		return c.copyLocked()
	}

	c.snap.Status = event.Status
	c.snap.DurationMS = event.DurationMS
	c.snap.SourceLabel = event.SourceLabel
	c.snap.Detail = event.Detail
	c.snap.DegradeMessage = event.DegradeMessage
	if event.Status.Terminal() {
		if event.SessionID != "" {
			c.lastCleared = event.SessionID
		}
		c.snap.SessionID = ""
		if event.Status == domain.StatusError {
			appErr := apperrors.New("RECORDING_FAILED", event.Detail)
			c.snap.LastError = &appErr
		}
	} else {
		c.snap.SessionID = event.SessionID
	}
	return c.copyLocked()
}

func (c *Controller) activeSession() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.SessionID, c.snap.SessionID != ""
}

// failUsage handles commands issued without an active session: no backend
// round trip is made.
func (c *Controller) failUsage() (domain.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	appErr := apperrors.WithSuggestion("SESSION_NOT_FOUND", "no active recording session", "start a recording first")
	c.snap.Status = domain.StatusError
	c.snap.Detail = appErr.Message
	c.snap.LastError = &appErr
	return c.copyLocked(), apperrors.ErrSessionNotFound
}

// failCommand handles a backend rejection of pause/resume/stop: the session
// is considered lost and must be restarted.
func (c *Controller) failCommand(sessionID string, err error, fallbackCode, fallbackMessage string) (domain.Snapshot, error) {
	appErr := apperrors.Normalize(err, fallbackCode, fallbackMessage)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCleared = sessionID
	c.snap.SessionID = ""
	c.snap.Status = domain.StatusError
	c.snap.Detail = appErr.Message
	c.snap.LastError = &appErr
	return c.copyLocked(), appErr
}

func (c *Controller) copyLocked() domain.Snapshot {
	snap := c.snap
	if snap.LastError != nil {
		lastError := *snap.LastError
		snap.LastError = &lastError
	}
	return snap
}
