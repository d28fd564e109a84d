package service_test

import (
	"context"
	"errors"
	"testing"

	"recstudio/internal/modules/recording/domain"
	"recstudio/internal/modules/recording/service"
	apperrors "recstudio/internal/platform/errors"
)

type fakeBackend struct {
	sessionID string
	projectID string
	startErr  error
	pauseErr  error
	resumeErr error
	stopErr   error

	startCalls  int
	pauseCalls  int
	resumeCalls int
	stopCalls   int
}

func (f *fakeBackend) StartRecording(context.Context, domain.Profile) (string, error) {
	f.startCalls++
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.sessionID, nil
}

func (f *fakeBackend) PauseRecording(context.Context, string) error {
	f.pauseCalls++
	return f.pauseErr
}

func (f *fakeBackend) ResumeRecording(context.Context, string) error {
	f.resumeCalls++
	return f.resumeErr
}

func (f *fakeBackend) StopRecording(context.Context, string) (string, error) {
	f.stopCalls++
	if f.stopErr != nil {
		return "", f.stopErr
	}
	return f.projectID, nil
}

func defaultProfile() domain.Profile {
	return domain.Profile{CaptureMode: domain.CaptureFullscreen, FrameRate: 30, Resolution: "1080p"}
}

func TestStartAdoptsSessionAndResetsState(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{sessionID: "sess-1"}
	ctl := service.NewController(backend)

	snap, err := ctl.Start(context.Background(), defaultProfile())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Status != domain.StatusRecording || snap.SessionID != "sess-1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.DurationMS != 0 || snap.LastError != nil || snap.DegradeMessage != "" {
		t.Fatalf("start must reset duration and error state: %+v", snap)
	}
	if snap.SourceLabel != "fullscreen" {
		t.Fatalf("unexpected source label: %q", snap.SourceLabel)
	}
}

func TestStartFailureNormalizesError(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{startErr: errors.New(`{"code":"PLATFORM_NOT_SUPPORTED","message":"screen capture unavailable"}`)}
	ctl := service.NewController(backend)

	snap, err := ctl.Start(context.Background(), defaultProfile())
	if err == nil {
		t.Fatal("expected error")
	}
	if snap.Status != domain.StatusError || snap.SessionID != "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.LastError == nil || snap.LastError.Code != "PLATFORM_NOT_SUPPORTED" {
		t.Fatalf("error not normalized: %+v", snap.LastError)
	}
}

func TestLifecycleCommandsRequireActiveSession(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	ctl := service.NewController(backend)

	for _, call := range []func(context.Context) (domain.Snapshot, error){ctl.Pause, ctl.Resume, ctl.Stop} {
		snap, err := call(context.Background())
		if !errors.Is(err, apperrors.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
		if snap.Status != domain.StatusError {
			t.Fatalf("usage error must force error status: %+v", snap)
		}
		if snap.LastError == nil || snap.LastError.Code != "SESSION_NOT_FOUND" {
			t.Fatalf("expected SESSION_NOT_FOUND, got %+v", snap.LastError)
		}
	}
	if backend.pauseCalls+backend.resumeCalls+backend.stopCalls != 0 {
		t.Fatal("no backend command may be issued without a session")
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{sessionID: "sess-1"}
	ctl := service.NewController(backend)

	if _, err := ctl.Start(context.Background(), defaultProfile()); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, err := ctl.Pause(context.Background())
	if err != nil || snap.Status != domain.StatusPaused {
		t.Fatalf("pause: %v %+v", err, snap)
	}
	snap, err = ctl.Resume(context.Background())
	if err != nil || snap.Status != domain.StatusRecording {
		t.Fatalf("resume: %v %+v", err, snap)
	}
	if snap.SessionID != "sess-1" {
		t.Fatalf("session identity must survive pause/resume: %+v", snap)
	}
}

func TestCommandFailureLosesSession(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{sessionID: "sess-1", pauseErr: errors.New("ffmpeg stdin closed")}
	ctl := service.NewController(backend)

	if _, err := ctl.Start(context.Background(), defaultProfile()); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, err := ctl.Pause(context.Background())
	if err == nil {
		t.Fatal("expected pause failure")
	}
	if snap.Status != domain.StatusError || snap.SessionID != "" {
		t.Fatalf("failed command must clear the session: %+v", snap)
	}

	// Follow-up lifecycle commands are now usage errors.
	if _, err := ctl.Resume(context.Background()); !errors.Is(err, apperrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if backend.resumeCalls != 0 {
		t.Fatal("resume must not reach the backend after session loss")
	}
}

func TestEventOverwritesObservableState(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{sessionID: "sess-1", projectID: "p1"}
	ctl := service.NewController(backend)

	if _, err := ctl.Start(context.Background(), defaultProfile()); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := ctl.ApplyEvent(domain.StatusEvent{
		SessionID:      "sess-1",
		Status:         domain.StatusRecording,
		DurationMS:     5000,
		SourceLabel:    "fullscreen",
		Detail:         "recording in progress",
		DegradeMessage: "system audio disabled",
	})
	if snap.Status != domain.StatusRecording || snap.DurationMS != 5000 {
		t.Fatalf("event not applied: %+v", snap)
	}
	if snap.DegradeMessage != "system audio disabled" {
		t.Fatalf("degrade message not applied: %+v", snap)
	}

	snap, err := ctl.Stop(context.Background())
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if snap.Status != domain.StatusStopped || snap.SessionID != "" || snap.ProjectID != "p1" {
		t.Fatalf("unexpected post-stop snapshot: %+v", snap)
	}
}

func TestTerminalEventClearsSession(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{sessionID: "sess-1"}
	ctl := service.NewController(backend)

	if _, err := ctl.Start(context.Background(), defaultProfile()); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := ctl.ApplyEvent(domain.StatusEvent{
		SessionID: "sess-1",
		Status:    domain.StatusError,
		Detail:    "recording process exited unexpectedly",
	})
	if snap.SessionID != "" || snap.Status != domain.StatusError {
		t.Fatalf("terminal event must clear session: %+v", snap)
	}
	if snap.LastError == nil || snap.LastError.Code != "RECORDING_FAILED" {
		t.Fatalf("terminal error must surface: %+v", snap.LastError)
	}
}

func TestStaleEventCannotResurrectEndedSession(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{sessionID: "sess-1", projectID: "p1"}
	ctl := service.NewController(backend)

	if _, err := ctl.Start(context.Background(), defaultProfile()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := ctl.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	snap := ctl.ApplyEvent(domain.StatusEvent{SessionID: "sess-1", Status: domain.StatusRecording, DurationMS: 9000})
	if snap.Status != domain.StatusStopped || snap.SessionID != "" {
		t.Fatalf("stale event resurrected ended session: %+v", snap)
	}

	// A session the controller never knew about (daemon-initiated via
	// hotkey or recovery) is adopted.
	snap = ctl.ApplyEvent(domain.StatusEvent{SessionID: "sess-2", Status: domain.StatusRecording, DurationMS: 100})
	if snap.SessionID != "sess-2" || snap.Status != domain.StatusRecording {
		t.Fatalf("unknown session event must be adopted: %+v", snap)
	}
}
