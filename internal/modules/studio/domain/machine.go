package domain

import apperrors "recstudio/internal/platform/errors"

type RecordingState string

const (
	RecordingIdle    RecordingState = "idle"
	RecordingActive  RecordingState = "recording"
	RecordingPaused  RecordingState = "paused"
	RecordingStopped RecordingState = "stopped"
	RecordingErrored RecordingState = "error"
)

type ExportState string

const (
	ExportQueued   ExportState = "queued"
	ExportRunning  ExportState = "running"
	ExportFallback ExportState = "fallback"
	ExportSuccess  ExportState = "success"
	ExportFailed   ExportState = "failed"
)

func (s ExportState) Active() bool {
	return s == ExportQueued || s == ExportRunning || s == ExportFallback
}

// RecordingMachine enforces the session lifecycle. Transition attempts from
// the wrong state are rejected without side effects.
type RecordingMachine struct {
	state RecordingState
}

func NewRecordingMachine() *RecordingMachine {
	return &RecordingMachine{state: RecordingIdle}
}

func (m *RecordingMachine) State() RecordingState {
	return m.state
}

func (m *RecordingMachine) Start() error {
	if m.state != RecordingIdle {
		return apperrors.WithSuggestion("INVALID_RECORDING_STATE", "only idle state can start recording", "wait for the current session to stop first")
	}
	m.state = RecordingActive
	return nil
}

func (m *RecordingMachine) Pause() error {
	if m.state != RecordingActive {
		return apperrors.WithSuggestion("INVALID_RECORDING_STATE", "only recording state can be paused", "check whether recording has started")
	}
	m.state = RecordingPaused
	return nil
}

func (m *RecordingMachine) Resume() error {
	if m.state != RecordingPaused {
		return apperrors.WithSuggestion("INVALID_RECORDING_STATE", "only paused state can resume", "pause recording before resume")
	}
	m.state = RecordingActive
	return nil
}

func (m *RecordingMachine) Stop() error {
	if m.state != RecordingActive && m.state != RecordingPaused {
		return apperrors.WithSuggestion("INVALID_RECORDING_STATE", "only recording or paused state can stop", "start recording before stop")
	}
	m.state = RecordingStopped
	return nil
}

func (m *RecordingMachine) Fail() {
	m.state = RecordingErrored
}

// ExportMachine enforces the render job lifecycle.
type ExportMachine struct {
	state ExportState
}

func NewExportMachine() *ExportMachine {
	return &ExportMachine{state: ExportQueued}
}

func (m *ExportMachine) State() ExportState {
	return m.state
}

func (m *ExportMachine) Start() error {
	if m.state != ExportQueued {
		return apperrors.New("INVALID_EXPORT_STATE", "only queued task can start")
	}
	m.state = ExportRunning
	return nil
}

func (m *ExportMachine) Fallback() error {
	if m.state != ExportRunning {
		return apperrors.New("INVALID_EXPORT_STATE", "fallback only allowed while running")
	}
	m.state = ExportFallback
	return nil
}

func (m *ExportMachine) Succeed() error {
	if m.state != ExportRunning && m.state != ExportFallback {
		return apperrors.New("INVALID_EXPORT_STATE", "success only allowed from running or fallback")
	}
	m.state = ExportSuccess
	return nil
}

func (m *ExportMachine) Fail() error {
	if m.state == ExportSuccess {
		return apperrors.New("INVALID_EXPORT_STATE", "cannot fail a successful task")
	}
	m.state = ExportFailed
	return nil
}
