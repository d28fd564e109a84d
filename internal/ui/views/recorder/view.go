package recorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	recdto "recstudio/internal/modules/recording/dto"
	studiodto "recstudio/internal/modules/studio/dto"
	"recstudio/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type RecordingPort interface {
	Start(ctx context.Context, input recdto.StartInput) (recdto.SessionOutput, error)
	Pause(ctx context.Context) (recdto.SessionOutput, error)
	Resume(ctx context.Context) (recdto.SessionOutput, error)
	Stop(ctx context.Context) (recdto.SessionOutput, error)
	Current(ctx context.Context) (recdto.SessionOutput, error)
}

type HostPort interface {
	Capability(ctx context.Context) (studiodto.CapabilityOutput, error)
	Devices(ctx context.Context) ([]studiodto.DeviceOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SessionMsg struct {
	Session recdto.SessionOutput
	Err     error
}

// StoppedMsg bubbles to the app model so it can jump to the Projects tab.
type StoppedMsg struct {
	Session recdto.SessionOutput
	Err     error
}

type hostLoadedMsg struct {
	capability studiodto.CapabilityOutput
	devices    []studiodto.DeviceOutput
	err        error
}

type pollMsg struct{}

const pollInterval = 500 * time.Millisecond

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	recording  RecordingPort
	host       HostPort
	session    recdto.SessionOutput
	capability studiodto.CapabilityOutput
	devices    []studiodto.DeviceOutput
	hostErr    string
	spinner    spinner.Model
	width      int
	height     int
}

func New(recording RecordingPort, host HostPort) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Peach)
	return Model{recording: recording, host: host, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadHostCmd(), m.pollCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case hostLoadedMsg:
		if msg.err != nil {
			m.hostErr = msg.err.Error()
		} else {
			m.capability = msg.capability
			m.devices = msg.devices
		}

	case SessionMsg:
		if msg.Err == nil {
			m.session = msg.Session
		}

	case StoppedMsg:
		if msg.Err == nil {
			m.session = msg.Session
		}

	case pollMsg:
		return m, tea.Batch(m.refreshCmd(), m.pollCmd())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	left := lipgloss.NewStyle().
		Width(m.width/2 - 2).
		Height(m.height - 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Padding(1).
		Render(m.renderSession())

	right := lipgloss.NewStyle().
		Width(m.width - m.width/2 - 2).
		Height(m.height - 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Padding(1).
		Render(m.renderHost())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// Recording reports whether a session is live, so the app model can pick
// pause/resume/stop bindings.
func (m Model) Recording() bool {
	return m.session.Status == "recording" || m.session.Status == "paused"
}

func (m Model) Paused() bool {
	return m.session.Status == "paused"
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) StartCmd(input recdto.StartInput) tea.Cmd {
	return func() tea.Msg {
		session, err := m.recording.Start(context.Background(), input)
		return SessionMsg{Session: session, Err: err}
	}
}

func (m Model) PauseCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.recording.Pause(context.Background())
		return SessionMsg{Session: session, Err: err}
	}
}

func (m Model) ResumeCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.recording.Resume(context.Background())
		return SessionMsg{Session: session, Err: err}
	}
}

func (m Model) StopCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.recording.Stop(context.Background())
		return StoppedMsg{Session: session, Err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		session, err := m.recording.Current(context.Background())
		return SessionMsg{Session: session, Err: err}
	}
}

func (m Model) pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m Model) loadHostCmd() tea.Cmd {
	return func() tea.Msg {
		capability, err := m.host.Capability(context.Background())
		if err != nil {
			return hostLoadedMsg{err: err}
		}
		devices, err := m.host.Devices(context.Background())
		return hostLoadedMsg{capability: capability, devices: devices, err: err}
	}
}

// ─── rendering ───────────────────────────────────────────────────────────────

func (m Model) renderSession() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Recorder") + "\n\n")

	switch m.session.Status {
	case "recording":
		sb.WriteString(m.spinner.View() + " " + theme.Hot.Render("REC") + "  " + formatDuration(m.session.DurationMS) + "\n")
	case "paused":
		sb.WriteString(theme.Muted.Render("paused") + "  " + formatDuration(m.session.DurationMS) + "\n")
	default:
		sb.WriteString(theme.Muted.Render("no active session") + "\n")
	}
	if m.session.SourceLabel != "" {
		sb.WriteString(theme.Muted.Render("source: ") + m.session.SourceLabel + "\n")
	}
	if m.session.DegradeMessage != "" {
		sb.WriteString(theme.Hot.Render("! ") + m.session.DegradeMessage + "\n")
	}
	if m.session.ErrorMessage != "" {
		sb.WriteString(theme.Hot.Render("error: ") + m.session.ErrorMessage + "\n")
		if m.session.Suggestion != "" {
			sb.WriteString(theme.Muted.Render(m.session.Suggestion) + "\n")
		}
	}

	sb.WriteString("\n" + theme.Muted.Render("r: start  space: pause/resume  x: stop"))
	return sb.String()
}

func (m Model) renderHost() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Capture host") + "\n\n")
	if m.hostErr != "" {
		sb.WriteString(theme.Hot.Render("unavailable: ") + m.hostErr)
		return sb.String()
	}

	sb.WriteString(theme.Muted.Render("platform: ") + m.capability.Platform + "\n")
	sb.WriteString(checkmark("screen capture", m.capability.SupportsScreenCapture))
	sb.WriteString(checkmark("window capture", m.capability.SupportsWindowCapture))
	sb.WriteString(checkmark("microphone", m.capability.SupportsMicrophone))
	sb.WriteString(checkmark("system audio", m.capability.SupportsSystemAudio))
	if m.capability.DegradeMessage != "" {
		sb.WriteString(theme.Muted.Render(m.capability.DegradeMessage) + "\n")
	}

	if len(m.devices) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Audio devices") + "\n")
		for _, device := range m.devices {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", theme.Muted.Render(device.ID), device.Label))
		}
	}
	return sb.String()
}

func checkmark(label string, ok bool) string {
	if ok {
		return lipgloss.NewStyle().Foreground(theme.Green).Render("✓ ") + label + "\n"
	}
	return theme.Muted.Render("✗ "+label) + "\n"
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
