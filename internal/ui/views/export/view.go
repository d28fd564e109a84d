package export

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	expdto "recstudio/internal/modules/export/dto"
	"recstudio/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ExportPort interface {
	Start(ctx context.Context, input expdto.StartInput) (expdto.TaskOutput, error)
	Retry(ctx context.Context) (expdto.TaskOutput, error)
	Current(ctx context.Context) (expdto.TaskOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type TaskMsg struct {
	Task expdto.TaskOutput
	Err  error
}

type pollMsg struct{}

const pollInterval = 250 * time.Millisecond

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   ExportPort
	task   expdto.TaskOutput
	bar    progress.Model
	err    string
	width  int
	height int
}

func New(port ExportPort) Model {
	bar := progress.New(progress.WithGradient(string(theme.Sapphire), string(theme.Lavender)))
	return Model{port: port, bar: bar}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.pollCmd())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(m.width-12, 64)

	case TaskMsg:
		if msg.Err != nil {
			m.err = msg.Err.Error()
		} else {
			m.err = ""
			m.task = msg.Task
		}

	case pollMsg:
		return m, tea.Batch(m.refreshCmd(), m.pollCmd())

	case progress.FrameMsg:
		model, cmd := m.bar.Update(msg)
		m.bar = model.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Export") + "\n\n")

	switch {
	case m.err != "":
		sb.WriteString(theme.Hot.Render("error: ") + m.err + "\n")
	case m.task.TaskID == "":
		sb.WriteString(theme.Muted.Render("no export yet — press e on a project") + "\n")
	default:
		sb.WriteString(theme.Muted.Render("project: ") + m.task.ProjectID + "\n")
		sb.WriteString(theme.Muted.Render("task:    ") + m.task.TaskID + "\n")
		sb.WriteString(theme.Muted.Render("status:  ") + statusLabel(m.task) + "\n\n")
		sb.WriteString(m.bar.ViewAs(float64(m.task.Progress)/100) + "\n")
		if m.task.Detail != "" {
			sb.WriteString(theme.Muted.Render(m.task.Detail) + "\n")
		}
		if m.task.OutputPath != "" {
			sb.WriteString("\n" + theme.Muted.Render("output: ") + m.task.OutputPath + "\n")
		}
		if m.task.ErrorMessage != "" {
			sb.WriteString("\n" + theme.Hot.Render(m.task.ErrorCode+": ") + m.task.ErrorMessage + "\n")
			if m.task.Suggestion != "" {
				sb.WriteString(theme.Muted.Render(m.task.Suggestion) + "\n")
			}
			sb.WriteString(theme.Muted.Render("R: retry") + "\n")
		}
	}

	return lipgloss.NewStyle().
		Width(m.width - 2).
		Height(m.height - 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Padding(1).
		Render(sb.String())
}

// Active reports whether an export is currently queued or running.
func (m Model) Active() bool {
	switch m.task.Status {
	case "queued", "running", "fallback":
		return true
	}
	return false
}

func (m Model) Failed() bool {
	return m.task.Status == "failed"
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) StartCmd(input expdto.StartInput) tea.Cmd {
	return func() tea.Msg {
		task, err := m.port.Start(context.Background(), input)
		return TaskMsg{Task: task, Err: err}
	}
}

func (m Model) RetryCmd() tea.Cmd {
	return func() tea.Msg {
		task, err := m.port.Retry(context.Background())
		return TaskMsg{Task: task, Err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		task, err := m.port.Current(context.Background())
		if err != nil {
			// No task yet is the idle state, not an error worth surfacing.
			return TaskMsg{Task: m.task}
		}
		return TaskMsg{Task: task}
	}
}

func (m Model) pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

func statusLabel(task expdto.TaskOutput) string {
	if task.Retries > 0 {
		return task.Status + " (retry " + strconv.Itoa(task.Retries) + ")"
	}
	return task.Status
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
