package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	projdto "recstudio/internal/modules/project/dto"
	"recstudio/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type ProjectsPort interface {
	List(ctx context.Context) ([]projdto.ProjectListItem, error)
	Load(ctx context.Context, projectID string) (projdto.ProjectOutput, error)
	Rename(ctx context.Context, projectID, title string) error
	Delete(ctx context.Context, projectID string) error
	Recover(ctx context.Context) ([]projdto.RecoverableOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ListLoadedMsg struct {
	Projects []projdto.ProjectListItem
	Err      error
}

type DetailLoadedMsg struct {
	Project projdto.ProjectOutput
	Err     error
}

type MutatedMsg struct {
	Action string
	Err    error
}

type RecoveredMsg struct {
	Projects []projdto.RecoverableOutput
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type projectItem struct {
	project projdto.ProjectListItem
}

func (i projectItem) Title() string { return i.project.Title }

func (i projectItem) Description() string {
	desc := fmt.Sprintf("%s  %s", i.project.Status, formatDuration(i.project.DurationMS))
	if i.project.HasExport {
		desc += "  exported"
	}
	return desc
}

func (i projectItem) FilterValue() string { return i.project.Title }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    ProjectsPort
	list    list.Model
	detail  projdto.ProjectOutput
	preview viewport.Model
	width   int
	height  int
}

func New(port ProjectsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Projects"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	return Model{port: port, list: l, preview: vp}
}

func (m Model) Init() tea.Cmd {
	return m.RefreshCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case ListLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Projects — " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Projects"
		items := make([]list.Item, len(msg.Projects))
		for i, p := range msg.Projects {
			items[i] = projectItem{project: p}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Projects) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Projects[0].ProjectID))
		} else {
			m.detail = projdto.ProjectOutput{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Project
			m.preview.SetContent(m.renderDetail())
		}

	case MutatedMsg:
		cmds = append(cmds, m.RefreshCmd())
	}

	var lCmd tea.Cmd
	prevIdx := m.list.Index()
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prevIdx {
		if item, ok := m.list.SelectedItem().(projectItem); ok {
			cmds = append(cmds, m.loadDetailCmd(item.project.ProjectID))
		}
	}

	var vCmd tea.Cmd
	m.preview, vCmd = m.preview.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) SelectedProjectID() (string, bool) {
	if item, ok := m.list.SelectedItem().(projectItem); ok {
		return item.project.ProjectID, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) RefreshCmd() tea.Cmd {
	return func() tea.Msg {
		projects, err := m.port.List(context.Background())
		return ListLoadedMsg{Projects: projects, Err: err}
	}
}

func (m Model) RenameCmd(projectID, title string) tea.Cmd {
	return func() tea.Msg {
		return MutatedMsg{Action: "rename", Err: m.port.Rename(context.Background(), projectID, title)}
	}
}

func (m Model) DeleteCmd(projectID string) tea.Cmd {
	return func() tea.Msg {
		return MutatedMsg{Action: "delete", Err: m.port.Delete(context.Background(), projectID)}
	}
}

func (m Model) RecoverCmd() tea.Cmd {
	return func() tea.Msg {
		projects, err := m.port.Recover(context.Background())
		return RecoveredMsg{Projects: projects, Err: err}
	}
}

func (m Model) loadDetailCmd(projectID string) tea.Cmd {
	return func() tea.Msg {
		project, err := m.port.Load(context.Background(), projectID)
		return DetailLoadedMsg{Project: project, Err: err}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.ProjectID == "" {
		return theme.Muted.Render("Record something to create a project")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(d.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + d.ProjectID + "\n")
	sb.WriteString(theme.Muted.Render("status:   ") + d.Status + "\n")
	sb.WriteString(theme.Muted.Render("created:  ") + d.CreatedAt.Format(time.RFC3339) + "\n")
	sb.WriteString(theme.Muted.Render("trim:     ") +
		fmt.Sprintf("%s → %s", formatDuration(d.Timeline.TrimStartMS), formatDuration(d.Timeline.TrimEndMS)) + "\n")
	sb.WriteString(theme.Muted.Render("aspect:   ") + d.Timeline.AspectRatio + "\n")
	sb.WriteString(theme.Muted.Render("motion:   ") + motionLabel(d.CameraMotion) + "\n")
	if d.RawRecordingPath != "" {
		sb.WriteString(theme.Muted.Render("raw:      ") + d.RawRecordingPath + "\n")
	}
	if d.LastExportPath != "" {
		sb.WriteString(theme.Muted.Render("export:   ") + d.LastExportPath + "\n")
	}
	if d.ErrorMessage != "" {
		sb.WriteString(theme.Hot.Render("error:    ") + d.ErrorMessage + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("e: export  d: delete  /: filter"))
	return sb.String()
}

func motionLabel(motion projdto.CameraMotionOutput) string {
	if !motion.Enabled {
		return "off"
	}
	return fmt.Sprintf("%s (zoom ≤ %.2f)", motion.Intensity, motion.MaxZoom)
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
