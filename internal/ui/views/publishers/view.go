package publishers

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	pubdto "recstudio/internal/modules/publish/dto"
	"recstudio/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type PublishPort interface {
	List(ctx context.Context) ([]pubdto.PublisherInfo, error)
	ListTargets(ctx context.Context, publisherName string) ([]pubdto.TargetInfo, error)
	Publish(ctx context.Context, input pubdto.PublishInput) (pubdto.PublishOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type PublishersLoadedMsg struct {
	Publishers []pubdto.PublisherInfo
	Err        error
}

type TargetsLoadedMsg struct {
	Publisher string
	Targets   []pubdto.TargetInfo
	Err       error
}

// PublishedMsg bubbles to the app model for status reporting.
type PublishedMsg struct {
	Output pubdto.PublishOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type publisherItem struct {
	info pubdto.PublisherInfo
}

func (i publisherItem) Title() string { return i.info.Name }

func (i publisherItem) Description() string {
	state := "disabled"
	if i.info.Enabled {
		state = "enabled"
	}
	return i.info.Version + "  " + state
}

func (i publisherItem) FilterValue() string { return i.info.Name }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    PublishPort
	list    list.Model
	targets []pubdto.TargetInfo
	last    pubdto.PublishOutput
	preview viewport.Model
	width   int
	height  int
}

func New(port PublishPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Publishers"
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
	return m.refreshCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case PublishersLoadedMsg:
		if msg.Err != nil {
			m.list.Title = "Publishers — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Publishers))
		for i, p := range msg.Publishers {
			items[i] = publisherItem{info: p}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Publishers) > 0 {
			cmds = append(cmds, m.loadTargetsCmd(msg.Publishers[0].Name))
		}

	case TargetsLoadedMsg:
		if msg.Err == nil {
			m.targets = msg.Targets
		} else {
			m.targets = nil
		}
		m.preview.SetContent(m.renderDetail())

	case PublishedMsg:
		if msg.Err == nil {
			m.last = msg.Output
		}
		m.preview.SetContent(m.renderDetail())
	}

	var lCmd tea.Cmd
	prevIdx := m.list.Index()
	m.list, lCmd = m.list.Update(msg)
	cmds = append(cmds, lCmd)
	if m.list.Index() != prevIdx {
		if item, ok := m.list.SelectedItem().(publisherItem); ok {
			cmds = append(cmds, m.loadTargetsCmd(item.info.Name))
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

func (m Model) SelectedPublisher() (string, bool) {
	if item, ok := m.list.SelectedItem().(publisherItem); ok {
		return item.info.Name, true
	}
	return "", false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) PublishCmd(input pubdto.PublishInput) tea.Cmd {
	return func() tea.Msg {
		output, err := m.port.Publish(context.Background(), input)
		return PublishedMsg{Output: output, Err: err}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		publishers, err := m.port.List(context.Background())
		return PublishersLoadedMsg{Publishers: publishers, Err: err}
	}
}

func (m Model) loadTargetsCmd(name string) tea.Cmd {
	return func() tea.Msg {
		targets, err := m.port.ListTargets(context.Background(), name)
		return TargetsLoadedMsg{Publisher: name, Targets: targets, Err: err}
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
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Targets") + "\n\n")
	if len(m.targets) == 0 {
		sb.WriteString(theme.Muted.Render("no targets (publisher unreachable?)") + "\n")
	}
	for _, target := range m.targets {
		sb.WriteString(theme.Hot.Render(target.ID) + "  " + target.Title + "\n")
		if target.Description != "" {
			sb.WriteString("  " + theme.Muted.Render(target.Description) + "\n")
		}
	}
	if m.last.URL != "" {
		sb.WriteString("\n" + theme.Title.Render("Last publish") + "\n")
		sb.WriteString(theme.Muted.Render("url:    ") + m.last.URL + "\n")
		if m.last.Detail != "" {
			sb.WriteString(theme.Muted.Render("detail: ") + m.last.Detail + "\n")
		}
		sb.WriteString(theme.Muted.Render("exit:   ") + strconv.Itoa(m.last.ExitCode) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("publish via palette: publish:run <target> [json]"))
	return sb.String()
}
