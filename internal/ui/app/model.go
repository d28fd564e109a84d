package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	expdto "recstudio/internal/modules/export/dto"
	projdto "recstudio/internal/modules/project/dto"
	pubdto "recstudio/internal/modules/publish/dto"
	recdto "recstudio/internal/modules/recording/dto"
	studiodto "recstudio/internal/modules/studio/dto"
	"recstudio/internal/ui/components"
	"recstudio/internal/ui/theme"
	exportview "recstudio/internal/ui/views/export"
	projectsview "recstudio/internal/ui/views/projects"
	publishersview "recstudio/internal/ui/views/publishers"
	recorderview "recstudio/internal/ui/views/recorder"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type recordingPort interface {
	Start(ctx context.Context, input recdto.StartInput) (recdto.SessionOutput, error)
	Pause(ctx context.Context) (recdto.SessionOutput, error)
	Resume(ctx context.Context) (recdto.SessionOutput, error)
	Stop(ctx context.Context) (recdto.SessionOutput, error)
	Current(ctx context.Context) (recdto.SessionOutput, error)
}

type projectPort interface {
	Load(ctx context.Context, projectID string) (projdto.ProjectOutput, error)
	Trim(ctx context.Context, projectID string, startMS, endMS int64) error
	Aspect(ctx context.Context, projectID, ratio string) error
	List(ctx context.Context) ([]projdto.ProjectListItem, error)
	Rename(ctx context.Context, projectID, title string) error
	Delete(ctx context.Context, projectID string) error
	Recover(ctx context.Context) ([]projdto.RecoverableOutput, error)
}

type exportPort interface {
	Start(ctx context.Context, input expdto.StartInput) (expdto.TaskOutput, error)
	Retry(ctx context.Context) (expdto.TaskOutput, error)
	Current(ctx context.Context) (expdto.TaskOutput, error)
}

type publishPort interface {
	List(ctx context.Context) ([]pubdto.PublisherInfo, error)
	ListTargets(ctx context.Context, publisherName string) ([]pubdto.TargetInfo, error)
	Publish(ctx context.Context, input pubdto.PublishInput) (pubdto.PublishOutput, error)
}

type studioPort interface {
	DaemonStatus(ctx context.Context) (studiodto.DaemonStatusOutput, error)
	Devices(ctx context.Context) ([]studiodto.DeviceOutput, error)
	Capability(ctx context.Context) (studiodto.CapabilityOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabRecorder tabID = iota
	tabProjects
	tabExport
	tabPublishers
	tabCount
)

var tabLabels = [tabCount]string{
	"Recorder", "Projects", "Export", "Publishers",
}

// ─── async messages ───────────────────────────────────────────────────────────

type daemonStatusMsg struct {
	status studiodto.DaemonStatusOutput
	err    error
}

type timelinePatchedMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Record  key.Binding
	Toggle  key.Binding
	Stop    key.Binding
	Export  key.Binding
	Retry   key.Binding
	Delete  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Record:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "record")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop recording")),
		Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export project")),
		Retry:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry export")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete project")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.Toggle, k.Stop},
		{k.Export, k.Retry, k.Delete},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay, and the command palette. All business logic is delegated to port
// interfaces; all rendering is delegated to sub-views.
type Model struct {
	recording recordingPort
	project   projectPort
	export    exportPort
	publish   publishPort
	studio    studioPort

	recorderView   recorderview.Model
	projectsView   projectsview.Model
	exportView     exportview.Model
	publishersView publishersview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	recording recordingPort,
	project projectPort,
	export exportPort,
	publish publishPort,
	studio studioPort,
) Model {
	return Model{
		recording:      recording,
		project:        project,
		export:         export,
		publish:        publish,
		studio:         studio,
		recorderView:   recorderview.New(recordingPortBridge{p: recording}, hostPortBridge{p: studio}),
		projectsView:   projectsview.New(projectsPortBridge{p: project}),
		exportView:     exportview.New(exportPortBridge{p: export}),
		publishersView: publishersview.New(publishPortBridge{p: publish}),
		activeTab:      tabRecorder,
		keys:           defaultKeys(),
		help:           help.New(),
		palette:        components.NewPalette(),
		status:         "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.recorderView.Init(),
		m.projectsView.Init(),
		m.exportView.Init(),
		m.publishersView.Init(),
		m.daemonStatusCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case daemonStatusMsg:
		if msg.err != nil {
			m.status = "daemon status: " + msg.err.Error()
		} else if msg.status.Running {
			m.status = fmt.Sprintf("daemon up (pid %d)", msg.status.PID)
		} else {
			m.status = "daemon not running — start it with `recstudio daemon start`"
		}

	case timelinePatchedMsg:
		if msg.err != nil {
			m.status = "timeline: " + msg.err.Error()
		} else {
			m.status = "timeline updated"
			cmds = append(cmds, m.projectsView.RefreshCmd())
		}

	case recorderview.StoppedMsg:
		if msg.Err != nil {
			m.status = "stop failed: " + msg.Err.Error()
		} else {
			m.status = "recording saved: " + msg.Session.ProjectID
			m.activeTab = tabProjects
			cmds = append(cmds, m.projectsView.RefreshCmd())
		}
		var cmd tea.Cmd
		m.recorderView, cmd = m.recorderView.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case projectsview.MutatedMsg:
		if msg.Err != nil {
			m.status = msg.Action + " failed: " + msg.Err.Error()
		} else {
			m.status = msg.Action + " done"
		}

	case projectsview.RecoveredMsg:
		if msg.Err != nil {
			m.status = "recover: " + msg.Err.Error()
		} else {
			m.status = fmt.Sprintf("recovered %d project(s)", len(msg.Projects))
			cmds = append(cmds, m.projectsView.RefreshCmd())
		}

	case exportview.TaskMsg:
		if msg.Err != nil {
			m.status = "export: " + msg.Err.Error()
		} else if msg.Task.TaskID != "" && m.activeTab != tabExport {
			m.activeTab = tabExport
		}

	case publishersview.PublishedMsg:
		if msg.Err != nil {
			m.status = "publish: " + msg.Err.Error()
		} else {
			m.status = "published: " + msg.Output.URL
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "r":
			if m.activeTab == tabRecorder && !m.recorderView.Recording() {
				cmds = append(cmds, m.recorderView.StartCmd(recdto.StartInput{CaptureMode: "fullscreen"}))
			}
		case " ":
			if m.activeTab == tabRecorder && m.recorderView.Recording() {
				if m.recorderView.Paused() {
					cmds = append(cmds, m.recorderView.ResumeCmd())
				} else {
					cmds = append(cmds, m.recorderView.PauseCmd())
				}
			}
		case "x":
			if m.activeTab == tabRecorder && m.recorderView.Recording() {
				cmds = append(cmds, m.recorderView.StopCmd())
			}
		case "e":
			if m.activeTab == tabProjects {
				if id, ok := m.projectsView.SelectedProjectID(); ok {
					cmds = append(cmds, m.exportView.StartCmd(expdto.StartInput{ProjectID: id}))
				}
			}
		case "R":
			if m.activeTab == tabExport && m.exportView.Failed() {
				cmds = append(cmds, m.exportView.RetryCmd())
			}
		case "d":
			if m.activeTab == tabProjects {
				if id, ok := m.projectsView.SelectedProjectID(); ok {
					cmds = append(cmds, m.projectsView.DeleteCmd(id))
				}
			}
		}
	}

	// Propagate the message to the active tab's sub-view. The export view
	// also ticks in the background so progress keeps moving while the user
	// browses projects.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabRecorder:
		m.recorderView, tabCmd = m.recorderView.Update(msg)
	case tabProjects:
		m.projectsView, tabCmd = m.projectsView.Update(msg)
	case tabExport:
		m.exportView, tabCmd = m.exportView.Update(msg)
	case tabPublishers:
		m.publishersView, tabCmd = m.publishersView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	if m.activeTab != tabExport {
		var bg tea.Cmd
		m.exportView, bg = m.exportView.Update(msg)
		cmds = append(cmds, bg)
	}
	if m.activeTab != tabRecorder {
		var bg tea.Cmd
		m.recorderView, bg = m.recorderView.Update(msg)
		cmds = append(cmds, bg)
	}

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabRecorder:
		return m.recorderView.View()
	case tabProjects:
		return m.projectsView.View()
	case tabExport:
		return m.exportView.View()
	case tabPublishers:
		return m.publishersView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "recstudio  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.recorderView.Recording() {
		left = theme.Hot.Render("● REC") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	selected, _ := m.projectsView.SelectedProjectID()

	switch parts[0] {
	case "record:start":
		start := recdto.StartInput{CaptureMode: "fullscreen"}
		if len(parts) >= 2 {
			start.CaptureMode = parts[1]
		}
		if len(parts) >= 3 {
			start.WindowTarget = parts[2]
		}
		m.activeTab = tabRecorder
		return m, m.recorderView.StartCmd(start)

	case "record:pause":
		m.activeTab = tabRecorder
		return m, m.recorderView.PauseCmd()

	case "record:resume":
		m.activeTab = tabRecorder
		return m, m.recorderView.ResumeCmd()

	case "record:stop":
		m.activeTab = tabRecorder
		return m, m.recorderView.StopCmd()

	case "project:rename":
		if selected == "" || len(parts) < 2 {
			m.status = "usage: project:rename <title>"
			return m, nil
		}
		title := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
		return m, m.projectsView.RenameCmd(selected, title)

	case "project:delete":
		if selected == "" {
			m.status = "no project selected"
			return m, nil
		}
		return m, m.projectsView.DeleteCmd(selected)

	case "project:recover":
		return m, m.projectsView.RecoverCmd()

	case "project:trim":
		if selected == "" || len(parts) < 3 {
			m.status = "usage: project:trim <startMs> <endMs>"
			return m, nil
		}
		start, err1 := strconv.ParseInt(parts[1], 10, 64)
		end, err2 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil {
			m.status = "trim bounds must be milliseconds"
			return m, nil
		}
		return m, m.trimCmd(selected, start, end)

	case "project:aspect":
		if selected == "" || len(parts) < 2 {
			m.status = "usage: project:aspect <16:9|9:16|1:1>"
			return m, nil
		}
		return m, m.aspectCmd(selected, parts[1])

	case "export:start":
		if selected == "" {
			m.status = "no project selected"
			return m, nil
		}
		start := expdto.StartInput{ProjectID: selected}
		if len(parts) >= 2 {
			start.Resolution = parts[1]
		}
		m.activeTab = tabExport
		return m, m.exportView.StartCmd(start)

	case "export:retry":
		m.activeTab = tabExport
		return m, m.exportView.RetryCmd()

	case "publish:run":
		if len(parts) < 2 {
			m.status = "usage: publish:run <target> [json]"
			return m, nil
		}
		publisher, ok := m.publishersView.SelectedPublisher()
		if !ok {
			m.status = "no publisher selected"
			return m, nil
		}
		if selected == "" {
			m.status = "no project selected"
			return m, nil
		}
		inputJSON := strings.TrimSpace(strings.TrimPrefix(input, parts[0]+" "+parts[1]))
		m.activeTab = tabPublishers
		return m, m.publishProjectCmd(publisher, parts[1], selected, inputJSON)

	case "daemon:status":
		return m, m.daemonStatusCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabProjects:
		return m.projectsView.Filtering()
	case tabPublishers:
		return m.publishersView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.recorderView, _ = m.recorderView.Update(sz)
	m.projectsView, _ = m.projectsView.Update(sz)
	m.exportView, _ = m.exportView.Update(sz)
	m.publishersView, _ = m.publishersView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) daemonStatusCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.studio.DaemonStatus(context.Background())
		return daemonStatusMsg{status: status, err: err}
	}
}

func (m Model) trimCmd(projectID string, startMS, endMS int64) tea.Cmd {
	return func() tea.Msg {
		return timelinePatchedMsg{err: m.project.Trim(context.Background(), projectID, startMS, endMS)}
	}
}

func (m Model) aspectCmd(projectID, ratio string) tea.Cmd {
	return func() tea.Msg {
		return timelinePatchedMsg{err: m.project.Aspect(context.Background(), projectID, ratio)}
	}
}

func (m Model) publishProjectCmd(publisher, targetID, projectID, inputJSON string) tea.Cmd {
	return func() tea.Msg {
		project, err := m.project.Load(context.Background(), projectID)
		if err != nil {
			return publishersview.PublishedMsg{Err: err}
		}
		if project.LastExportPath == "" {
			return publishersview.PublishedMsg{Err: fmt.Errorf("project has no finished export")}
		}
		output, err := m.publish.Publish(context.Background(), pubdto.PublishInput{
			PublisherName: publisher,
			TargetID:      targetID,
			InputJSON:     inputJSON,
			ProjectID:     projectID,
			Title:         project.Title,
			ExportPath:    project.LastExportPath,
		})
		return publishersview.PublishedMsg{Output: output, Err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type recordingPortBridge struct{ p recordingPort }

func (b recordingPortBridge) Start(ctx context.Context, input recdto.StartInput) (recdto.SessionOutput, error) {
	return b.p.Start(ctx, input)
}
func (b recordingPortBridge) Pause(ctx context.Context) (recdto.SessionOutput, error) {
	return b.p.Pause(ctx)
}
func (b recordingPortBridge) Resume(ctx context.Context) (recdto.SessionOutput, error) {
	return b.p.Resume(ctx)
}
func (b recordingPortBridge) Stop(ctx context.Context) (recdto.SessionOutput, error) {
	return b.p.Stop(ctx)
}
func (b recordingPortBridge) Current(ctx context.Context) (recdto.SessionOutput, error) {
	return b.p.Current(ctx)
}

type hostPortBridge struct{ p studioPort }

func (b hostPortBridge) Capability(ctx context.Context) (studiodto.CapabilityOutput, error) {
	return b.p.Capability(ctx)
}
func (b hostPortBridge) Devices(ctx context.Context) ([]studiodto.DeviceOutput, error) {
	return b.p.Devices(ctx)
}

type projectsPortBridge struct{ p projectPort }

func (b projectsPortBridge) List(ctx context.Context) ([]projdto.ProjectListItem, error) {
	return b.p.List(ctx)
}
func (b projectsPortBridge) Load(ctx context.Context, projectID string) (projdto.ProjectOutput, error) {
	return b.p.Load(ctx, projectID)
}
func (b projectsPortBridge) Rename(ctx context.Context, projectID, title string) error {
	return b.p.Rename(ctx, projectID, title)
}
func (b projectsPortBridge) Delete(ctx context.Context, projectID string) error {
	return b.p.Delete(ctx, projectID)
}
func (b projectsPortBridge) Recover(ctx context.Context) ([]projdto.RecoverableOutput, error) {
	return b.p.Recover(ctx)
}

type exportPortBridge struct{ p exportPort }

func (b exportPortBridge) Start(ctx context.Context, input expdto.StartInput) (expdto.TaskOutput, error) {
	return b.p.Start(ctx, input)
}
func (b exportPortBridge) Retry(ctx context.Context) (expdto.TaskOutput, error) {
	return b.p.Retry(ctx)
}
func (b exportPortBridge) Current(ctx context.Context) (expdto.TaskOutput, error) {
	return b.p.Current(ctx)
}

type publishPortBridge struct{ p publishPort }

func (b publishPortBridge) List(ctx context.Context) ([]pubdto.PublisherInfo, error) {
	return b.p.List(ctx)
}
func (b publishPortBridge) ListTargets(ctx context.Context, name string) ([]pubdto.TargetInfo, error) {
	return b.p.ListTargets(ctx, name)
}
func (b publishPortBridge) Publish(ctx context.Context, input pubdto.PublishInput) (pubdto.PublishOutput, error) {
	return b.p.Publish(ctx, input)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
