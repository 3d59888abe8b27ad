package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "nadi/internal/modules/session/dto"
	apperrors "nadi/internal/platform/errors"
	"nadi/internal/ui/theme"
	breathview "nadi/internal/ui/views/breath"
	historyview "nadi/internal/ui/views/history"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// The minimal session surface this orchestration layer needs. The session
// usecase satisfies it directly.

type sessionPort interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StateOutput, error)
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	Stop(ctx context.Context) (sessiondto.SummaryOutput, error)
	Acknowledge(ctx context.Context)
	Snapshot(ctx context.Context) sessiondto.StateOutput
	History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error)
	GetRecord(ctx context.Context, id string) (sessiondto.RecordOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabPractice tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Practice", "History"}

// ─── async messages ───────────────────────────────────────────────────────────

type sessionStartedMsg struct {
	state sessiondto.StateOutput
	err   error
}

type sessionStoppedMsg struct {
	summary sessiondto.SummaryOutput
	err     error
}

type snapshotMsg struct {
	state sessiondto.StateOutput
}

type eventsClosedMsg struct{}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab    key.Binding
	Help   key.Binding
	Quit   key.Binding
	Start  key.Binding
	Toggle key.Binding
	Stop   key.Binding
	Ack    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch tab")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start session")),
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		Stop:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop session")),
		Ack:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "dismiss summary")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Toggle, k.Stop, k.Tab, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Toggle, k.Stop, k.Ack},
		{k.Tab, k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing and the session
// key bindings; live session updates arrive on the event channel and are
// forwarded to the practice view.
type Model struct {
	session sessionPort
	events  <-chan breathview.SessionEvent

	practiceView breathview.Model
	historyView  historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	status    string
	state     sessiondto.StateOutput
	width     int
	height    int
}

func NewModel(session sessionPort, events <-chan breathview.SessionEvent) Model {
	return Model{
		session:      session,
		events:       events,
		practiceView: breathview.New(),
		historyView:  historyview.New(session),
		activeTab:    tabPractice,
		keys:         defaultKeys(),
		help:         help.New(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.historyView.Init(),
		m.snapshotCmd(),
		m.waitForEvent(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.width
		m.propagateSize()

	case breathview.EventMsg:
		cmds = append(cmds, m.waitForEvent())
		var cmd tea.Cmd
		m.practiceView, cmd = m.practiceView.Update(msg)
		cmds = append(cmds, cmd)
		if msg.Event.Kind == "session_completed" {
			m.state.Status = "completed"
			m.status = "session finished"
			cmds = append(cmds, m.historyView.Reload())
		}
		return m, tea.Batch(cmds...)

	case eventsClosedMsg:
		return m, nil

	case sessionStartedMsg:
		if msg.err != nil {
			if msg.err == apperrors.ErrSessionActive {
				m.status = "a session is already active"
			} else {
				m.status = "start failed: " + msg.err.Error()
			}
		} else {
			m.state = msg.state
			m.status = "session running"
			m.activeTab = tabPractice
			var cmd tea.Cmd
			m.practiceView, cmd = m.practiceView.Update(breathview.SnapshotMsg{State: msg.state})
			cmds = append(cmds, cmd)
		}

	case sessionStoppedMsg:
		if msg.err != nil {
			if msg.err != apperrors.ErrNoActiveSession {
				m.status = "stop failed: " + msg.err.Error()
			}
		} else {
			m.status = "session stopped"
			cmds = append(cmds, m.historyView.Reload())
		}
		cmds = append(cmds, m.snapshotCmd())

	case snapshotMsg:
		m.state = msg.state
		var cmd tea.Cmd
		m.practiceView, cmd = m.practiceView.Update(breathview.SnapshotMsg{State: msg.state})
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabHistory && m.historyView.Filtering() {
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
		case "s":
			cmds = append(cmds, m.startCmd())
		case " ":
			switch m.state.Status {
			case "running":
				m.session.Pause(context.Background())
				m.status = "paused"
				cmds = append(cmds, m.snapshotCmd())
			case "paused":
				m.session.Resume(context.Background())
				m.status = "session running"
				cmds = append(cmds, m.snapshotCmd())
			}
		case "x":
			cmds = append(cmds, m.stopCmd())
		case "enter":
			if m.state.Status == "completed" && m.activeTab == tabPractice {
				m.session.Acknowledge(context.Background())
				m.status = "ready"
				cmds = append(cmds, m.snapshotCmd())
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabPractice:
		m.practiceView, tabCmd = m.practiceView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

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
	if m.showHelp {
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	} else {
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabPractice:
		return m.practiceView.View()
	case tabHistory:
		return m.historyView.View()
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
	bar := "nadi  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.state.Status == "running" || m.state.Status == "paused" {
		left = theme.Hot.Render("● "+m.state.Phase) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.practiceView, _ = m.practiceView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return breathview.EventMsg{Event: event}
	}
}

func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := m.session.Start(context.Background(), sessiondto.StartInput{})
		return sessionStartedMsg{state: state, err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.session.Stop(context.Background())
		return sessionStoppedMsg{summary: summary, err: err}
	}
}

func (m Model) snapshotCmd() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{state: m.session.Snapshot(context.Background())}
	}
}
