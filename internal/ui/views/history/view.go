package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "nadi/internal/modules/session/dto"
	"nadi/internal/ui/theme"
)

const loadLimit = 50

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error)
	GetRecord(ctx context.Context, id string) (sessiondto.RecordOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RecordsLoadedMsg struct {
	Records []sessiondto.RecordOutput
	Err     error
}

type DetailLoadedMsg struct {
	Record sessiondto.RecordOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type recordItem struct {
	record sessiondto.RecordOutput
}

func (i recordItem) Title() string {
	return i.record.StartedAt.Format("Mon Jan 2 15:04")
}

func (i recordItem) Description() string {
	outcome := "stopped"
	if i.record.Completed {
		outcome = "completed"
	}
	return fmt.Sprintf("%s  %d cycles  %s", outcome, i.record.CycleCount, clockFormat(i.record.ElapsedSeconds))
}

func (i recordItem) FilterValue() string {
	return i.record.StartedAt.Format("2006-01-02")
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    HistoryPort
	list    list.Model
	detail  sessiondto.RecordOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadRecordsCmd(), m.spinner.Tick)
}

// Reload refreshes the record list, used after a session finishes.
func (m Model) Reload() tea.Cmd {
	return m.loadRecordsCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case RecordsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "History — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Records))
		for i, r := range msg.Records {
			items[i] = recordItem{record: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Records) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Records[0].ID))
		} else {
			m.detail = sessiondto.RecordOutput{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Record
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(recordItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.record.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

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

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
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
	r := m.detail
	if r.ID == "" {
		return theme.Muted.Render("No sessions recorded yet")
	}
	outcome := "stopped early"
	if r.Completed {
		outcome = "completed"
	}
	score := "n/a"
	if r.FinalScore >= 0 {
		score = fmt.Sprintf("%d", r.FinalScore)
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(r.StartedAt.Format("Monday, January 2 2006 15:04")) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:        ") + r.ID + "\n")
	sb.WriteString(theme.Muted.Render("outcome:   ") + outcome + "\n")
	sb.WriteString(theme.Muted.Render("practiced: ") + fmt.Sprintf("%s of %s", clockFormat(r.ElapsedSeconds), clockFormat(r.SessionSeconds)) + "\n")
	sb.WriteString(theme.Muted.Render("cycles:    ") + fmt.Sprintf("%d", r.CycleCount) + "\n")
	sb.WriteString(theme.Muted.Render("breath:    ") + fmt.Sprintf("%ds per phase", r.BreathSeconds) + "\n")
	sb.WriteString(theme.Muted.Render("posture:   ") + score + "\n")
	if r.NotePath != "" {
		sb.WriteString(theme.Muted.Render("note:      ") + r.NotePath + "\n")
	}
	return sb.String()
}

func (m Model) loadRecordsCmd() tea.Cmd {
	return func() tea.Msg {
		records, err := m.port.History(context.Background(), loadLimit)
		return RecordsLoadedMsg{Records: records, Err: err}
	}
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		record, err := m.port.GetRecord(context.Background(), id)
		return DetailLoadedMsg{Record: record, Err: err}
	}
}

func clockFormat(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
