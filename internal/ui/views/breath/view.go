package breath

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "nadi/internal/modules/session/dto"
	"nadi/internal/ui/theme"
)

// ─── messages ────────────────────────────────────────────────────────────────

// SessionEvent is the UI-facing projection of a controller event. The app
// model receives these from the event channel and forwards them here.
type SessionEvent struct {
	Kind             string
	Phase            string
	Instruction      string
	RemainingSeconds int
	ElapsedSeconds   int
	CycleCount       int
	Severity         string
	FinalScore       int
	Completed        bool
}

type EventMsg struct {
	Event SessionEvent
}

type SnapshotMsg struct {
	State sessiondto.StateOutput
}

// alert flash duration measured in clock ticks rather than wall time; the
// flash clears on the next clock_tick event after the one that raised it.
const alertFlashTicks = 2

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	state      sessiondto.StateOutput
	lastAlert  string
	alertTicks int
	completed  SessionEvent
	showDone   bool
	bar        progress.Model
	width      int
	height     int
}

func New() Model {
	bar := progress.New(progress.WithGradient(string(theme.Sapphire), string(theme.Lavender)))
	bar.ShowPercentage = false
	return Model{bar: bar}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(m.width-8, 60)

	case SnapshotMsg:
		m.state = msg.State
		if m.state.Status != "completed" {
			m.showDone = false
		}

	case EventMsg:
		m.applyEvent(msg.Event)
	}
	return m, nil
}

func (m *Model) applyEvent(event SessionEvent) {
	switch event.Kind {
	case "phase_changed", "breath_tick":
		m.state.Phase = event.Phase
		m.state.Instruction = event.Instruction
		m.state.RemainingBreathSeconds = event.RemainingSeconds
	case "cycle_completed":
		m.state.CycleCount = event.CycleCount
	case "clock_tick":
		m.state.ElapsedSeconds = event.ElapsedSeconds
		if m.alertTicks > 0 {
			m.alertTicks--
			if m.alertTicks == 0 {
				m.lastAlert = ""
			}
		}
	case "posture_alert":
		m.lastAlert = "sit up straight (" + event.Severity + ")"
		m.alertTicks = alertFlashTicks
	case "eye_alert":
		m.lastAlert = "close your eyes"
		m.alertTicks = alertFlashTicks
	case "session_completed":
		m.completed = event
		m.showDone = true
		m.state.Status = "completed"
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	var content string
	switch {
	case m.showDone:
		content = m.renderDone()
	case m.state.Status == "running" || m.state.Status == "paused":
		content = m.renderActive()
	default:
		content = m.renderIdle()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderIdle() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("nadi shodhana") + "\n\n")
	sb.WriteString(theme.Muted.Render("Alternate-nostril breathing practice.") + "\n\n")
	sb.WriteString(theme.Muted.Render("s: start session  tab: history  q: quit"))
	return sb.String()
}

func (m Model) renderActive() string {
	s := m.state
	var sb strings.Builder

	header := theme.Title.Render(strings.ToUpper(s.Phase))
	if s.Status == "paused" {
		header += "  " + theme.Hot.Render("[paused]")
	}
	sb.WriteString(header + "\n\n")
	sb.WriteString(s.Instruction + "\n\n")

	countdown := lipgloss.NewStyle().Foreground(theme.Lavender).Bold(true).
		Render(fmt.Sprintf("%d", s.RemainingBreathSeconds))
	sb.WriteString("breath  " + countdown + "\n\n")

	if s.SessionSeconds > 0 {
		ratio := float64(s.ElapsedSeconds) / float64(s.SessionSeconds)
		sb.WriteString(m.bar.ViewAs(ratio) + "\n")
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%s / %s elapsed",
			clockFormat(s.ElapsedSeconds), clockFormat(s.SessionSeconds))) + "\n\n")
	}

	sb.WriteString(theme.Muted.Render("cycles  ") + fmt.Sprintf("%d", s.CycleCount) + "\n")
	sb.WriteString(theme.Muted.Render("posture ") + scoreText(s.SmoothedScore) + "\n")

	if m.lastAlert != "" {
		sb.WriteString("\n" + theme.Warn.Render("! "+m.lastAlert) + "\n")
	}

	sb.WriteString("\n" + theme.Muted.Render("space: pause/resume  x: stop  q: quit"))
	return sb.String()
}

func (m Model) renderDone() string {
	e := m.completed
	var sb strings.Builder
	if e.Completed {
		sb.WriteString(theme.Good.Render("Session complete") + "\n\n")
	} else {
		sb.WriteString(theme.Title.Render("Session stopped") + "\n\n")
	}
	sb.WriteString(theme.Muted.Render("practiced ") + clockFormat(e.ElapsedSeconds) + "\n")
	sb.WriteString(theme.Muted.Render("cycles    ") + fmt.Sprintf("%d", e.CycleCount) + "\n")
	sb.WriteString(theme.Muted.Render("posture   ") + scoreText(e.FinalScore) + "\n\n")
	sb.WriteString(theme.Muted.Render("enter: dismiss  s: start again  q: quit"))
	return sb.String()
}

func scoreText(score int) string {
	if score < 0 {
		return theme.Muted.Render("n/a")
	}
	text := fmt.Sprintf("%d", score)
	switch {
	case score >= 85:
		return theme.Good.Render(text)
	case score >= 70:
		return theme.Hot.Render(text)
	default:
		return theme.Warn.Render(text)
	}
}

func clockFormat(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
