package tracker

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	goaldto "learnjourney/internal/modules/goal/dto"
	"learnjourney/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type TrackerPort interface {
	Learned(ctx context.Context) (goaldto.RecordOutput, error)
	Freeze(ctx context.Context) (goaldto.RecordOutput, error)
	Week(ctx context.Context, offset int) (goaldto.WeekOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RecordedMsg struct {
	Action string
	Out    goaldto.RecordOutput
	Err    error
}

type WeekLoadedMsg struct {
	Week goaldto.WeekOutput
	Err  error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   TrackerPort
	goal   goaldto.GoalOutput
	week   goaldto.WeekOutput
	status string
	width  int
	height int
}

func New(port TrackerPort) Model {
	return Model{port: port}
}

// SetGoal replaces the displayed snapshot and reloads the calendar row.
func (m *Model) SetGoal(goal goaldto.GoalOutput) tea.Cmd {
	m.goal = goal
	return m.ShiftWeek(0)
}

func (m Model) Goal() goaldto.GoalOutput {
	return m.goal
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case RecordedMsg:
		if msg.Err != nil {
			m.status = msg.Action + ": " + msg.Err.Error()
			return m, nil
		}
		m.goal = msg.Out.Goal
		m.status = describe(msg.Action, msg.Out)
		return m, m.ShiftWeek(0)

	case WeekLoadedMsg:
		if msg.Err == nil {
			m.week = msg.Week
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "l":
			return m, m.LearnedCmd()
		case "f":
			return m, m.FreezeCmd()
		case "left":
			return m, m.ShiftWeek(-1)
		case "right":
			return m, m.ShiftWeek(1)
		case "t":
			return m, m.TodayCmd()
		}
	}
	return m, nil
}

func (m Model) View() string {
	g := m.goal
	var sb strings.Builder

	header := theme.Title.Render(g.Title)
	streak := theme.Hot.Render(fmt.Sprintf("🔥 %d", g.CurrentStreak))
	freezes := theme.Frozen.Render(fmt.Sprintf("🧊 %d", g.UsedFreezes))
	sb.WriteString(header + "   " + streak + "  " + freezes + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("%s · %s → %s",
		g.Duration, g.StartDate.Format("Jan 2, 2006"), g.EndDate.Format("Jan 2, 2006"))) + "\n\n")

	sb.WriteString(m.renderWeek() + "\n\n")
	sb.WriteString(m.renderStats() + "\n\n")
	sb.WriteString(m.renderActions() + "\n")

	if g.PeriodFinished {
		sb.WriteString("\n" + theme.Hot.Render("Well done! Goal completed 🎉") + "\n")
		sb.WriteString(theme.Muted.Render("r: same goal again   n: set a new goal") + "\n")
	}
	if m.status != "" {
		sb.WriteString("\n" + theme.Muted.Render(m.status))
	}

	w := min(m.width-4, 64)
	if w < 32 {
		w = 64
	}
	box := theme.Pane.Width(w).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) LearnedCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Learned(context.Background())
		return RecordedMsg{Action: "learned", Out: out, Err: err}
	}
}

func (m Model) FreezeCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Freeze(context.Background())
		return RecordedMsg{Action: "freeze", Out: out, Err: err}
	}
}

func (m Model) ShiftWeek(offset int) tea.Cmd {
	return func() tea.Msg {
		week, err := m.port.Week(context.Background(), offset)
		return WeekLoadedMsg{Week: week, Err: err}
	}
}

func (m Model) TodayCmd() tea.Cmd {
	return m.ShiftWeek(m.offsetToToday())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderWeek() string {
	if len(m.week.Days) == 0 {
		return theme.Muted.Render("loading week…")
	}
	month := theme.Muted.Render("‹ " + m.week.Start.Format("January 2006") + " ›")
	labels := make([]string, 0, len(m.week.Days))
	cells := make([]string, 0, len(m.week.Days))
	for _, d := range m.week.Days {
		labels = append(labels, theme.DayPlain.Width(5).Align(lipgloss.Center).Render(d.Label))
		num := fmt.Sprintf("%2d", d.Date.Day())
		var style lipgloss.Style
		switch {
		case d.Status == "learned":
			style = theme.DayLearned
		case d.Status == "freezed":
			style = theme.DayFreezed
		case d.Today:
			style = theme.DayToday
		case !d.InPeriod:
			style = theme.DayOutside
		default:
			style = theme.DayPlain
		}
		cells = append(cells, style.Width(5).Align(lipgloss.Center).Render(num))
	}
	return month + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, labels...) + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) renderStats() string {
	g := m.goal
	learned := theme.Hot.Render(fmt.Sprintf("%d", g.UsedLearned)) + " " + plural(g.UsedLearned, "Day Learned", "Days Learned")
	freezed := theme.Frozen.Render(fmt.Sprintf("%d", g.UsedFreezes)) + " " + plural(g.UsedFreezes, "Day Freezed", "Days Freezed")
	return learned + "    " + freezed
}

func (m Model) renderActions() string {
	g := m.goal
	var learn, freeze string
	switch {
	case g.TodayLearned:
		learn = theme.LearnButton.Render("Learned Today")
		freeze = theme.Disabled.Render("Freeze Day")
	case g.TodayFreezed:
		learn = theme.Disabled.Render("Learn today")
		freeze = theme.FreezeButton.Render("Day Freezed")
	default:
		learn = theme.LearnButton.Render("l  Log as Learned")
		if g.FreezeLimit {
			freeze = theme.Disabled.Render("f  Freeze Day")
		} else {
			freeze = theme.FreezeButton.Render("f  Freeze Day")
		}
	}
	used := theme.Muted.Render(fmt.Sprintf("%d out of %d Freezes used", g.UsedFreezes, g.FreezeQuota))
	return learn + " " + freeze + "\n" + used
}

// offsetToToday is the week shift that brings today's week back into view.
func (m Model) offsetToToday() int {
	if m.week.Start.IsZero() || m.goal.Today.IsZero() {
		return 0
	}
	days := int(math.Round(m.goal.Today.Sub(m.week.Start).Hours() / 24))
	if days >= 0 {
		return days / 7
	}
	return -((-days + 6) / 7)
}

func describe(action string, out goaldto.RecordOutput) string {
	switch out.Outcome {
	case "recorded":
		if action == "freeze" {
			return "day freezed"
		}
		return fmt.Sprintf("logged, streak %d", out.Goal.CurrentStreak)
	case "already_learned":
		return "today is already logged as learned"
	case "already_freezed":
		return "today is already freezed"
	case "freeze_limit_reached":
		return "no freezes left for this period"
	default:
		return out.Outcome
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
