package onboarding

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	goaldto "learnjourney/internal/modules/goal/dto"
	"learnjourney/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type StartPort interface {
	Start(ctx context.Context, title, duration string) (goaldto.GoalOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type StartedMsg struct {
	Goal goaldto.GoalOutput
	Err  error
}

// CancelMsg asks the parent to go back to the tracker without a change.
type CancelMsg struct{}

// ─── model ───────────────────────────────────────────────────────────────────

var durations = []string{"Week", "Month", "Year"}

type Model struct {
	port      StartPort
	input     textinput.Model
	duration  int
	err       string
	busy      bool
	canCancel bool
	width     int
	height    int
}

func New(port StartPort) Model {
	ti := textinput.New()
	ti.Placeholder = "Swift"
	ti.CharLimit = 64
	ti.Prompt = "› "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(theme.Flame)
	return Model{port: port, input: ti}
}

// Reset clears the form. canCancel enables esc when a goal already exists.
func (m *Model) Reset(title, duration string, canCancel bool) tea.Cmd {
	m.input.SetValue(title)
	m.duration = 0
	for i, d := range durations {
		if strings.EqualFold(d, duration) {
			m.duration = i
		}
	}
	m.err = ""
	m.busy = false
	m.canCancel = canCancel
	return m.input.Focus()
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StartedMsg:
		m.busy = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.duration = (m.duration + 1) % len(durations)
			return m, nil
		case "shift+tab", "up":
			m.duration = (m.duration + len(durations) - 1) % len(durations)
			return m, nil
		case "esc":
			if m.canCancel {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				m.err = "what do you want to learn?"
				return m, nil
			}
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.startCmd(title, durations[m.duration])
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("🔥 Learning Journey") + "\n\n")
	sb.WriteString("I want to learn\n")
	sb.WriteString(m.input.View() + "\n\n")
	sb.WriteString("I want to learn it in a\n")

	opts := make([]string, len(durations))
	for i, d := range durations {
		if i == m.duration {
			opts[i] = theme.LearnButton.Render(d)
		} else {
			opts[i] = theme.Disabled.Render(d)
		}
	}
	sb.WriteString(strings.Join(opts, " ") + "\n\n")

	if m.err != "" {
		sb.WriteString(theme.Hot.Render(m.err) + "\n\n")
	}
	hint := "enter: start  tab: duration"
	if m.canCancel {
		hint += "  esc: back"
	}
	sb.WriteString(theme.Muted.Render(hint))

	w := min(m.width-4, 56)
	if w < 24 {
		w = 56
	}
	box := theme.PaneActive.Width(w).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// Title returns the text currently typed.
func (m Model) Title() string {
	return m.input.Value()
}

// Duration returns the selected period kind.
func (m Model) Duration() string {
	return durations[m.duration]
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) startCmd(title, duration string) tea.Cmd {
	return func() tea.Msg {
		goal, err := m.port.Start(context.Background(), title, duration)
		return StartedMsg{Goal: goal, Err: err}
	}
}
