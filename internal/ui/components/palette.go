package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"learnjourney/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Flame).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	rowStyle     = lipgloss.NewStyle().Foreground(theme.Subtext0)
	rowPickStyle = lipgloss.NewStyle().Foreground(theme.Base).Background(theme.Flame).Bold(true)
	rowHelpStyle = lipgloss.NewStyle().Foreground(theme.Surface1)
)

const maxPaletteRows = 6

// Command is one palette entry. NeedsGoal hides it until a goal exists.
type Command struct {
	Name      string
	Help      string
	NeedsGoal bool
}

// Commands must stay in sync with the switch in app/model.go executePalette.
var Commands = []Command{
	{Name: "goal:learned", Help: "log today as learned", NeedsGoal: true},
	{Name: "goal:freeze", Help: "spend a freeze on today", NeedsGoal: true},
	{Name: "goal:restart", Help: "restart this goal from today", NeedsGoal: true},
	{Name: "goal:new", Help: "archive and start a new goal"},
	{Name: "week:prev", Help: "show the previous week", NeedsGoal: true},
	{Name: "week:next", Help: "show the next week", NeedsGoal: true},
	{Name: "week:today", Help: "jump back to this week", NeedsGoal: true},
	{Name: "journal:export", Help: "write the journal note", NeedsGoal: true},
}

// Palette is a command overlay: typing filters Commands, up/down picks one
// and enter runs the picked command.
type Palette struct {
	input   textinput.Model
	visible bool
	hasGoal bool
	pick    int
	moved   bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "learned, freeze, week…"
	ti.CharLimit = 64
	ti.Prompt = "› "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(theme.Flame)
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty filter. hasGoal decides whether the
// goal-bound commands are offered.
func (p *Palette) Open(hasGoal bool) tea.Cmd {
	p.visible = true
	p.hasGoal = hasGoal
	p.pick = 0
	p.moved = false
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "up", "ctrl+p":
			if p.pick > 0 {
				p.pick--
			}
			p.moved = true
			return p, nil
		case "down", "ctrl+n":
			if p.pick < len(p.matching())-1 {
				p.pick++
			}
			p.moved = true
			return p, nil
		case "tab":
			if c, ok := p.picked(); ok {
				p.input.SetValue(c.Name)
				p.input.CursorEnd()
				p.pick, p.moved = 0, false
			}
			return p, nil
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			if c, ok := p.picked(); ok {
				val = c.Name
			}
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		}
	}
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.pick, p.moved = 0, false
	}
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	w := p.width
	if w < 20 {
		w = 64
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Commands") + "\n")
	sb.WriteString(p.input.View() + "\n\n")

	rows := p.matching()
	if len(rows) == 0 {
		sb.WriteString(rowStyle.Render("  no matching command"))
	}
	for i, c := range rows {
		if i == maxPaletteRows {
			sb.WriteString(rowStyle.Render("  …"))
			break
		}
		name := " " + c.Name + " "
		if i == p.pick {
			name = rowPickStyle.Render(name)
		} else {
			name = rowStyle.Render(name)
		}
		sb.WriteString(name + " " + rowHelpStyle.Render(c.Help) + "\n")
	}
	return paletteStyle.Width(w - 2).Render(strings.TrimRight(sb.String(), "\n"))
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// picked is the highlighted command, once the user has typed or moved.
func (p Palette) picked() (Command, bool) {
	rows := p.matching()
	if len(rows) == 0 || (!p.moved && strings.TrimSpace(p.input.Value()) == "") {
		return Command{}, false
	}
	return rows[min(p.pick, len(rows)-1)], true
}

// matching lists the offered commands whose full name or verb after the
// colon starts with the typed text.
func (p Palette) matching() []Command {
	typed := strings.ToLower(strings.TrimSpace(p.input.Value()))
	var out []Command
	for _, c := range Commands {
		if c.NeedsGoal && !p.hasGoal {
			continue
		}
		_, verb, _ := strings.Cut(c.Name, ":")
		if typed == "" || strings.HasPrefix(c.Name, typed) || strings.HasPrefix(verb, typed) {
			out = append(out, c)
		}
	}
	return out
}
