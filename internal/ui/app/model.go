package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	goaldto "learnjourney/internal/modules/goal/dto"
	journaldto "learnjourney/internal/modules/journal/dto"
	"learnjourney/internal/ui/components"
	"learnjourney/internal/ui/theme"
	onboardingview "learnjourney/internal/ui/views/onboarding"
	trackerview "learnjourney/internal/ui/views/tracker"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type goalPort interface {
	Status(ctx context.Context) (goaldto.GoalOutput, error)
	Start(ctx context.Context, title, duration string) (goaldto.GoalOutput, error)
	Restart(ctx context.Context) (goaldto.GoalOutput, error)
	Learned(ctx context.Context) (goaldto.RecordOutput, error)
	Freeze(ctx context.Context) (goaldto.RecordOutput, error)
	Week(ctx context.Context, offset int) (goaldto.WeekOutput, error)
}

type journalPort interface {
	Export(ctx context.Context) (journaldto.ExportOutput, error)
}

// ─── screens ─────────────────────────────────────────────────────────────────

type screenID int

const (
	screenLoading screenID = iota
	screenOnboarding
	screenTracker
)

// ─── async messages ───────────────────────────────────────────────────────────

type statusLoadedMsg struct {
	goal goaldto.GoalOutput
	err  error
}

// goalChangedMsg carries a snapshot pushed by the goal usecase, e.g. after
// the midnight rollover.
type goalChangedMsg struct {
	goal goaldto.GoalOutput
}

type restartedMsg struct {
	goal goaldto.GoalOutput
	err  error
}

type exportedMsg struct {
	out journaldto.ExportOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Learned key.Binding
	Freeze  key.Binding
	Week    key.Binding
	Today   key.Binding
	Restart key.Binding
	New     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Learned: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log learned")),
		Freeze:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "freeze day")),
		Week:    key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "change week")),
		Today:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart goal")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new goal")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Learned, k.Freeze, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Learned, k.Freeze},
		{k.Week, k.Today},
		{k.Restart, k.New},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes between onboarding and the
// tracker and owns the help overlay and the command palette. Goal decisions
// live behind the ports; rendering is delegated to sub-views.
type Model struct {
	goal    goalPort
	journal journalPort
	updates <-chan goaldto.GoalOutput

	onboarding onboardingview.Model
	tracker    trackerview.Model

	screen   screenID
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel wires the UI. updates may be nil; when set, every snapshot
// received on it refreshes the tracker.
func NewModel(goal goalPort, journal journalPort, updates <-chan goaldto.GoalOutput) Model {
	return Model{
		goal:       goal,
		journal:    journal,
		updates:    updates,
		onboarding: onboardingview.New(goalPortBridge{p: goal}),
		tracker:    trackerview.New(goalPortBridge{p: goal}),
		screen:     screenLoading,
		keys:       defaultKeys(),
		help:       help.New(),
		palette:    components.NewPalette(),
		status:     "loading",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatusCmd(), m.waitForUpdateCmd(), m.onboarding.Init())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 64))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case statusLoadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		return m.showGoal(msg.goal)

	case goalChangedMsg:
		cmds := []tea.Cmd{m.waitForUpdateCmd()}
		if m.screen == screenTracker {
			cmds = append(cmds, m.tracker.SetGoal(msg.goal))
		}
		return m, tea.Batch(cmds...)

	case onboardingview.StartedMsg:
		var cmd tea.Cmd
		m.onboarding, cmd = m.onboarding.Update(msg)
		if msg.Err != nil {
			m.status = "start failed: " + msg.Err.Error()
			return m, cmd
		}
		m.status = fmt.Sprintf("started: %s (%s)", msg.Goal.Title, msg.Goal.Duration)
		next, showCmd := m.showGoal(msg.Goal)
		return next, tea.Batch(cmd, showCmd)

	case onboardingview.CancelMsg:
		m.screen = screenTracker
		m.status = "ready"
		return m, nil

	case restartedMsg:
		if msg.err != nil {
			m.status = "restart failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "restarted: " + msg.goal.Title
		return m.showGoal(msg.goal)

	case exportedMsg:
		if msg.err != nil {
			m.status = "journal: " + msg.err.Error()
		} else {
			m.status = "journal written: " + msg.out.Path
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == screenOnboarding {
			var cmd tea.Cmd
			m.onboarding, cmd = m.onboarding.Update(msg)
			return m, cmd
		}
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open(m.screen == screenTracker)
		case "n":
			return m, m.openOnboarding()
		case "r":
			return m, m.restartCmd()
		}
	}

	if m.screen == screenTracker {
		var cmd tea.Cmd
		m.tracker, cmd = m.tracker.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.onboarding, cmd = m.onboarding.Update(msg)
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
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
	case m.screen == screenOnboarding:
		content = m.onboarding.View()
	case m.screen == screenTracker:
		content = m.tracker.View()
	default:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, theme.Muted.Render("loading…"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	bar := theme.Title.Render("learnjourney")
	if g := m.tracker.Goal(); m.screen == screenTracker && g.Title != "" {
		bar += theme.Muted.Render("  │  ") + g.Title
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  :::palette  q:quit")
	if m.screen == screenOnboarding {
		right = theme.Muted.Render("ctrl+c:quit")
	}
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
	if m.screen != screenTracker && parts[0] != "goal:new" {
		m.status = "set a goal first"
		return m, nil
	}

	switch parts[0] {
	case "goal:learned":
		return m, m.tracker.LearnedCmd()
	case "goal:freeze":
		return m, m.tracker.FreezeCmd()
	case "goal:restart":
		return m, m.restartCmd()
	case "goal:new":
		return m, m.openOnboarding()
	case "week:prev":
		return m, m.tracker.ShiftWeek(-1)
	case "week:next":
		return m, m.tracker.ShiftWeek(1)
	case "week:today":
		return m, m.tracker.TodayCmd()
	case "journal:export":
		return m, m.exportCmd()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) showGoal(goal goaldto.GoalOutput) (tea.Model, tea.Cmd) {
	if !goal.HasGoal {
		m.screen = screenOnboarding
		m.status = "what do you want to learn?"
		return m, m.onboarding.Reset("", "Week", false)
	}
	m.screen = screenTracker
	if m.status == "loading" {
		m.status = "ready"
	}
	return m, m.tracker.SetGoal(goal)
}

func (m *Model) openOnboarding() tea.Cmd {
	g := m.tracker.Goal()
	m.screen = screenOnboarding
	m.status = "new goal"
	return m.onboarding.Reset("", g.Duration, g.HasGoal)
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.onboarding, _ = m.onboarding.Update(sz)
	m.tracker, _ = m.tracker.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		goal, err := m.goal.Status(context.Background())
		return statusLoadedMsg{goal: goal, err: err}
	}
}

func (m Model) waitForUpdateCmd() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		goal, ok := <-m.updates
		if !ok {
			return nil
		}
		return goalChangedMsg{goal: goal}
	}
}

func (m Model) restartCmd() tea.Cmd {
	return func() tea.Msg {
		goal, err := m.goal.Restart(context.Background())
		return restartedMsg{goal: goal, err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		if m.journal == nil {
			return exportedMsg{err: fmt.Errorf("journal is not configured")}
		}
		out, err := m.journal.Export(context.Background())
		return exportedMsg{out: out, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows the broad goal port to the minimal interface needed by
// a specific sub-view.

type goalPortBridge struct{ p goalPort }

func (b goalPortBridge) Start(ctx context.Context, title, duration string) (goaldto.GoalOutput, error) {
	return b.p.Start(ctx, title, duration)
}
func (b goalPortBridge) Learned(ctx context.Context) (goaldto.RecordOutput, error) {
	return b.p.Learned(ctx)
}
func (b goalPortBridge) Freeze(ctx context.Context) (goaldto.RecordOutput, error) {
	return b.p.Freeze(ctx)
}
func (b goalPortBridge) Week(ctx context.Context, offset int) (goaldto.WeekOutput, error) {
	return b.p.Week(ctx, offset)
}
