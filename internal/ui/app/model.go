package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "algotimer/internal/modules/session/dto"
	"algotimer/internal/ui/components"
	"algotimer/internal/ui/theme"
	historyview "algotimer/internal/ui/views/history"
	sessionview "algotimer/internal/ui/views/session"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.

type sessionPort interface {
	Start(ctx context.Context, problem string) (sessiondto.SnapshotOutput, error)
	Stop(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Submit(ctx context.Context, text, source string) (sessiondto.SnapshotOutput, error)
	Retry(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Restart(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Snapshot() sessiondto.SnapshotOutput
}

type historyPort interface {
	List(ctx context.Context) ([]sessiondto.SessionOutput, error)
	Stats(ctx context.Context) (sessiondto.StatsOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabSession tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{
	"Session", "History",
}

var paletteHints = []string{
	"session:stop",
	"session:restart",
	"session:retry",
	"history:reload",
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	session sessionview.KeyMap
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":", "ctrl+p"), key.WithHelp(":/ctrl+p", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		session: sessionview.DefaultKeys(),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	s := k.session
	return [][]key.Binding{
		{s.Start, s.Stop, s.Submit, s.Toggle},
		{s.Restart, s.Retry},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette; the session and history views do the rest.
type Model struct {
	sessionView sessionview.Model
	historyView historyview.Model

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

func NewModel(owner string, session sessionPort, history historyPort, loop sessionview.Scheduler) Model {
	return Model{
		sessionView: sessionview.New(session, loop, owner),
		historyView: historyview.New(history),
		activeTab:   tabSession,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(paletteHints),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.sessionView.Init(),
		m.historyView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case sessionview.FinishedMsg:
		if msg.PersistErr != nil {
			m.status = "session not saved: " + msg.PersistErr.Error()
		} else {
			m.status = "saved: " + msg.Session.Problem
		}
		return m, m.historyView.Reload()

	case historyview.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Non-printing bindings work even while a text field has focus; an
		// open list filter keeps them for itself.
		if !m.filtering() {
			switch msg.String() {
			case "tab":
				m.activeTab = (m.activeTab + 1) % tabCount
				return m, nil
			case "shift+tab":
				m.activeTab = (m.activeTab + tabCount - 1) % tabCount
				return m, nil
			case "ctrl+p":
				return m, m.palette.Open()
			}
		}

		// Yield to the active view while it takes free text. An empty field
		// still lets ? and : through.
		if m.typing() && !(m.fieldEmpty() && (msg.String() == "?" || msg.String() == ":")) {
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	}

	// Key presses go to the active tab only; everything else, clock ticks
	// in particular, reaches the session view whatever tab is shown.
	var cmd tea.Cmd
	if _, isKey := msg.(tea.KeyMsg); !isKey || m.activeTab == tabSession {
		m.sessionView, cmd = m.sessionView.Update(msg)
		cmds = append(cmds, cmd)
		m.syncStatus()
	}
	if _, isKey := msg.(tea.KeyMsg); !isKey || m.activeTab == tabHistory {
		m.historyView, cmd = m.historyView.Update(msg)
		cmds = append(cmds, cmd)
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
	case tabSession:
		return m.sessionView.View()
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
	bar := "algotimer  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if snap := m.sessionView.Snapshot(); snap.Running() || snap.AwaitingInput() {
		live := snap.Icon + " " + snap.Stage
		if snap.Running() {
			live += " " + components.Clock(snap.Remaining)
		}
		left = theme.Hot.Render("● "+live) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  ctrl+p:palette  q:quit")
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

	var cmd tea.Cmd
	switch parts[0] {
	case "session:stop":
		m.activeTab = tabSession
		m.sessionView, cmd = m.sessionView.StopStage()
	case "session:restart":
		m.activeTab = tabSession
		m.sessionView, cmd = m.sessionView.RestartSession()
	case "session:retry":
		m.activeTab = tabSession
		m.sessionView, cmd = m.sessionView.RetryPersist()
	case "history:reload":
		m.activeTab = tabHistory
		m.status = "reloading history"
		return m, m.historyView.Reload()
	default:
		m.status = "unknown command: " + parts[0]
		return m, nil
	}
	m.syncStatus()
	return m, cmd
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// typing reports whether the active tab is taking free text, in which case
// global single-key bindings must yield.
func (m Model) typing() bool {
	switch m.activeTab {
	case tabSession:
		return m.sessionView.Typing()
	case tabHistory:
		return m.historyView.Filtering()
	}
	return false
}

func (m Model) filtering() bool {
	return m.activeTab == tabHistory && m.historyView.Filtering()
}

func (m Model) fieldEmpty() bool {
	return m.activeTab == tabSession && m.sessionView.FieldEmpty()
}

func (m *Model) syncStatus() {
	if s := m.sessionView.Status(); s != "" {
		m.status = s
	}
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.sessionView, _ = m.sessionView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}
