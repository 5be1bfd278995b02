package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	sessiondto "algotimer/internal/modules/session/dto"
	"algotimer/internal/ui/components"
	"algotimer/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	List(ctx context.Context) ([]sessiondto.SessionOutput, error)
	Stats(ctx context.Context) (sessiondto.StatsOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Sessions []sessiondto.SessionOutput
	Stats    sessiondto.StatsOutput
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type sessionItem struct {
	session sessiondto.SessionOutput
}

func (i sessionItem) Title() string {
	return i.session.Problem
}

func (i sessionItem) Description() string {
	return fmt.Sprintf("%s  %s", i.session.StartedAt.Format("2006-01-02 15:04"), components.Clock(i.session.TotalSeconds))
}

func (i sessionItem) FilterValue() string {
	return i.session.Problem
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     HistoryPort
	list     list.Model
	stats    sessiondto.StatsOutput
	preview  viewport.Model
	renderer *glamour.TermRenderer
	spinner  spinner.Model
	loading  bool
	err      error
	width    int
	height   int
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

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:     port,
		list:     l,
		preview:  vp,
		renderer: r,
		spinner:  sp,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.stats = msg.Stats
		items := make([]list.Item, len(msg.Sessions))
		// newest first
		for i, s := range msg.Sessions {
			items[len(msg.Sessions)-1-i] = sessionItem{session: s}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.list.Select(0)
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
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
			m.preview.SetContent(m.renderDetail())
			m.preview.GotoTop()
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
	if m.err != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Bad.Render("history: "+m.err.Error()))
	}

	header := m.renderStats()
	bodyH := m.height - lipgloss.Height(header)
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(bodyH).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(bodyH - 2).
		Render(m.preview.View())

	return lipgloss.JoinVertical(lipgloss.Left, header,
		lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane))
}

// Reload re-reads the session log, e.g. after a session finished.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		sessions, err := m.port.List(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		stats, err := m.port.Stats(ctx)
		return LoadedMsg{Sessions: sessions, Stats: stats, Err: err}
	}
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	bodyH := m.height - 2
	m.list.SetSize(listW, bodyH)
	m.preview.Width = detailW - 4
	m.preview.Height = bodyH - 4
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(max(m.preview.Width-2, 20)),
	); err == nil {
		m.renderer = r
	}
	m.preview.SetContent(m.renderDetail())
}

func (m Model) renderStats() string {
	s := m.stats
	parts := []string{
		fmt.Sprintf("%d sessions", s.Sessions),
		"total " + components.Clock(s.TotalSeconds),
	}
	for _, a := range s.Averages {
		parts = append(parts, fmt.Sprintf("%s ~%s", a.Stage, components.Clock(int(a.Seconds))))
	}
	parts = append(parts, fmt.Sprintf("own ideas %d", s.SelfThoughts), fmt.Sprintf("own answers %d", s.SelfAnswers))
	return theme.Muted.Render(" "+strings.Join(parts, " · ")) + "\n"
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return theme.Muted.Render("No sessions recorded yet")
	}
	md := Markdown(item.session)
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Markdown renders one session as the detail document.
func Markdown(s sessiondto.SessionOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", s.Problem)
	fmt.Fprintf(&sb, "_%s_\n\n", s.StartedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("| Stage | Time |\n|---|---|\n")
	for _, r := range s.Results {
		fmt.Fprintf(&sb, "| %s %s | %s |\n", r.Icon, r.Stage, components.Clock(r.Seconds))
	}
	fmt.Fprintf(&sb, "| **Total** | **%s** |\n", components.Clock(s.TotalSeconds))
	for _, r := range s.Results {
		if r.Text == nil {
			continue
		}
		title := r.Stage
		if r.Source != "" {
			title = fmt.Sprintf("%s (%s)", r.Stage, r.Source)
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", title)
		if strings.TrimSpace(*r.Text) == "" {
			sb.WriteString("_empty_\n")
			continue
		}
		sb.WriteString(*r.Text + "\n")
	}
	return sb.String()
}
