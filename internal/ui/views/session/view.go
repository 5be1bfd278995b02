package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "algotimer/internal/modules/session/dto"
	"algotimer/internal/ui/components"
	"algotimer/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type Port interface {
	Start(ctx context.Context, problem string) (sessiondto.SnapshotOutput, error)
	Stop(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Submit(ctx context.Context, text, source string) (sessiondto.SnapshotOutput, error)
	Retry(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Restart(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Snapshot() sessiondto.SnapshotOutput
}

// Scheduler is the event-loop bridge the stage clock ticks through.
type Scheduler interface {
	Handle(msg tea.Msg) bool
	Drain() tea.Cmd
}

// ─── messages ────────────────────────────────────────────────────────────────

// FinishedMsg is emitted once per session when it reaches Finished.
type FinishedMsg struct {
	Session    sessiondto.SessionOutput
	PersistErr error
}

// ─── keys ────────────────────────────────────────────────────────────────────

type KeyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Toggle  key.Binding
	Submit  key.Binding
	Restart key.Binding
	Retry   key.Binding
}

func DefaultKeys() KeyMap {
	return KeyMap{
		Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start session")),
		Stop:    key.NewBinding(key.WithKeys("ctrl+s", "s"), key.WithHelp("s", "stop stage")),
		Toggle:  key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "self/other")),
		Submit:  key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "submit")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new session")),
		Retry:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "retry save")),
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port      Port
	loop      Scheduler
	owner     string
	keys      KeyMap
	title     textinput.Model
	capture   textarea.Model
	countdown components.Countdown
	source    string
	snap      sessiondto.SnapshotOutput
	status    string
	width     int
	height    int
}

func New(port Port, loop Scheduler, owner string) Model {
	ti := textinput.New()
	ti.Placeholder = "e.g. Two Sum"
	ti.CharLimit = 200
	ti.Prompt = "› "
	ti.Focus()

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(8)

	return Model{
		port:      port,
		loop:      loop,
		owner:     owner,
		keys:      DefaultKeys(),
		title:     ti,
		capture:   ta,
		countdown: components.NewCountdown(),
		source:    "self",
		snap:      port.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.loop.Handle(msg) {
		return m.apply(m.port.Snapshot(), nil)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		ctx := context.Background()
		switch {
		case m.snap.Idle() && key.Matches(msg, m.keys.Start):
			return m.apply(m.port.Start(ctx, m.title.Value()))
		case m.snap.Running() && key.Matches(msg, m.keys.Stop):
			return m.apply(m.port.Stop(ctx))
		case m.snap.AwaitingInput() && key.Matches(msg, m.keys.Toggle):
			if m.snap.SourcePrompt != "" {
				if m.source == "self" {
					m.source = "other"
				} else {
					m.source = "self"
				}
			}
			return m, nil
		case m.snap.AwaitingInput() && key.Matches(msg, m.keys.Submit):
			return m.apply(m.port.Submit(ctx, m.capture.Value(), m.source))
		case m.snap.Finished() && key.Matches(msg, m.keys.Restart):
			return m.RestartSession()
		case m.snap.Finished() && key.Matches(msg, m.keys.Retry):
			return m.RetryPersist()
		}
	}

	var cmd tea.Cmd
	switch {
	case m.snap.Idle():
		m.title, cmd = m.title.Update(msg)
	case m.snap.AwaitingInput():
		m.capture, cmd = m.capture.Update(msg)
	}
	return m, cmd
}

// StopStage ends the running stage, as if the stop key was pressed.
func (m Model) StopStage() (Model, tea.Cmd) {
	return m.apply(m.port.Stop(context.Background()))
}

func (m Model) RestartSession() (Model, tea.Cmd) {
	return m.apply(m.port.Restart(context.Background()))
}

func (m Model) RetryPersist() (Model, tea.Cmd) {
	if m.snap.PersistErr == nil {
		m.status = "session already saved"
		return m, nil
	}
	return m.apply(m.port.Retry(context.Background()))
}

// Typing reports whether a text field has focus, so global single-letter
// keys must not be intercepted.
func (m Model) Typing() bool {
	return m.snap.Idle() || m.snap.AwaitingInput()
}

// FieldEmpty reports whether the focused text field holds nothing yet.
func (m Model) FieldEmpty() bool {
	switch {
	case m.snap.Idle():
		return m.title.Value() == ""
	case m.snap.AwaitingInput():
		return m.capture.Value() == ""
	}
	return true
}

func (m Model) Snapshot() sessiondto.SnapshotOutput {
	return m.snap
}

// Status is the last error reported by the session, if any.
func (m Model) Status() string {
	return m.status
}

// apply adopts the machine's new snapshot and moves focus to whichever input
// the new phase needs.
func (m Model) apply(snap sessiondto.SnapshotOutput, err error) (Model, tea.Cmd) {
	prev := m.snap
	m.snap = snap
	m.status = ""
	if err != nil {
		m.status = err.Error()
	}

	cmds := []tea.Cmd{m.loop.Drain()}
	entered := snap.Phase != prev.Phase || snap.StageIndex != prev.StageIndex
	switch {
	case snap.AwaitingInput() && entered:
		m.capture.Reset()
		m.capture.Placeholder = snap.Prompt
		m.source = "self"
		cmds = append(cmds, m.capture.Focus())
	case snap.Idle() && !prev.Idle():
		m.title.Reset()
		m.capture.Blur()
		cmds = append(cmds, m.title.Focus())
	case !snap.AwaitingInput():
		m.capture.Blur()
	}
	if !snap.Idle() {
		m.title.Blur()
	}
	if snap.Finished() && !prev.Finished() && snap.Session != nil {
		finished := FinishedMsg{Session: *snap.Session, PersistErr: snap.PersistErr}
		cmds = append(cmds, func() tea.Msg { return finished })
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	w := max(m.width-8, 20)
	m.title.Width = min(w, 60)
	m.capture.SetWidth(w)
	m.capture.SetHeight(max(min(m.height-16, 12), 3))
	m.countdown.SetWidth(min(w-10, 50))
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	var sb strings.Builder
	if m.owner != "" {
		sb.WriteString(theme.Muted.Render("Hi "+m.owner) + "\n\n")
	}
	switch {
	case m.snap.Idle():
		sb.WriteString(theme.Title.Render("Enter the problem title:") + "\n\n")
		sb.WriteString(m.title.View() + "\n\n")
		sb.WriteString(theme.Muted.Render("enter: start session"))
	case m.snap.Running():
		sb.WriteString(m.renderStageHeader() + "\n\n")
		sb.WriteString(m.countdown.View(m.snap.Remaining, m.snap.Budget) + "\n\n")
		sb.WriteString(m.renderResults() + "\n")
		sb.WriteString(theme.Muted.Render("s / ctrl+s: stop stage"))
	case m.snap.AwaitingInput():
		sb.WriteString(m.renderStageHeader() + "\n\n")
		sb.WriteString(theme.Heading.Render(m.snap.Prompt) + "\n\n")
		sb.WriteString(m.capture.View() + "\n\n")
		if m.snap.SourcePrompt != "" {
			box := "[ ]"
			if m.source == "other" {
				box = "[x]"
			}
			sb.WriteString(fmt.Sprintf("%s %s  %s\n\n", box, m.snap.SourcePrompt, theme.Muted.Render("ctrl+o")))
		}
		sb.WriteString(theme.Muted.Render("ctrl+d: submit and continue"))
	case m.snap.Finished():
		sb.WriteString(m.renderSummary())
	}
	if m.status != "" {
		sb.WriteString("\n\n" + theme.Bad.Render(m.status))
	}
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(sb.String())
}

func (m Model) renderStageHeader() string {
	head := theme.Title.Render(fmt.Sprintf("%s %s", m.snap.Icon, m.snap.Stage))
	meta := theme.Muted.Render(fmt.Sprintf("  stage %d/%d · %s", m.snap.StageIndex+1, m.snap.StageCount, m.snap.Problem))
	return head + meta
}

func (m Model) renderResults() string {
	if len(m.snap.Results) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range m.snap.Results {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("✓ %s %s  %s", r.Icon, r.Stage, components.Clock(r.Seconds))) + "\n")
	}
	return sb.String()
}

func (m Model) renderSummary() string {
	s := m.snap.Session
	if s == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Good.Render("🎉 All stages complete!") + "\n\n")
	sb.WriteString(theme.Heading.Render(s.Problem) + "\n\n")
	for _, r := range s.Results {
		sb.WriteString(fmt.Sprintf("%s %-10s %s\n", r.Icon, r.Stage, components.Clock(r.Seconds)))
	}
	sb.WriteString(fmt.Sprintf("\n%s %s\n\n", theme.Muted.Render("Total"), components.Clock(s.TotalSeconds)))
	if m.snap.PersistErr != nil {
		sb.WriteString(theme.Bad.Render("Not saved: "+m.snap.PersistErr.Error()) + "\n")
		sb.WriteString(theme.Muted.Render("p: retry saving  r: start over without saving"))
	} else {
		sb.WriteString(theme.Muted.Render("Session saved.  r: new session"))
	}
	return sb.String()
}
