// Package setup is the first-run form that collects the owner's name and
// the per-stage time budgets.
package setup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"algotimer/internal/ui/theme"
)

// ErrCancelled is returned by Run when the user leaves the form.
var ErrCancelled = errors.New("setup cancelled")

// Entry is one form field. Numeric entries only accept whole numbers.
type Entry struct {
	Key     string
	Label   string
	Help    string
	Value   string
	Numeric bool
}

type Model struct {
	entries   []Entry
	inputs    []textinput.Model
	focus     int
	problem   string
	err       string
	done      bool
	cancelled bool
	width     int
}

// New builds the form. problem, when set, explains why the previous
// submission was rejected.
func New(entries []Entry, problem string) Model {
	inputs := make([]textinput.Model, len(entries))
	for i, e := range entries {
		ti := textinput.New()
		ti.SetValue(e.Value)
		ti.CharLimit = 64
		ti.Width = 32
		ti.Prompt = "› "
		if e.Numeric {
			ti.Placeholder = "seconds"
		}
		inputs[i] = ti
	}
	m := Model{entries: entries, inputs: inputs, problem: problem}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "tab", "down":
			return m, m.move(1)
		case "shift+tab", "up":
			return m, m.move(-1)
		case "enter":
			if m.focus < len(m.inputs)-1 {
				return m, m.move(1)
			}
			if err := m.check(); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		}
	}
	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) move(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

func (m *Model) check() error {
	for i, e := range m.entries {
		if !e.Numeric {
			continue
		}
		if _, err := strconv.Atoi(strings.TrimSpace(m.inputs[i].Value())); err != nil {
			m.inputs[m.focus].Blur()
			m.focus = i
			m.inputs[i].Focus()
			return fmt.Errorf("%s must be a whole number of seconds", e.Label)
		}
	}
	return nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Algorithm Timer Setup") + "\n")
	sb.WriteString(theme.Muted.Render("tab/↑↓ move  enter next/save  esc cancel") + "\n\n")
	if m.problem != "" {
		sb.WriteString(theme.Warn.Render(m.problem) + "\n\n")
	}
	for i, e := range m.entries {
		label := e.Label
		if i == m.focus {
			label = theme.Heading.Render(label)
		}
		sb.WriteString(label + "\n")
		sb.WriteString(m.inputs[i].View() + "\n")
		sb.WriteString(theme.Muted.Render(e.Help) + "\n\n")
	}
	if m.err != "" {
		sb.WriteString(theme.Bad.Render(m.err) + "\n")
	}
	w := m.width
	if w < 40 {
		w = 72
	}
	return lipgloss.NewStyle().Padding(1, 2).Width(w).Render(sb.String())
}

// Values returns the trimmed field values in entry order.
func (m Model) Values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

func (m Model) Done() bool      { return m.done }
func (m Model) Cancelled() bool { return m.cancelled }

// Run shows the form on the terminal until it is saved or cancelled.
func Run(ctx context.Context, entries []Entry, problem string) ([]string, error) {
	final, err := tea.NewProgram(New(entries, problem), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("run setup form: %w", err)
	}
	m, ok := final.(Model)
	if !ok || !m.done {
		return nil, ErrCancelled
	}
	return m.Values(), nil
}
