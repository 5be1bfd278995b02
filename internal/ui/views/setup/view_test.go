package setup_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"algotimer/internal/ui/views/setup"
)

func typeText(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m tea.Model, k tea.KeyType) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: k})
	return m
}

func entries() []setup.Entry {
	return []setup.Entry{
		{Key: "name", Label: "Your Name"},
		{Key: "read_time", Label: "Max Reading Time (sec)", Value: "300", Numeric: true},
	}
}

func TestSetupCollectsValues(t *testing.T) {
	t.Parallel()
	var m tea.Model = setup.New(entries(), "")
	m = typeText(m, "Ada")
	m = press(m, tea.KeyEnter)
	m = press(m, tea.KeyBackspace)
	m = typeText(m, "5")
	m = press(m, tea.KeyEnter)

	form := m.(setup.Model)
	if !form.Done() || form.Cancelled() {
		t.Fatalf("form should be done")
	}
	values := form.Values()
	if len(values) != 2 || values[0] != "Ada" || values[1] != "305" {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestSetupRejectsNonNumericDuration(t *testing.T) {
	t.Parallel()
	var m tea.Model = setup.New(entries(), "")
	m = press(m, tea.KeyEnter)
	m = typeText(m, "x")
	m = press(m, tea.KeyEnter)
	if form := m.(setup.Model); form.Done() {
		t.Fatalf("non-numeric duration must not be accepted")
	}
}

func TestSetupEscCancels(t *testing.T) {
	t.Parallel()
	var m tea.Model = setup.New(entries(), "")
	m = press(m, tea.KeyEsc)
	if form := m.(setup.Model); !form.Cancelled() || form.Done() {
		t.Fatalf("esc should cancel")
	}
}
