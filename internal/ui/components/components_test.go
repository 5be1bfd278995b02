package components_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"algotimer/internal/ui/components"
)

func TestClock(t *testing.T) {
	t.Parallel()
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{-4, "00:00"},
		{59, "00:59"},
		{300, "05:00"},
		{3725, "1:02:05"},
	}
	for _, tc := range cases {
		if got := components.Clock(tc.seconds); got != tc.want {
			t.Fatalf("Clock(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestPaletteFiltersHintsAndSubmits(t *testing.T) {
	t.Parallel()
	p := components.NewPalette([]string{"session:stop", "session:restart", "history:reload"})
	if p.Visible() {
		t.Fatalf("palette starts hidden")
	}
	p.Open()
	for _, r := range "sess" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if got := p.Matching(); len(got) != 2 || got[0] != "session:stop" {
		t.Fatalf("unexpected matches: %v", got)
	}
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Visible() || cmd == nil {
		t.Fatalf("enter should close the palette and emit a command")
	}
	msg, ok := cmd().(components.PaletteSubmitMsg)
	if !ok || msg.Input != "sess" {
		t.Fatalf("unexpected submit message: %#v", msg)
	}
}
