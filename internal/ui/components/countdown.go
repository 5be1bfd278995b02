package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"algotimer/internal/ui/theme"
)

// Countdown renders a stage timer as mm:ss plus a bar that drains as the
// budget is used.
type Countdown struct {
	bar progress.Model
}

func NewCountdown() Countdown {
	bar := progress.New(
		progress.WithGradient(string(theme.Red), string(theme.Green)),
		progress.WithoutPercentage(),
	)
	return Countdown{bar: bar}
}

func (c *Countdown) SetWidth(w int) {
	c.bar.Width = max(w, 10)
}

func (c Countdown) View(remaining, budget int) string {
	share := 0.0
	if budget > 0 {
		share = float64(max(remaining, 0)) / float64(budget)
	}
	clock := theme.Countdown(remaining, budget).Render(Clock(remaining))
	return clock + "  " + c.bar.ViewAs(share)
}

// Clock formats whole seconds as mm:ss, switching to h:mm:ss past an hour.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
