package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/crispterm/internal/ui/theme"
)

// TimerBar displays the remaining answer time as a horizontal bar that
// drains left to right and shifts color as the budget runs out.
type TimerBar struct {
	Label   string
	Percent float64 // fraction of time remaining, 0..1
	Width   int
}

// NewTimerBar creates a new timer bar.
func NewTimerBar(label string, percent float64, width int) TimerBar {
	return TimerBar{
		Label:   label,
		Percent: percent,
		Width:   width,
	}
}

// View renders the timer bar.
func (t TimerBar) View() string {
	var result string

	if t.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(t.Label) + "  "
	}

	barWidth := t.Width - lipgloss.Width(result)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * t.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	fill := theme.Secondary
	switch {
	case t.Percent <= 0.15:
		fill = theme.Error
	case t.Percent <= 0.4:
		fill = theme.Accent
	}

	filledStr := lipgloss.NewStyle().
		Background(fill).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	return result + filledStr + emptyStr
}
