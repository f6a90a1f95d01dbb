package tui

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/serene/internal/dashboard"
)

// renderWeek draws one horizontal bar per day, scaled against the number
// of defined habits.
func renderWeek(week []dashboard.DayCount, habits, width int) string {
	if width < 1 {
		width = 1
	}
	var b strings.Builder
	for _, day := range week {
		filled := 0
		if habits > 0 {
			filled = min(day.Completed*width/habits, width)
		}
		fmt.Fprintf(&b, "%-7s %s%s %d\n",
			day.Label,
			barStyle.Render(strings.Repeat("█", filled)),
			dimStyle.Render(strings.Repeat("░", width-filled)),
			day.Completed,
		)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
