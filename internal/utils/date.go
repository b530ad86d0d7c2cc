package utils

import "fmt"

// FormatMinutes renders a minute count as "2h 05m" for operator-facing views.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := minutes / 60
	rest := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", rest)
	}
	return fmt.Sprintf("%dh %02dm", hours, rest)
}
