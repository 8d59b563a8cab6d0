// Package theme holds the terminal palette and shared lipgloss styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#0EA5E9")
	Secondary = lipgloss.Color("#14B8A6")
	Flame     = lipgloss.Color("#FB923C")
	Heart     = lipgloss.Color("#E11D48")
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#F87171")
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#64748B")
	Border    = lipgloss.Color("#475569")
)

var (
	Title    = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Label    = lipgloss.NewStyle().Foreground(TextDim).Width(10)

	// Card frames the stats card and quiz prompts.
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Hearts    = lipgloss.NewStyle().Foreground(Heart)
	Streak    = lipgloss.NewStyle().Foreground(Flame).Bold(true)
)

// StatusColors maps a stored skill status to its listing style.
var StatusColors = map[string]lipgloss.Style{
	"locked":      Subtitle,
	"unlocked":    Body,
	"in_progress": lipgloss.NewStyle().Foreground(Flame),
	"mastered":    Correct,
}
