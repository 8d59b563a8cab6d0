// Package layout frames interactive screens with a status header and a
// key hint footer.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguo/internal/ui/theme"
)

// Minimum terminal size for the interactive screens.
const (
	MinWidth  = 60
	MinHeight = 16
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

var (
	bar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	brand   = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	keyName = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	keyDesc = lipgloss.NewStyle().Foreground(theme.TextDim)
)

// IsTooSmall reports whether the terminal is below MinWidth x MinHeight.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal too small (%dx%d).\nLinguo needs at least %dx%d.",
		width, height, MinWidth, MinHeight)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

// RenderHeader draws the brand on the left, the screen title in the middle
// and the learner's hearts and streak on the right.
func RenderHeader(title string, hearts, streak int, width int) string {
	left := brand.Render("Linguo")
	mid := theme.Body.Render(title)
	right := theme.Hearts.Render(fmt.Sprintf("♥ %d", hearts)) + "  " +
		theme.Streak.Render(fmt.Sprintf("🔥 %d", streak))

	// Border and padding take four columns.
	inner := max(0, width-4)
	used := lipgloss.Width(left) + lipgloss.Width(mid) + lipgloss.Width(right)
	gap := max(2, inner-used)
	leftGap := gap / 2

	line := left + strings.Repeat(" ", leftGap) + mid + strings.Repeat(" ", gap-leftGap) + right
	return bar.Width(width).Render(line)
}

// RenderFooter draws the key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyName.Render(h.Key) + " " + keyDesc.Render(h.Description)
	}
	return bar.Width(width).Render(strings.Join(parts, "  ·  "))
}

// RenderFrame stacks header, content and footer, giving the content all
// rows the header and footer leave.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := lipgloss.NewStyle().Width(width).Height(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
