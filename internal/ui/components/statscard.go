package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguo/internal/store"
	"github.com/abhisek/linguo/internal/streak"
	"github.com/abhisek/linguo/internal/ui/theme"
)

// StatsCard renders a user's hearts, level and streak.
type StatsCard struct {
	Stats store.UserStats
	Width int
}

// NewStatsCard creates a stats card of the given width.
func NewStatsCard(s store.UserStats, width int) StatsCard {
	return StatsCard{Stats: s, Width: width}
}

// View renders the card.
func (c StatsCard) View() string {
	s := c.Stats
	inner := max(20, c.Width-6)

	level := streak.Level(s.XPTotal)
	xpBar := ProgressBar{
		Label:   fmt.Sprintf("Level %d", level),
		Percent: streak.LevelProgress(s.XPTotal),
		Width:   inner,
		Fill:    theme.Primary,
	}

	row := func(label, value string) string {
		return theme.Label.Render(label) + "  " + value
	}

	streakText := theme.Streak.Render(fmt.Sprintf("%d day", s.CurrentStreak))
	if s.CurrentStreak != 1 {
		streakText = theme.Streak.Render(fmt.Sprintf("%d days", s.CurrentStreak))
	}
	next := streak.NextMilestone(s.CurrentStreak)

	lines := []string{
		theme.Title.Render(fmt.Sprintf("User %d", s.UserID)),
		"",
		row("Hearts", HeartsView(s.Hearts, store.MaxHearts)),
		xpBar.View(),
		row("XP", theme.Body.Render(fmt.Sprintf("%d (%d to level %d)", s.XPTotal, streak.XPPerLevel-s.XPTotal%streak.XPPerLevel, level+1))),
		row("Streak", streakText+theme.Hint.Render(fmt.Sprintf("  next milestone %d", next))),
		row("Longest", theme.Body.Render(fmt.Sprintf("%d days", s.LongestStreak))),
		row("Freezes", theme.Body.Render(fmt.Sprintf("%d", s.StreakFreezes))),
		row("Correct", theme.Body.Render(fmt.Sprintf("%d answers", s.TotalCorrectAnswers))),
	}

	return theme.Card.Width(c.Width).Render(strings.Join(lines, "\n"))
}

// ChallengeRow renders one weekly challenge with its progress bar.
func ChallengeRow(title string, progress, target, xpReward int, completed bool, width int) string {
	pct := 0.0
	if target > 0 {
		pct = min(1, float64(progress)/float64(target))
	}
	status := theme.Hint.Render(fmt.Sprintf("%d/%d", min(progress, target), target))
	if completed {
		status = theme.Correct.Render("done")
	}
	head := theme.Body.Render(title) + "  " + theme.Streak.Render(fmt.Sprintf("+%d XP", xpReward))
	bar := ProgressBar{Percent: pct, Width: max(10, width-lipgloss.Width(status)-2)}
	return head + "\n" + bar.View() + "  " + status
}
