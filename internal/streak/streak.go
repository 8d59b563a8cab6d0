package streak

import (
	"time"

	"github.com/abhisek/linguo/internal/clock"
)

// Milestones are the streak lengths that are celebrated when first reached.
var Milestones = []int{7, 30, 50, 100, 365}

// NextStreak advances the daily streak for an activity at now. lastActivity
// is nil when the user has never been active. freezes is the number of
// streak freezes available; a single missed day consumes one.
func NextStreak(current int, lastActivity *time.Time, now time.Time, freezes int) (next int, freezeUsed bool) {
	if lastActivity == nil {
		return 1, false
	}
	gap := clock.DaysBetween(*lastActivity, now)
	switch {
	case gap <= 0:
		if current == 0 {
			return 1, false
		}
		return current, false
	case gap == 1:
		return current + 1, false
	case gap == 2 && freezes > 0:
		return current + 1, true
	default:
		return 1, false
	}
}

// MilestoneReached returns the milestone crossed when the streak moves from
// prev to next, or 0 when none was crossed.
func MilestoneReached(prev, next int) int {
	for _, m := range Milestones {
		if prev < m && next >= m {
			return m
		}
	}
	return 0
}

// NextMilestone returns the next milestone above the current streak length.
func NextMilestone(current int) int {
	for _, m := range Milestones {
		if m > current {
			return m
		}
	}
	// Beyond the last milestone, every full year counts.
	return ((current / 365) + 1) * 365
}
