package spacedrep

import (
	"time"

	"github.com/abhisek/linguo/internal/store"
)

// State holds the SM-2 scheduling state for a single concept.
type State struct {
	EasinessFactor float64
	IntervalDays   int
	Repetitions    int
	NextReviewAt   time.Time
}

// NewState is the state of a concept that has never been reviewed.
func NewState() State {
	return State{EasinessFactor: DefaultEasinessFactor, IntervalDays: 1}
}

// StateOf extracts the scheduling state from a stored progress row.
func StateOf(p store.ConceptProgress) State {
	return State{
		EasinessFactor: p.EasinessFactor,
		IntervalDays:   p.IntervalDays,
		Repetitions:    p.Repetitions,
		NextReviewAt:   p.NextReviewAt,
	}
}

// IsDue returns true if the concept is due for review (at or past the review date).
func (s State) IsDue(now time.Time) bool {
	return !now.Before(s.NextReviewAt)
}

// OverdueDays returns how many days past due the concept is. Returns 0 if not yet due.
func (s State) OverdueDays(now time.Time) float64 {
	if now.Before(s.NextReviewAt) {
		return 0
	}
	return now.Sub(s.NextReviewAt).Hours() / 24.0
}

// IsLapsed returns true once the concept is overdue by more than half its
// interval.
func (s State) IsLapsed(now time.Time) bool {
	if !s.IsDue(now) {
		return false
	}
	graceHours := float64(s.IntervalDays) * 0.5 * 24.0
	threshold := s.NextReviewAt.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// ReviewStatus describes a concept's review status for display.
type ReviewStatus string

const (
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// Status returns the review status for UI display.
func (s State) Status(now time.Time) ReviewStatus {
	if s.IsLapsed(now) {
		return ReviewOverdue
	}
	if s.IsDue(now) {
		return ReviewDue
	}
	return ReviewNotDue
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (s State) DaysUntilReview(now time.Time) int {
	if s.IsDue(now) {
		return 0
	}
	return int(s.NextReviewAt.Sub(now).Hours()/24.0) + 1
}
