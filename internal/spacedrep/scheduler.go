package spacedrep

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/errs"
	"github.com/abhisek/linguo/internal/store"
)

// Scheduler records graded attempts against per-user concept progress.
type Scheduler struct {
	progress store.ProgressRepo
	clock    clock.Clock
}

// NewScheduler creates a scheduler backed by the given progress repository.
func NewScheduler(progress store.ProgressRepo, clk clock.Clock) *Scheduler {
	return &Scheduler{progress: progress, clock: clk}
}

// Attempt is one graded answer for a concept. ResponseTime is zero when the
// answer was not timed.
type Attempt struct {
	UserID       int64
	ConceptID    string
	Correct      bool
	ResponseTime time.Duration
}

// RecordAttempt applies one SM-2 step to the user's concept progress,
// creating the row on first attempt, and returns the stored result.
func (s *Scheduler) RecordAttempt(ctx context.Context, a Attempt) (*store.ConceptProgress, error) {
	if err := errs.CheckUserID(a.UserID); err != nil {
		return nil, err
	}
	if err := errs.CheckID("concept_id", a.ConceptID); err != nil {
		return nil, err
	}

	prev, err := s.progress.ConceptProgress(ctx, a.UserID, a.ConceptID)
	if err != nil {
		return nil, fmt.Errorf("load concept progress: %w", err)
	}

	now := s.clock.Now()
	p := Apply(prev, a, now)
	if err := s.progress.UpsertConceptProgress(ctx, &p); err != nil {
		return nil, err
	}

	prevStatus := store.ConceptNew
	if prev != nil {
		prevStatus = prev.Status
	}
	if prevStatus != p.Status {
		log.WithFields(log.Fields{
			"user_id":    a.UserID,
			"concept_id": a.ConceptID,
			"from":       prevStatus,
			"to":         p.Status,
			"mastery":    p.Mastery,
		}).Debug("concept status changed")
	}
	return &p, nil
}

// Apply computes the progress row that results from one attempt. prev may be
// nil for a first attempt.
func Apply(prev *store.ConceptProgress, a Attempt, now time.Time) store.ConceptProgress {
	var p store.ConceptProgress
	st := NewState()
	if prev != nil {
		p = *prev
		st = StateOf(*prev)
	}
	p.UserID = a.UserID
	p.ConceptID = a.ConceptID

	st = Update(st, QualityFromAnswer(a.Correct, a.ResponseTime))
	p.EasinessFactor = st.EasinessFactor
	p.IntervalDays = st.IntervalDays
	p.Repetitions = st.Repetitions

	p.TotalAttempts++
	if a.Correct {
		p.CorrectAttempts++
	}
	p.Mastery = ConceptMastery(p.TotalAttempts, p.CorrectAttempts, p.IntervalDays)
	p.Status = StatusForMastery(p.Mastery)
	p.LastReviewedAt = now
	p.NextReviewAt = now.AddDate(0, 0, p.IntervalDays)
	return p
}

// DueConcept is a concept whose review date has passed.
type DueConcept struct {
	store.ConceptProgress
	OverdueDays float64
	Status      ReviewStatus
}

// DueConcepts returns the user's concepts in a language that are due for
// review, most overdue first.
func (s *Scheduler) DueConcepts(ctx context.Context, userID int64, languageCode string) ([]DueConcept, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, err
	}
	if err := errs.CheckID("language", languageCode); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	rows, err := s.progress.DueConcepts(ctx, userID, languageCode, now)
	if err != nil {
		return nil, fmt.Errorf("load due concepts: %w", err)
	}

	out := make([]DueConcept, 0, len(rows))
	for _, p := range rows {
		st := StateOf(p)
		out = append(out, DueConcept{
			ConceptProgress: p,
			OverdueDays:     st.OverdueDays(now),
			Status:          st.Status(now),
		})
	}
	return out, nil
}
