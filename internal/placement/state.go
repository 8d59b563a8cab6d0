// Package placement runs the adaptive quiz that estimates a learner's CEFR
// level in a language and seeds their initial skill unlocks.
package placement

import (
	"time"

	"github.com/abhisek/linguo/internal/skillgraph"
	"github.com/abhisek/linguo/internal/store"
)

const (
	// StartLevel is the level index a new session starts at (A2).
	StartLevel = 1

	// MaxQuestions ends a session once this many answers are recorded.
	MaxQuestions = 25

	// LevelUpAfter consecutive correct answers raise the level by one.
	LevelUpAfter = 3

	// LevelDownAfter consecutive wrong answers lower the level by one.
	LevelDownAfter = 2

	maxLevel = 5
)

// Transition describes the effect of one answer on a session.
type Transition struct {
	FromLevel int
	ToLevel   int
	Terminal  bool
}

// Moved reports whether the answer changed the estimated level.
func (t Transition) Moved() bool {
	return t.FromLevel != t.ToLevel
}

// NewSession returns the initial state for a session.
func NewSession(id string, userID int64, languageCode string, now time.Time) *store.PlacementSession {
	return &store.PlacementSession{
		ID:           id,
		UserID:       userID,
		LanguageCode: languageCode,
		LevelIndex:   StartLevel,
		StartedAt:    now,
		Asked:        make(map[string]bool),
	}
}

// Step applies one graded answer to s in place.
func Step(s *store.PlacementSession, correct bool) Transition {
	tr := Transition{FromLevel: s.LevelIndex}

	s.TotalQuestions++
	if correct {
		s.CorrectCount++
		s.ConsecutiveCorrect++
		s.ConsecutiveWrong = 0
	} else {
		s.ConsecutiveWrong++
		s.ConsecutiveCorrect = 0
	}

	switch {
	case s.ConsecutiveCorrect >= LevelUpAfter:
		s.LevelIndex = min(maxLevel, s.LevelIndex+1)
		s.ConsecutiveCorrect, s.ConsecutiveWrong = 0, 0
	case s.ConsecutiveWrong >= LevelDownAfter:
		s.LevelIndex = max(0, s.LevelIndex-1)
		s.ConsecutiveCorrect, s.ConsecutiveWrong = 0, 0
	}

	tr.ToLevel = s.LevelIndex
	tr.Terminal = IsTerminal(s)
	return tr
}

// IsTerminal reports whether the session accepts no more answers.
func IsTerminal(s *store.PlacementSession) bool {
	return s.CompletedAt != nil || s.TotalQuestions >= MaxQuestions
}

// EstimatedLevel returns the session's current CEFR estimate.
func EstimatedLevel(s *store.PlacementSession) skillgraph.Level {
	return skillgraph.LevelAt(s.LevelIndex)
}
