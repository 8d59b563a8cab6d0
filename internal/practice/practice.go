// Package practice grades one answer and feeds the verdict through the
// scheduler, mastery, unlock, streak and challenge engines.
package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/answer"
	"github.com/abhisek/linguo/internal/challenge"
	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/errs"
	"github.com/abhisek/linguo/internal/mastery"
	"github.com/abhisek/linguo/internal/skillgraph"
	"github.com/abhisek/linguo/internal/spacedrep"
	"github.com/abhisek/linguo/internal/store"
	"github.com/abhisek/linguo/internal/streak"
)

// ErrOutOfHearts is returned when a user with no hearts left submits an
// answer that could cost a heart.
var ErrOutOfHearts = errors.New("out of hearts")

// Submission is one answer to grade.
type Submission struct {
	UserID       int64
	QuestionID   string
	Answer       string
	ResponseTime time.Duration // zero when untimed
	Combo        int           // XP multiplier, values below 1 count as 1
}

// Outcome is everything one graded answer changed.
type Outcome struct {
	Correct     bool
	Revision    bool
	Question    store.Question
	Concept     store.ConceptProgress
	Transitions []mastery.StateTransition
	Unlocked    []string
	Streak      *streak.Result // nil for wrong answers
	Hearts      int
	Challenges  []challenge.Update
}

// Service is the call site that strings the engines together.
type Service struct {
	content       store.ContentRepo
	progress      store.ProgressRepo
	events        store.EventRepo
	scheduler     *spacedrep.Scheduler
	mastery       *mastery.Service
	unlocker      *skillgraph.Evaluator
	streak        *streak.Engine
	challenges    *challenge.Tracker
	clock         clock.Clock
	heartsEnabled bool
}

// NewService wires a practice service over one store.
func NewService(s *store.Store, clk clock.Clock, heartsEnabled bool) *Service {
	content, progress, stats := s.ContentRepo(), s.ProgressRepo(), s.StatsRepo()
	return &Service{
		content:       content,
		progress:      progress,
		events:        s.EventRepo(),
		scheduler:     spacedrep.NewScheduler(progress, clk),
		mastery:       mastery.NewService(content, progress, clk),
		unlocker:      skillgraph.NewEvaluator(content, progress, clk),
		streak:        streak.NewEngine(stats, clk),
		challenges:    challenge.NewTracker(s.ChallengeRepo(), stats, clk),
		clock:         clk,
		heartsEnabled: heartsEnabled,
	}
}

// SubmitAnswer grades a submission and applies its effects.
func (s *Service) SubmitAnswer(ctx context.Context, sub Submission) (*Outcome, error) {
	if err := errs.CheckUserID(sub.UserID); err != nil {
		return nil, err
	}
	if err := errs.CheckID("question_id", sub.QuestionID); err != nil {
		return nil, err
	}

	q, err := s.content.Question(ctx, sub.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if q == nil {
		return nil, errs.NotFound("question", sub.QuestionID)
	}
	concept, err := s.content.Concept(ctx, q.ConceptID)
	if err != nil {
		return nil, fmt.Errorf("load concept: %w", err)
	}
	if concept == nil {
		return nil, errs.NotFound("concept", q.ConceptID)
	}

	revision, err := s.isRevision(ctx, sub.UserID, concept.ID)
	if err != nil {
		return nil, err
	}
	stats, err := s.streak.RefreshHearts(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	if s.heartsEnabled && !revision && stats.Hearts <= 0 {
		return nil, ErrOutOfHearts
	}

	out := &Outcome{
		Correct:  answer.IsCorrect(sub.Answer, q.CorrectAnswer, answer.QuestionType(q.Type)),
		Revision: revision,
		Question: *q,
		Hearts:   stats.Hearts,
	}

	cp, err := s.scheduler.RecordAttempt(ctx, spacedrep.Attempt{
		UserID:       sub.UserID,
		ConceptID:    concept.ID,
		Correct:      out.Correct,
		ResponseTime: sub.ResponseTime,
	})
	if err != nil {
		return nil, err
	}
	out.Concept = *cp

	if out.Transitions, err = s.mastery.RecomputeForConcept(ctx, concept.ID, sub.UserID); err != nil {
		return nil, err
	}
	if out.Unlocked, err = s.unlocker.CheckAndUnlockSkills(ctx, sub.UserID, concept.LanguageCode); err != nil {
		return nil, err
	}
	// Newly unlocked skills pick up mastery from concepts already practiced.
	for _, id := range out.Unlocked {
		p, err := s.mastery.RecomputeSkillMastery(ctx, id, sub.UserID)
		if err != nil {
			return nil, err
		}
		if p.Status != store.SkillUnlocked {
			out.Transitions = append(out.Transitions, mastery.StateTransition{SkillID: id, From: store.SkillUnlocked, To: p.Status})
		}
	}

	if out.Correct {
		if out.Streak, err = s.streak.RecordCorrectAnswer(ctx, sub.UserID, true, sub.Combo); err != nil {
			return nil, err
		}
	} else {
		if out.Hearts, err = s.streak.RecordWrongAnswer(ctx, sub.UserID, s.heartsEnabled, revision); err != nil {
			return nil, err
		}
	}

	if out.Challenges, err = s.advanceChallenges(ctx, sub.UserID, out); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, sub, out)
	return out, nil
}

// isRevision reports whether the concept belongs to a skill the user has
// already mastered. Revision answers never cost hearts.
func (s *Service) isRevision(ctx context.Context, userID int64, conceptID string) (bool, error) {
	skillIDs, err := s.content.SkillsForConcept(ctx, conceptID)
	if err != nil {
		return false, fmt.Errorf("load concept skills: %w", err)
	}
	for _, id := range skillIDs {
		p, err := s.progress.SkillProgress(ctx, userID, id)
		if err != nil {
			return false, fmt.Errorf("load skill progress: %w", err)
		}
		if p != nil && p.Status == store.SkillMastered {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) advanceChallenges(ctx context.Context, userID int64, out *Outcome) ([]challenge.Update, error) {
	increments := map[string]int{
		challenge.TypeConceptsReviewed: 1,
		challenge.TypeSkillsUnlocked:   len(out.Unlocked),
	}
	if out.Correct {
		increments[challenge.TypeCorrectAnswers] = 1
		increments[challenge.TypeXPEarned] = out.Streak.XPGain
		if out.Streak.FirstCorrectToday {
			increments[challenge.TypeStreakDays] = 1
		}
	}

	var updates []challenge.Update
	for _, typ := range challenge.Types() {
		ups, err := s.challenges.UpdateProgress(ctx, userID, typ, increments[typ])
		if err != nil {
			return nil, err
		}
		updates = append(updates, ups...)
	}
	return updates, nil
}

// recordEvent appends to the answer history. History is best effort and
// never fails the answer.
func (s *Service) recordEvent(ctx context.Context, sub Submission, out *Outcome) {
	err := s.events.Append(ctx, store.AnswerEvent{
		UserID:     sub.UserID,
		QuestionID: out.Question.ID,
		ConceptID:  out.Question.ConceptID,
		Answer:     sub.Answer,
		Correct:    out.Correct,
		ResponseMs: sub.ResponseTime.Milliseconds(),
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		log.WithFields(log.Fields{
			"user_id":     sub.UserID,
			"question_id": out.Question.ID,
		}).WithError(err).Warn("failed to record answer event")
	}
}

// History returns the user's most recent graded answers, newest first.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]store.AnswerEvent, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, err
	}
	return s.events.Recent(ctx, userID, store.QueryOpts{Limit: limit})
}
