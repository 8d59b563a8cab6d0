package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/answer"
	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/errs"
	"github.com/abhisek/linguo/internal/random"
	"github.com/abhisek/linguo/internal/skillgraph"
	"github.com/abhisek/linguo/internal/store"
)

// ErrSessionCompleted is returned when answering or completing a session
// that has already finished.
var ErrSessionCompleted = errors.New("placement session already completed")

// AnswerResult is the outcome of one placement answer.
type AnswerResult struct {
	Correct    bool
	Transition Transition
	Session    *store.PlacementSession

	// Completion is set when this answer ended the session.
	Completion *Completion
}

// Completion is the persisted result of a finished session.
type Completion struct {
	Level    skillgraph.Level
	Unlocked []string
}

// Service drives placement sessions against the datastore.
type Service struct {
	sessions store.PlacementRepo
	content  store.ContentRepo
	progress store.ProgressRepo
	clock    clock.Clock
	rand     random.Source
}

// NewService creates a placement service.
func NewService(sessions store.PlacementRepo, content store.ContentRepo, progress store.ProgressRepo, clk clock.Clock, src random.Source) *Service {
	return &Service{sessions: sessions, content: content, progress: progress, clock: clk, rand: src}
}

// Start opens a new session for the user in a language.
func (s *Service) Start(ctx context.Context, userID int64, languageCode string) (*store.PlacementSession, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, err
	}
	if err := errs.CheckID("language", languageCode); err != nil {
		return nil, err
	}

	lang, err := s.content.Language(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("load language: %w", err)
	}
	if lang == nil {
		return nil, errs.NotFound("language", languageCode)
	}

	sess := NewSession(uuid.NewString(), userID, languageCode, s.clock.Now())
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"session_id": sess.ID,
		"user_id":    userID,
		"language":   languageCode,
	}).Debug("placement session started")
	return sess, nil
}

// Session loads a session by ID.
func (s *Service) Session(ctx context.Context, sessionID string) (*store.PlacementSession, error) {
	if err := errs.CheckID("session_id", sessionID); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load placement session: %w", err)
	}
	if sess == nil {
		return nil, errs.NotFound("placement session", sessionID)
	}
	return sess, nil
}

// NextQuestion returns the next question to ask, or nil when the session is
// terminal or has run out of questions.
func (s *Service) NextQuestion(ctx context.Context, sessionID string) (*store.Question, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if IsTerminal(sess) {
		return nil, nil
	}
	pool, err := s.content.Questions(ctx, sess.LanguageCode)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return SelectQuestion(s.rand, pool, sess), nil
}

// Answer grades an answer, advances the state machine and persists it. The
// session completes automatically once it reaches MaxQuestions answers.
func (s *Service) Answer(ctx context.Context, sessionID, questionID, userAnswer string) (*AnswerResult, error) {
	if err := errs.CheckID("question_id", questionID); err != nil {
		return nil, err
	}
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if IsTerminal(sess) {
		return nil, ErrSessionCompleted
	}

	q, err := s.content.Question(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if q == nil {
		return nil, errs.NotFound("question", questionID)
	}
	if sess.Asked[q.ID] {
		return nil, errs.Invalid("question_id", fmt.Sprintf("question %q already answered in this session", q.ID))
	}
	concept, err := s.content.Concept(ctx, q.ConceptID)
	if err != nil {
		return nil, fmt.Errorf("load concept: %w", err)
	}
	if concept == nil || concept.LanguageCode != sess.LanguageCode {
		return nil, errs.Invalid("question_id", fmt.Sprintf("question %q is not a %s question", q.ID, sess.LanguageCode))
	}

	correct := answer.IsCorrect(userAnswer, q.CorrectAnswer, answer.QuestionType(q.Type))
	tr := Step(sess, correct)
	sess.Asked[q.ID] = true

	if err := s.sessions.RecordAnswer(ctx, store.PlacementAnswer{
		SessionID:  sess.ID,
		QuestionID: q.ID,
		Correct:    correct,
		AnsweredAt: s.clock.Now(),
	}); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	if tr.Moved() {
		log.WithFields(log.Fields{
			"session_id": sess.ID,
			"from":       skillgraph.LevelAt(tr.FromLevel),
			"to":         skillgraph.LevelAt(tr.ToLevel),
		}).Debug("placement level changed")
	}

	res := &AnswerResult{Correct: correct, Transition: tr, Session: sess}
	if tr.Terminal {
		c, err := s.complete(ctx, sess)
		if err != nil {
			return nil, err
		}
		res.Completion = c
	}
	return res, nil
}

// Complete finishes a session: it persists the estimated level and unlocks
// every locked skill at or below it.
func (s *Service) Complete(ctx context.Context, sessionID string) (*Completion, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}
	return s.complete(ctx, sess)
}

func (s *Service) complete(ctx context.Context, sess *store.PlacementSession) (*Completion, error) {
	now := s.clock.Now()
	sess.CompletedAt = &now
	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	level := EstimatedLevel(sess)
	if err := s.sessions.SaveUserLanguage(ctx, store.UserLanguage{
		UserID:       sess.UserID,
		LanguageCode: sess.LanguageCode,
		CEFRLevel:    string(level),
		PlacedAt:     &now,
	}); err != nil {
		return nil, err
	}

	unlocked, err := s.unlockUpTo(ctx, sess.UserID, sess.LanguageCode, sess.LevelIndex)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"session_id": sess.ID,
		"user_id":    sess.UserID,
		"level":      level,
		"questions":  sess.TotalQuestions,
		"unlocked":   len(unlocked),
	}).Info("placement completed")
	return &Completion{Level: level, Unlocked: unlocked}, nil
}

func (s *Service) unlockUpTo(ctx context.Context, userID int64, languageCode string, levelIndex int) ([]string, error) {
	skills, err := s.content.Skills(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}
	edges, err := s.content.Prerequisites(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("load prerequisites: %w", err)
	}
	progress, err := s.progress.SkillProgressFor(ctx, userID, languageCode)
	if err != nil {
		return nil, fmt.Errorf("load skill progress: %w", err)
	}

	now := s.clock.Now()
	var unlocked []string
	for _, sk := range skillgraph.NewGraph(skills, edges).AtOrBelow(levelIndex) {
		next := store.SkillProgress{UserID: userID, SkillID: sk.ID}
		if p, ok := progress[sk.ID]; ok {
			if p.Status != store.SkillLocked {
				continue
			}
			next = p
		}
		next.Status = store.SkillUnlocked
		next.Mastery = 0
		if next.UnlockedAt == nil {
			t := now
			next.UnlockedAt = &t
		}
		if err := s.progress.UpsertSkillProgress(ctx, &next); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, sk.ID)
	}
	return unlocked, nil
}
