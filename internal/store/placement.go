package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// PlacementStore implements PlacementRepo.
type PlacementStore struct {
	conn
}

var _ PlacementRepo = (*PlacementStore)(nil)

var placementSessionColumns = []string{
	"id", "user_id", "language_code", "level_index", "consecutive_correct",
	"consecutive_wrong", "total_questions", "correct_count", "started_at",
	"completed_at",
}

func (r *PlacementStore) CreateSession(ctx context.Context, s *PlacementSession) error {
	q := r.b().Insert(tPlacementSessions).
		Columns(placementSessionColumns...).
		Values(s.ID, s.UserID, s.LanguageCode, s.LevelIndex, s.ConsecutiveCorrect,
			s.ConsecutiveWrong, s.TotalQuestions, s.CorrectCount, utc(s.StartedAt),
			nullTime(s.CompletedAt))
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("create placement session: %w", err)
	}
	return nil
}

// Session loads a session together with its asked question set.
func (r *PlacementStore) Session(ctx context.Context, id string) (*PlacementSession, error) {
	q := r.b().Select(placementSessionColumns...).
		From(r.b().Table(tPlacementSessions)).
		Where(entsql.EQ("id", id))

	var (
		s         PlacementSession
		completed sql.NullTime
	)
	err := r.queryRow(ctx, q).Scan(&s.ID, &s.UserID, &s.LanguageCode, &s.LevelIndex,
		&s.ConsecutiveCorrect, &s.ConsecutiveWrong, &s.TotalQuestions, &s.CorrectCount,
		&s.StartedAt, &completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query placement session: %w", err)
	}
	s.StartedAt = s.StartedAt.UTC()
	s.CompletedAt = timePtr(completed)

	aq := r.b().Select("question_id").
		From(r.b().Table(tPlacementAnswers)).
		Where(entsql.EQ("session_id", id))
	rows, err := r.query(ctx, aq)
	if err != nil {
		return nil, fmt.Errorf("query placement answers: %w", err)
	}
	defer rows.Close()

	s.Asked = make(map[string]bool)
	for rows.Next() {
		var qid string
		if err := rows.Scan(&qid); err != nil {
			return nil, fmt.Errorf("scan placement answer: %w", err)
		}
		s.Asked[qid] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSession persists the counters, level and completion time.
func (r *PlacementStore) SaveSession(ctx context.Context, s *PlacementSession) error {
	u := r.b().Update(tPlacementSessions).
		Set("level_index", s.LevelIndex).
		Set("consecutive_correct", s.ConsecutiveCorrect).
		Set("consecutive_wrong", s.ConsecutiveWrong).
		Set("total_questions", s.TotalQuestions).
		Set("correct_count", s.CorrectCount).
		Where(entsql.EQ("id", s.ID))
	if s.CompletedAt != nil {
		u.Set("completed_at", utc(*s.CompletedAt))
	}
	if _, err := r.exec(ctx, u); err != nil {
		return fmt.Errorf("save placement session: %w", err)
	}
	return nil
}

// RecordAnswer adds a question to the session's asked set. Re-recording the
// same question is ignored.
func (r *PlacementStore) RecordAnswer(ctx context.Context, a PlacementAnswer) error {
	q := r.b().Insert(tPlacementAnswers).
		Columns("session_id", "question_id", "correct", "answered_at").
		Values(a.SessionID, a.QuestionID, a.Correct, utc(a.AnsweredAt)).
		OnConflict(entsql.ConflictColumns("session_id", "question_id"), entsql.DoNothing())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("record placement answer: %w", err)
	}
	return nil
}

func (r *PlacementStore) UserLanguage(ctx context.Context, userID int64, languageCode string) (*UserLanguage, error) {
	q := r.b().Select("user_id", "language_code", "cefr_level", "placed_at").
		From(r.b().Table(tUserLanguages)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("language_code", languageCode)))

	var (
		ul     UserLanguage
		placed sql.NullTime
	)
	if err := r.queryRow(ctx, q).Scan(&ul.UserID, &ul.LanguageCode, &ul.CEFRLevel, &placed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user language: %w", err)
	}
	ul.PlacedAt = timePtr(placed)
	return &ul, nil
}

func (r *PlacementStore) SaveUserLanguage(ctx context.Context, ul UserLanguage) error {
	q := r.b().Insert(tUserLanguages).
		Columns("user_id", "language_code", "cefr_level", "placed_at").
		Values(ul.UserID, ul.LanguageCode, ul.CEFRLevel, nullTime(ul.PlacedAt)).
		OnConflict(entsql.ConflictColumns("user_id", "language_code"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("save user language: %w", err)
	}
	return nil
}
