package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// ProgressStore implements ProgressRepo.
type ProgressStore struct {
	conn
}

var _ ProgressRepo = (*ProgressStore)(nil)

var conceptProgressColumns = []string{
	"user_id", "concept_id", "status", "mastery", "easiness_factor",
	"interval_days", "repetitions", "total_attempts", "correct_attempts",
	"next_review_at", "last_reviewed_at",
}

func scanConceptProgress(sc interface{ Scan(...any) error }) (ConceptProgress, error) {
	var p ConceptProgress
	err := sc.Scan(&p.UserID, &p.ConceptID, &p.Status, &p.Mastery, &p.EasinessFactor,
		&p.IntervalDays, &p.Repetitions, &p.TotalAttempts, &p.CorrectAttempts,
		&p.NextReviewAt, &p.LastReviewedAt)
	p.NextReviewAt = p.NextReviewAt.UTC()
	p.LastReviewedAt = p.LastReviewedAt.UTC()
	return p, err
}

func (r *ProgressStore) ConceptProgress(ctx context.Context, userID int64, conceptID string) (*ConceptProgress, error) {
	q := r.b().Select(conceptProgressColumns...).
		From(r.b().Table(tConceptProgress)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("concept_id", conceptID)))
	p, err := scanConceptProgress(r.queryRow(ctx, q))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query concept progress: %w", err)
	}
	return &p, nil
}

func (r *ProgressStore) ConceptProgressFor(ctx context.Context, userID int64, conceptIDs []string) (map[string]ConceptProgress, error) {
	out := make(map[string]ConceptProgress, len(conceptIDs))
	if len(conceptIDs) == 0 {
		return out, nil
	}
	q := r.b().Select(conceptProgressColumns...).
		From(r.b().Table(tConceptProgress)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.In("concept_id", anySlice(conceptIDs)...)))
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query concept progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanConceptProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan concept progress: %w", err)
		}
		out[p.ConceptID] = p
	}
	return out, rows.Err()
}

func (r *ProgressStore) UpsertConceptProgress(ctx context.Context, p *ConceptProgress) error {
	q := r.b().Insert(tConceptProgress).
		Columns(conceptProgressColumns...).
		Values(p.UserID, p.ConceptID, p.Status, p.Mastery, p.EasinessFactor,
			p.IntervalDays, p.Repetitions, p.TotalAttempts, p.CorrectAttempts,
			utc(p.NextReviewAt), utc(p.LastReviewedAt)).
		OnConflict(entsql.ConflictColumns("user_id", "concept_id"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert concept progress: %w", err)
	}
	return nil
}

func (r *ProgressStore) DueConcepts(ctx context.Context, userID int64, languageCode string, now time.Time) ([]ConceptProgress, error) {
	p := r.b().Table(tConceptProgress)
	c := r.b().Table(tConcepts)
	cols := make([]string, len(conceptProgressColumns))
	for i, col := range conceptProgressColumns {
		cols[i] = p.C(col)
	}
	q := r.b().Select(cols...).
		From(p).
		Join(c).On(p.C("concept_id"), c.C("id")).
		Where(entsql.And(
			entsql.EQ(p.C("user_id"), userID),
			entsql.EQ(c.C("language_code"), languageCode),
			entsql.LTE(p.C("next_review_at"), utc(now)),
		)).
		OrderBy(p.C("next_review_at"), p.C("concept_id"))
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query due concepts: %w", err)
	}
	defer rows.Close()

	var out []ConceptProgress
	for rows.Next() {
		cp, err := scanConceptProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due concept: %w", err)
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

var skillProgressColumns = []string{"user_id", "skill_id", "status", "mastery", "unlocked_at", "mastered_at"}

func scanSkillProgress(sc interface{ Scan(...any) error }) (SkillProgress, error) {
	var (
		p                  SkillProgress
		unlocked, mastered sql.NullTime
	)
	if err := sc.Scan(&p.UserID, &p.SkillID, &p.Status, &p.Mastery, &unlocked, &mastered); err != nil {
		return p, err
	}
	p.UnlockedAt = timePtr(unlocked)
	p.MasteredAt = timePtr(mastered)
	return p, nil
}

func (r *ProgressStore) SkillProgress(ctx context.Context, userID int64, skillID string) (*SkillProgress, error) {
	q := r.b().Select(skillProgressColumns...).
		From(r.b().Table(tSkillProgress)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("skill_id", skillID)))
	p, err := scanSkillProgress(r.queryRow(ctx, q))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query skill progress: %w", err)
	}
	return &p, nil
}

func (r *ProgressStore) SkillProgressFor(ctx context.Context, userID int64, languageCode string) (map[string]SkillProgress, error) {
	p := r.b().Table(tSkillProgress)
	s := r.b().Table(tSkills)
	cols := make([]string, len(skillProgressColumns))
	for i, col := range skillProgressColumns {
		cols[i] = p.C(col)
	}
	q := r.b().Select(cols...).
		From(p).
		Join(s).On(p.C("skill_id"), s.C("id")).
		Where(entsql.And(
			entsql.EQ(p.C("user_id"), userID),
			entsql.EQ(s.C("language_code"), languageCode),
		))
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query skill progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string]SkillProgress)
	for rows.Next() {
		sp, err := scanSkillProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan skill progress: %w", err)
		}
		out[sp.SkillID] = sp
	}
	return out, rows.Err()
}

func (r *ProgressStore) UpsertSkillProgress(ctx context.Context, p *SkillProgress) error {
	q := r.b().Insert(tSkillProgress).
		Columns(skillProgressColumns...).
		Values(p.UserID, p.SkillID, p.Status, p.Mastery, nullTime(p.UnlockedAt), nullTime(p.MasteredAt)).
		OnConflict(entsql.ConflictColumns("user_id", "skill_id"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert skill progress: %w", err)
	}
	return nil
}
