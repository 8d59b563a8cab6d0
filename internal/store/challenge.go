package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// ChallengeStore implements ChallengeRepo.
type ChallengeStore struct {
	conn
}

var _ ChallengeRepo = (*ChallengeStore)(nil)

var weeklyChallengeColumns = []string{
	"id", "template_key", "type", "title", "target", "xp_reward", "week_start", "week_end",
}

func (r *ChallengeStore) selectChallenges(ctx context.Context, where *entsql.Predicate) ([]WeeklyChallenge, error) {
	q := r.b().Select(weeklyChallengeColumns...).
		From(r.b().Table(tWeeklyChallenges)).
		Where(where).
		OrderBy("template_key")
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query weekly challenges: %w", err)
	}
	defer rows.Close()

	var out []WeeklyChallenge
	for rows.Next() {
		var c WeeklyChallenge
		if err := rows.Scan(&c.ID, &c.TemplateKey, &c.Type, &c.Title, &c.Target, &c.XPReward,
			&c.WeekStart, &c.WeekEnd); err != nil {
			return nil, fmt.Errorf("scan weekly challenge: %w", err)
		}
		c.WeekStart = c.WeekStart.UTC()
		c.WeekEnd = c.WeekEnd.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChallengesForWeek returns the challenges generated for the week starting at
// weekStart.
func (r *ChallengeStore) ChallengesForWeek(ctx context.Context, weekStart time.Time) ([]WeeklyChallenge, error) {
	return r.selectChallenges(ctx, entsql.EQ("week_start", utc(weekStart)))
}

// InsertChallenges inserts challenges, skipping any (template, week) pair that
// already exists.
func (r *ChallengeStore) InsertChallenges(ctx context.Context, cs []WeeklyChallenge) error {
	if len(cs) == 0 {
		return nil
	}
	q := r.b().Insert(tWeeklyChallenges).Columns(weeklyChallengeColumns...)
	for _, c := range cs {
		q.Values(c.ID, c.TemplateKey, c.Type, c.Title, c.Target, c.XPReward, utc(c.WeekStart), utc(c.WeekEnd))
	}
	q.OnConflict(entsql.ConflictColumns("template_key", "week_start"), entsql.DoNothing())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("insert weekly challenges: %w", err)
	}
	return nil
}

// ActiveChallenges returns challenges of the given type whose week contains now.
func (r *ChallengeStore) ActiveChallenges(ctx context.Context, challengeType string, now time.Time) ([]WeeklyChallenge, error) {
	now = utc(now)
	return r.selectChallenges(ctx, entsql.And(
		entsql.EQ("type", challengeType),
		entsql.LTE("week_start", now),
		entsql.GTE("week_end", now),
	))
}

// EnsureUserChallenge creates the user's progress row if it does not exist.
func (r *ChallengeStore) EnsureUserChallenge(ctx context.Context, userID int64, challengeID string) error {
	q := r.b().Insert(tUserChallenges).
		Columns("user_id", "challenge_id", "progress", "completed_at", "xp_awarded").
		Values(userID, challengeID, 0, nil, false).
		OnConflict(entsql.ConflictColumns("user_id", "challenge_id"), entsql.DoNothing())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("ensure user challenge: %w", err)
	}
	return nil
}

func (r *ChallengeStore) UserChallenge(ctx context.Context, userID int64, challengeID string) (*UserChallenge, error) {
	q := r.b().Select("user_id", "challenge_id", "progress", "completed_at", "xp_awarded").
		From(r.b().Table(tUserChallenges)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("challenge_id", challengeID)))

	var (
		uc        UserChallenge
		completed sql.NullTime
	)
	if err := r.queryRow(ctx, q).Scan(&uc.UserID, &uc.ChallengeID, &uc.Progress, &completed, &uc.XPAwarded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user challenge: %w", err)
	}
	uc.CompletedAt = timePtr(completed)
	return &uc, nil
}

// AddProgress atomically adds inc to the progress counter and returns the
// updated row.
func (r *ChallengeStore) AddProgress(ctx context.Context, userID int64, challengeID string, inc int) (*UserChallenge, error) {
	u := r.b().Update(tUserChallenges).
		Add("progress", inc).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("challenge_id", challengeID)))
	if _, err := r.exec(ctx, u); err != nil {
		return nil, fmt.Errorf("add challenge progress: %w", err)
	}
	return r.UserChallenge(ctx, userID, challengeID)
}

// MarkCompleted sets completed_at if it is still unset. It reports whether
// this call performed the transition.
func (r *ChallengeStore) MarkCompleted(ctx context.Context, userID int64, challengeID string, at time.Time) (bool, error) {
	u := r.b().Update(tUserChallenges).
		Set("completed_at", utc(at)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("challenge_id", challengeID),
			entsql.IsNull("completed_at"),
		))
	return r.affectedOne(ctx, u, "mark challenge completed")
}

// MarkXPAwarded flips xp_awarded from false to true. Only the caller that
// observes true may grant the reward.
func (r *ChallengeStore) MarkXPAwarded(ctx context.Context, userID int64, challengeID string) (bool, error) {
	u := r.b().Update(tUserChallenges).
		Set("xp_awarded", true).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("challenge_id", challengeID),
			entsql.EQ("xp_awarded", false),
		))
	return r.affectedOne(ctx, u, "mark challenge xp awarded")
}

func (r *ChallengeStore) affectedOne(ctx context.Context, q entsql.Querier, op string) (bool, error) {
	res, err := r.exec(ctx, q)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n == 1, nil
}
