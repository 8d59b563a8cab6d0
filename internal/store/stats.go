package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// StatsStore implements StatsRepo.
type StatsStore struct {
	conn
}

var _ StatsRepo = (*StatsStore)(nil)

var userStatsColumns = []string{
	"user_id", "hearts", "hearts_last_refilled", "xp_total", "current_streak",
	"longest_streak", "streak_freezes", "freezes_earned_total",
	"total_correct_answers", "last_activity",
}

// Stats returns the stats row for a user, or nil if the user has none yet.
func (r *StatsStore) Stats(ctx context.Context, userID int64) (*UserStats, error) {
	q := r.b().Select(userStatsColumns...).
		From(r.b().Table(tUserStats)).
		Where(entsql.EQ("user_id", userID))

	var (
		s                  UserStats
		refilled, activity sql.NullTime
	)
	err := r.queryRow(ctx, q).Scan(&s.UserID, &s.Hearts, &refilled, &s.XPTotal, &s.CurrentStreak,
		&s.LongestStreak, &s.StreakFreezes, &s.FreezesEarnedTotal, &s.TotalCorrectAnswers, &activity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user stats: %w", err)
	}
	s.HeartsLastRefilled = timePtr(refilled)
	s.LastActivity = timePtr(activity)
	return &s, nil
}

// SaveStats upserts the full stats row.
func (r *StatsStore) SaveStats(ctx context.Context, s *UserStats) error {
	q := r.b().Insert(tUserStats).
		Columns(userStatsColumns...).
		Values(s.UserID, s.Hearts, nullTime(s.HeartsLastRefilled), s.XPTotal, s.CurrentStreak,
			s.LongestStreak, s.StreakFreezes, s.FreezesEarnedTotal, s.TotalCorrectAnswers,
			nullTime(s.LastActivity)).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("save user stats: %w", err)
	}
	return nil
}

// SetHearts updates the heart count and, when refilledAt is non-nil, the
// refill timestamp. Missing rows are created with default stats.
func (r *StatsStore) SetHearts(ctx context.Context, userID int64, hearts int, refilledAt *time.Time) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	u := r.b().Update(tUserStats).Set("hearts", hearts).Where(entsql.EQ("user_id", userID))
	if refilledAt != nil {
		u.Set("hearts_last_refilled", utc(*refilledAt))
	}
	if _, err := r.exec(ctx, u); err != nil {
		return fmt.Errorf("set hearts: %w", err)
	}
	return nil
}

// AddXP atomically adds xp to the user's total.
func (r *StatsStore) AddXP(ctx context.Context, userID int64, xp int) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	u := r.b().Update(tUserStats).Add("xp_total", xp).Where(entsql.EQ("user_id", userID))
	if _, err := r.exec(ctx, u); err != nil {
		return fmt.Errorf("add xp: %w", err)
	}
	return nil
}

func (r *StatsStore) ensure(ctx context.Context, userID int64) error {
	s := NewUserStats(userID)
	q := r.b().Insert(tUserStats).
		Columns(userStatsColumns...).
		Values(s.UserID, s.Hearts, nil, 0, 0, 0, 0, 0, 0, nil).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("ensure user stats: %w", err)
	}
	return nil
}

// DailyActivity returns the ledger row for the given date key, or nil.
func (r *StatsStore) DailyActivity(ctx context.Context, userID int64, date string) (*DailyActivity, error) {
	q := r.b().Select("user_id", "activity_date", "xp_earned", "correct_answers").
		From(r.b().Table(tDailyActivity)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("activity_date", date)))
	var d DailyActivity
	if err := r.queryRow(ctx, q).Scan(&d.UserID, &d.Date, &d.XPEarned, &d.CorrectAnswers); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query daily activity: %w", err)
	}
	return &d, nil
}

// AddDailyActivity upserts the ledger row, adding xp and correct to any
// existing totals.
func (r *StatsStore) AddDailyActivity(ctx context.Context, userID int64, date string, xp, correct int) error {
	q := r.b().Insert(tDailyActivity).
		Columns("user_id", "activity_date", "xp_earned", "correct_answers").
		Values(userID, date, xp, correct).
		OnConflict(
			entsql.ConflictColumns("user_id", "activity_date"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("xp_earned", xp)
				u.Add("correct_answers", correct)
			}),
		)
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert daily activity: %w", err)
	}
	return nil
}
