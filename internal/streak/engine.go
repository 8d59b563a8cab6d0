package streak

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/errs"
	"github.com/abhisek/linguo/internal/store"
)

// XPPerCorrect is the base XP for one correct answer before the combo
// multiplier.
const XPPerCorrect = 10

// Result describes the effect of one correct answer on a user's stats.
type Result struct {
	NewStreak         int
	XPGain            int
	StreakFreezeUsed  bool
	FreezeEarned      bool
	FirstCorrectToday bool
	StreakMilestone   int // 0 when no milestone was reached
	PreviousLevel     int
	NewLevel          int
}

// LeveledUp reports whether the answer moved the user to a new level.
func (r Result) LeveledUp() bool {
	return r.NewLevel != r.PreviousLevel
}

// ApplyCorrectAnswer computes the stats after a correct answer at now.
// firstCorrectToday must reflect the daily ledger before this answer.
func ApplyCorrectAnswer(prior store.UserStats, awardXP bool, combo int, firstCorrectToday bool, now time.Time) (store.UserStats, Result) {
	if combo < 1 {
		combo = 1
	}
	next := prior
	res := Result{FirstCorrectToday: firstCorrectToday, PreviousLevel: Level(prior.XPTotal)}

	streak, used := NextStreak(prior.CurrentStreak, prior.LastActivity, now, prior.StreakFreezes)
	res.NewStreak = streak
	res.StreakFreezeUsed = used
	res.StreakMilestone = MilestoneReached(prior.CurrentStreak, streak)
	next.CurrentStreak = streak
	next.LongestStreak = max(prior.LongestStreak, streak)
	if used {
		next.StreakFreezes--
	}

	next.TotalCorrectAnswers++
	if earned, total := FreezeEarned(next.TotalCorrectAnswers, prior.FreezesEarnedTotal); earned {
		res.FreezeEarned = true
		next.FreezesEarnedTotal = total
		next.StreakFreezes++
	}
	next.StreakFreezes = max(0, next.StreakFreezes)

	if awardXP {
		res.XPGain = XPPerCorrect * combo
	}
	next.XPTotal += res.XPGain
	res.NewLevel = Level(next.XPTotal)

	t := now
	next.LastActivity = &t
	return next, res
}

// Engine persists streak, XP and heart changes for users.
type Engine struct {
	stats store.StatsRepo
	clock clock.Clock
}

// NewEngine creates a streak and hearts engine.
func NewEngine(stats store.StatsRepo, clk clock.Clock) *Engine {
	return &Engine{stats: stats, clock: clk}
}

// Stats returns the user's stats, or the defaults for a user with none.
func (e *Engine) Stats(ctx context.Context, userID int64) (*store.UserStats, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, err
	}
	s, err := e.stats.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}
	if s == nil {
		s = store.NewUserStats(userID)
	}
	return s, nil
}

// RecordCorrectAnswer updates streak, XP, freezes and the daily ledger for
// one correct answer. combo multiplies the XP gain and is treated as 1 when
// below 1.
func (e *Engine) RecordCorrectAnswer(ctx context.Context, userID int64, awardXP bool, combo int) (*Result, error) {
	prior, err := e.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	today := clock.DateKey(now)
	day, err := e.stats.DailyActivity(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("load daily activity: %w", err)
	}
	first := day == nil || day.XPEarned == 0

	next, res := ApplyCorrectAnswer(*prior, awardXP, combo, first, now)
	if err := e.stats.SaveStats(ctx, &next); err != nil {
		return nil, err
	}
	if err := e.stats.AddDailyActivity(ctx, userID, today, res.XPGain, 1); err != nil {
		return nil, err
	}

	fields := log.Fields{"user_id": userID, "streak": res.NewStreak}
	if res.StreakMilestone > 0 {
		log.WithFields(fields).WithField("milestone", res.StreakMilestone).Debug("streak milestone reached")
	}
	if res.StreakFreezeUsed {
		log.WithFields(fields).Debug("streak freeze consumed")
	}
	if res.LeveledUp() {
		log.WithFields(fields).WithField("level", res.NewLevel).Debug("level up")
	}
	return &res, nil
}

// RefreshHearts applies heart regeneration and persists it when hearts
// increased. It returns the current stats.
func (e *Engine) RefreshHearts(ctx context.Context, userID int64) (*store.UserStats, error) {
	s, err := e.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := e.clock.Now()
	hearts, regenerated := Regenerate(s.Hearts, s.HeartsLastRefilled, now)
	if !regenerated {
		return s, nil
	}
	if err := e.stats.SetHearts(ctx, userID, hearts, &now); err != nil {
		return nil, err
	}
	s.Hearts = hearts
	t := now
	s.HeartsLastRefilled = &t
	return s, nil
}

// RecordWrongAnswer deducts a heart when hearts are enabled and the user is
// not revising. Losing the first heart from a full or never-refilled count
// starts the regeneration timer. It returns the remaining hearts.
func (e *Engine) RecordWrongAnswer(ctx context.Context, userID int64, heartsEnabled, revision bool) (int, error) {
	s, err := e.Stats(ctx, userID)
	if err != nil {
		return 0, err
	}
	hearts := Deduct(s.Hearts, heartsEnabled, revision)
	if hearts == s.Hearts {
		return hearts, nil
	}

	var refilledAt *time.Time
	if s.HeartsLastRefilled == nil || s.Hearts >= store.MaxHearts {
		now := e.clock.Now()
		refilledAt = &now
	}
	if err := e.stats.SetHearts(ctx, userID, hearts, refilledAt); err != nil {
		return 0, err
	}
	return hearts, nil
}
