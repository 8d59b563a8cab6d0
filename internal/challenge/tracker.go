package challenge

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/errs"
	"github.com/abhisek/linguo/internal/store"
)

// Update reports the effect of one increment on one challenge.
type Update struct {
	Challenge    store.WeeklyChallenge
	Progress     int
	CompletedNow bool
	XPGranted    int
}

// Standing is a user's position on one challenge.
type Standing struct {
	Challenge store.WeeklyChallenge
	Progress  int
	Completed bool
}

// Tracker advances users' progress on active challenges.
type Tracker struct {
	challenges store.ChallengeRepo
	stats      store.StatsRepo
	clock      clock.Clock
}

// NewTracker creates a challenge progress tracker.
func NewTracker(challenges store.ChallengeRepo, stats store.StatsRepo, clk clock.Clock) *Tracker {
	return &Tracker{challenges: challenges, stats: stats, clock: clk}
}

// UpdateProgress adds incrementBy to every active challenge of the given type.
// A challenge's XP reward is granted at most once per user, by the call that
// flips its awarded flag. Non-positive increments are a no-op.
func (t *Tracker) UpdateProgress(ctx context.Context, userID int64, challengeType string, incrementBy int) ([]Update, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, err
	}
	if !KnownType(challengeType) {
		return nil, errs.Invalid("challenge type", fmt.Sprintf("unknown type %q", challengeType))
	}
	if incrementBy <= 0 {
		return nil, nil
	}

	now := t.clock.Now()
	active, err := t.challenges.ActiveChallenges(ctx, challengeType, now)
	if err != nil {
		return nil, fmt.Errorf("load active challenges: %w", err)
	}

	updates := make([]Update, 0, len(active))
	for _, c := range active {
		if err := t.challenges.EnsureUserChallenge(ctx, userID, c.ID); err != nil {
			return nil, err
		}
		uc, err := t.challenges.AddProgress(ctx, userID, c.ID, incrementBy)
		if err != nil {
			return nil, err
		}
		if uc == nil {
			return nil, errs.NotFound("user challenge", c.ID)
		}

		u := Update{Challenge: c, Progress: uc.Progress}
		completed := uc.CompletedAt != nil
		if !completed && uc.Progress >= c.Target {
			u.CompletedNow, err = t.challenges.MarkCompleted(ctx, userID, c.ID, now)
			if err != nil {
				return nil, err
			}
			completed = true
		}

		if completed && !uc.XPAwarded {
			granted, err := t.challenges.MarkXPAwarded(ctx, userID, c.ID)
			if err != nil {
				return nil, err
			}
			if granted {
				if err := t.stats.AddXP(ctx, userID, c.XPReward); err != nil {
					return nil, err
				}
				u.XPGranted = c.XPReward
			}
		}

		if u.CompletedNow {
			log.WithFields(log.Fields{
				"user_id":      userID,
				"challenge_id": c.ID,
				"xp":           u.XPGranted,
			}).Debug("challenge completed")
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// Standings returns the user's progress on each challenge. Challenges the
// user has not touched report zero progress.
func (t *Tracker) Standings(ctx context.Context, userID int64, challenges []store.WeeklyChallenge) ([]Standing, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, err
	}
	out := make([]Standing, 0, len(challenges))
	for _, c := range challenges {
		uc, err := t.challenges.UserChallenge(ctx, userID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("load user challenge: %w", err)
		}
		st := Standing{Challenge: c}
		if uc != nil {
			st.Progress = uc.Progress
			st.Completed = uc.CompletedAt != nil
		}
		out = append(out, st)
	}
	return out, nil
}
