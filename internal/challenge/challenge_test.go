package challenge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/errs"
	"github.com/abhisek/linguo/internal/random"
	"github.com/abhisek/linguo/internal/store"
)

func TestInstantiate(t *testing.T) {
	start := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)

	for seed := uint64(0); seed < 20; seed++ {
		cs := Instantiate(random.New(seed), catalog, start, end)
		if len(cs) != PerWeek {
			t.Fatalf("seed %d: got %d challenges, want %d", seed, len(cs), PerWeek)
		}
		keys := map[string]bool{}
		for _, c := range cs {
			if keys[c.TemplateKey] {
				t.Errorf("seed %d: template %s picked twice", seed, c.TemplateKey)
			}
			keys[c.TemplateKey] = true

			tmpl := templateByKey(t, c.TemplateKey)
			if c.Target < tmpl.MinTarget || c.Target > tmpl.MaxTarget {
				t.Errorf("seed %d: %s target = %d, want in [%d, %d]", seed, c.TemplateKey, c.Target, tmpl.MinTarget, tmpl.MaxTarget)
			}
			if c.ID != c.TemplateKey+"-2025-01-13" {
				t.Errorf("ID = %s, want %s-2025-01-13", c.ID, c.TemplateKey)
			}
		}
	}
}

func templateByKey(t *testing.T, key string) Template {
	t.Helper()
	for _, tmpl := range catalog {
		if tmpl.Key == key {
			return tmpl
		}
	}
	t.Fatalf("no template %s", key)
	return Template{}
}

func TestTypes(t *testing.T) {
	want := []string{TypeCorrectAnswers, TypeXPEarned, TypeConceptsReviewed, TypeSkillsUnlocked, TypeStreakDays}
	assert.Equal(t, want, Types())
	assert.False(t, KnownType("bogus"))
}

type fixture struct {
	store     *store.Store
	clock     *clock.Fixed
	generator *Generator
	tracker   *Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.OpenSQLite(fmt.Sprintf("file:challenge_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Wednesday.
	clk := &clock.Fixed{T: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)}
	return &fixture{
		store:     s,
		clock:     clk,
		generator: NewGenerator(s.ChallengeRepo(), clk, random.New(42)),
		tracker:   NewTracker(s.ChallengeRepo(), s.StatsRepo(), clk),
	}
}

func (f *fixture) insert(t *testing.T, c store.WeeklyChallenge) {
	t.Helper()
	start, end := clock.WeekBounds(f.clock.Now())
	c.WeekStart, c.WeekEnd = start, end
	if c.ID == "" {
		c.ID = ChallengeID(c.TemplateKey, start)
	}
	require.NoError(t, f.store.ChallengeRepo().InsertChallenges(context.Background(), []store.WeeklyChallenge{c}))
}

func TestEnsureWeek_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.generator.EnsureWeek(ctx)
	require.NoError(t, err)
	require.Len(t, first, PerWeek)
	for _, c := range first {
		assert.True(t, c.WeekStart.Equal(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)))
	}

	// A different random source must not regenerate an existing week.
	f.generator.rand = random.New(7)
	f.clock.Advance(48 * time.Hour)
	second, err := f.generator.EnsureWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Next Monday is a new week.
	f.clock.T = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	next, err := f.generator.EnsureWeek(ctx)
	require.NoError(t, err)
	require.Len(t, next, PerWeek)
	assert.NotEqual(t, first[0].ID, next[0].ID)
}

func TestUpdateProgress_XPAwardedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.insert(t, store.WeeklyChallenge{TemplateKey: "correct-answers", Type: TypeCorrectAnswers, Title: "x", Target: 3, XPReward: 50})

	ups, err := f.tracker.UpdateProgress(ctx, 1, TypeCorrectAnswers, 2)
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, 2, ups[0].Progress)
	assert.False(t, ups[0].CompletedNow)
	assert.Zero(t, ups[0].XPGranted)

	ups, err = f.tracker.UpdateProgress(ctx, 1, TypeCorrectAnswers, 1)
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, 3, ups[0].Progress)
	assert.True(t, ups[0].CompletedNow)
	assert.Equal(t, 50, ups[0].XPGranted)

	// Progress keeps accumulating after completion without more XP.
	ups, err = f.tracker.UpdateProgress(ctx, 1, TypeCorrectAnswers, 5)
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, 8, ups[0].Progress)
	assert.False(t, ups[0].CompletedNow)
	assert.Zero(t, ups[0].XPGranted)

	stats, err := f.store.StatsRepo().Stats(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 50, stats.XPTotal)
}

func TestUpdateProgress_OnlyMatchingActiveChallenges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.insert(t, store.WeeklyChallenge{TemplateKey: "xp-earned", Type: TypeXPEarned, Title: "x", Target: 100, XPReward: 75})

	// Last week's challenge of the same type is no longer active.
	lastStart, lastEnd := clock.WeekBounds(f.clock.Now().AddDate(0, 0, -7))
	require.NoError(t, f.store.ChallengeRepo().InsertChallenges(ctx, []store.WeeklyChallenge{{
		ID: ChallengeID("xp-earned", lastStart), TemplateKey: "xp-earned", Type: TypeXPEarned,
		Title: "old", Target: 10, XPReward: 75, WeekStart: lastStart, WeekEnd: lastEnd,
	}}))

	ups, err := f.tracker.UpdateProgress(ctx, 1, TypeXPEarned, 20)
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, "xp-earned-2025-01-13", ups[0].Challenge.ID)

	ups, err = f.tracker.UpdateProgress(ctx, 1, TypeStreakDays, 1)
	require.NoError(t, err)
	assert.Empty(t, ups)
}

func TestUpdateProgress_NoOpAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.insert(t, store.WeeklyChallenge{TemplateKey: "correct-answers", Type: TypeCorrectAnswers, Title: "x", Target: 3, XPReward: 50})

	ups, err := f.tracker.UpdateProgress(ctx, 1, TypeCorrectAnswers, 0)
	require.NoError(t, err)
	assert.Empty(t, ups)
	uc, err := f.store.ChallengeRepo().UserChallenge(ctx, 1, "correct-answers-2025-01-13")
	require.NoError(t, err)
	assert.Nil(t, uc)

	_, err = f.tracker.UpdateProgress(ctx, 1, "bogus", 1)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))

	_, err = f.tracker.UpdateProgress(ctx, -1, TypeCorrectAnswers, 1)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}

func TestStandings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	week, err := f.generator.EnsureWeek(ctx)
	require.NoError(t, err)
	_, err = f.tracker.UpdateProgress(ctx, 1, week[0].Type, week[0].Target)
	require.NoError(t, err)

	st, err := f.tracker.Standings(ctx, 1, week)
	require.NoError(t, err)
	require.Len(t, st, len(week))
	assert.True(t, st[0].Completed)
	assert.GreaterOrEqual(t, st[0].Progress, week[0].Target)
}
