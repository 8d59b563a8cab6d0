package challenge

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/random"
	"github.com/abhisek/linguo/internal/store"
)

// Generator instantiates catalog templates once per ISO week.
type Generator struct {
	repo  store.ChallengeRepo
	clock clock.Clock
	rand  random.Source
	group singleflight.Group
}

// NewGenerator creates a weekly challenge generator.
func NewGenerator(repo store.ChallengeRepo, clk clock.Clock, src random.Source) *Generator {
	return &Generator{repo: repo, clock: clk, rand: src}
}

// Instantiate picks PerWeek distinct templates and draws their targets for
// the week starting at weekStart. It does not touch the datastore.
func Instantiate(src random.Source, templates []Template, weekStart, weekEnd time.Time) []store.WeeklyChallenge {
	idx := random.Pick(src, len(templates), PerWeek)
	out := make([]store.WeeklyChallenge, 0, len(idx))
	for _, i := range idx {
		t := templates[i]
		target := random.Between(src, t.MinTarget, t.MaxTarget)
		out = append(out, store.WeeklyChallenge{
			ID:          ChallengeID(t.Key, weekStart),
			TemplateKey: t.Key,
			Type:        t.Type,
			Title:       t.TitleFor(target),
			Target:      target,
			XPReward:    t.XPReward,
			WeekStart:   weekStart,
			WeekEnd:     weekEnd,
		})
	}
	return out
}

// ChallengeID is the stable identifier of a template's instance for a week.
func ChallengeID(templateKey string, weekStart time.Time) string {
	return templateKey + "-" + clock.DateKey(weekStart)
}

// EnsureWeek returns the current week's challenges, generating them when the
// week has none. An existing week is returned unchanged.
func (g *Generator) EnsureWeek(ctx context.Context) ([]store.WeeklyChallenge, error) {
	return g.EnsureWeekAt(ctx, g.clock.Now())
}

// EnsureWeekAt is EnsureWeek for the ISO week containing t. Concurrent
// calls for the same week share one generation.
func (g *Generator) EnsureWeekAt(ctx context.Context, t time.Time) ([]store.WeeklyChallenge, error) {
	start, end := clock.WeekBounds(t)
	v, err, _ := g.group.Do(clock.DateKey(start), func() (any, error) {
		return g.ensure(ctx, start, end)
	})
	if err != nil {
		return nil, err
	}
	return v.([]store.WeeklyChallenge), nil
}

func (g *Generator) ensure(ctx context.Context, start, end time.Time) ([]store.WeeklyChallenge, error) {
	existing, err := g.repo.ChallengesForWeek(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("load weekly challenges: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	// Rows already inserted by another process are skipped on conflict.
	if err := g.repo.InsertChallenges(ctx, Instantiate(g.rand, catalog, start, end)); err != nil {
		return nil, err
	}
	created, err := g.repo.ChallengesForWeek(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("load weekly challenges: %w", err)
	}

	log.WithFields(log.Fields{
		"week_start": clock.DateKey(start),
		"count":      len(created),
	}).Info("weekly challenges generated")
	return created, nil
}
