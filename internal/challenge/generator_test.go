package challenge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/random"
	"github.com/abhisek/linguo/internal/store"
)

// countingRepo keeps weekly challenges in memory and counts inserts. Only
// the generator's methods are implemented.
type countingRepo struct {
	store.ChallengeRepo

	mu      sync.Mutex
	weeks   map[string][]store.WeeklyChallenge
	inserts int
}

func (r *countingRepo) ChallengesForWeek(_ context.Context, weekStart time.Time) ([]store.WeeklyChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.weeks[clock.DateKey(weekStart)], nil
}

func (r *countingRepo) InsertChallenges(_ context.Context, cs []store.WeeklyChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	for _, c := range cs {
		key := clock.DateKey(c.WeekStart)
		r.weeks[key] = append(r.weeks[key], c)
	}
	return nil
}

func TestEnsureWeekAt_ConcurrentCallersShareGeneration(t *testing.T) {
	repo := &countingRepo{weeks: map[string][]store.WeeklyChallenge{}}
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	g := NewGenerator(repo, &clock.Fixed{T: now}, random.New(7))

	var wg sync.WaitGroup
	results := make([][]store.WeeklyChallenge, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cs, err := g.EnsureWeekAt(context.Background(), now)
			if err != nil {
				t.Errorf("EnsureWeekAt() error = %v", err)
			}
			results[i] = cs
		}(i)
	}
	wg.Wait()

	if repo.inserts != 1 {
		t.Errorf("inserts = %d, want 1", repo.inserts)
	}
	for i, cs := range results {
		if len(cs) != PerWeek {
			t.Errorf("caller %d got %d challenges, want %d", i, len(cs), PerWeek)
		}
	}
}
