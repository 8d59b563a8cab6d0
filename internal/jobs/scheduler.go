// Package jobs runs the background worker that keeps each week's challenges
// generated.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/clock"
)

// WeekEnsurer generates the current week's challenges when missing.
type WeekEnsurer interface {
	EnsureWeekAt(ctx context.Context, t time.Time) error
}

// EnsurerFunc adapts a function to WeekEnsurer.
type EnsurerFunc func(ctx context.Context, t time.Time) error

func (f EnsurerFunc) EnsureWeekAt(ctx context.Context, t time.Time) error { return f(ctx, t) }

// Scheduler runs weekly challenge generation on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	loc      *time.Location
	clock    clock.Clock
	generate WeekEnsurer
}

// NewScheduler creates a scheduler that evaluates spec in loc. Each run asks
// clk for the current time; a nil clk uses the system clock in loc.
func NewScheduler(spec string, loc *time.Location, clk clock.Clock, generate WeekEnsurer) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if clk == nil {
		clk = clock.New(loc)
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		spec:     spec,
		loc:      loc,
		clock:    clk,
		generate: generate,
	}
}

// RunOnce generates the current week immediately.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.generate.EnsureWeekAt(ctx, s.clock.Now().In(s.loc))
}

// Start registers the weekly job, runs it once for the current week and
// starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		log.Info("[cron] generating weekly challenges")
		if err := s.RunOnce(ctx); err != nil {
			log.WithError(err).Error("[cron] weekly challenge generation failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	if err := s.RunOnce(ctx); err != nil {
		log.WithError(err).Error("initial weekly challenge generation failed")
	}

	s.cron.Start()
	log.WithFields(log.Fields{"schedule": s.spec, "location": s.loc.String()}).Info("scheduler started")
	return nil
}

// Next returns the next time the weekly job fires, or the zero time before
// Start.
func (s *Scheduler) Next() time.Time {
	for _, e := range s.cron.Entries() {
		return e.Next
	}
	return time.Time{}
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("scheduler stopped")
}
