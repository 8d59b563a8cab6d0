package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhisek/linguo/internal/clock"
)

func TestStart_RunsImmediately(t *testing.T) {
	var calls atomic.Int32
	var seen atomic.Value
	s := NewScheduler("0 0 * * 1", time.UTC, nil, EnsurerFunc(func(_ context.Context, at time.Time) error {
		calls.Add(1)
		seen.Store(at)
		return nil
	}))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if at, _ := seen.Load().(time.Time); at.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", at.Location())
	}
	next := s.Next()
	if next.IsZero() {
		t.Fatal("Next() is zero after Start")
	}
	if next.Weekday() != time.Monday || next.Hour() != 0 || next.Minute() != 0 {
		t.Errorf("Next() = %v, want Monday 00:00", next)
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler("not a spec", nil, nil, EnsurerFunc(func(context.Context, time.Time) error { return nil }))
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want error")
	}
}

func TestStart_GenerationErrorIsNotFatal(t *testing.T) {
	s := NewScheduler("@weekly", time.UTC, nil, EnsurerFunc(func(context.Context, time.Time) error {
		return errors.New("db down")
	}))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v, want nil", err)
	}
	s.Stop()
}

func TestRunOnce_UsesClock(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	clk := &clock.Fixed{T: time.Date(2025, 1, 19, 20, 0, 0, 0, time.UTC)}
	var seen time.Time
	s := NewScheduler("@weekly", tokyo, clk, EnsurerFunc(func(_ context.Context, at time.Time) error {
		seen = at
		return nil
	}))

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if !seen.Equal(clk.T) {
		t.Errorf("run at %v, want %v", seen, clk.T)
	}
	// Sunday evening in UTC is already Monday in Tokyo.
	if seen.Location() != tokyo || seen.Weekday() != time.Monday {
		t.Errorf("run at %v (%v), want Monday in JST", seen, seen.Weekday())
	}

	clk.Advance(7 * 24 * time.Hour)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if !seen.Equal(clk.T) {
		t.Errorf("second run at %v, want %v", seen, clk.T)
	}
}
