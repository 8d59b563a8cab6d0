package components

import (
	"strings"
	"testing"

	"github.com/abhisek/linguo/internal/store"
)

func TestCells(t *testing.T) {
	tests := []struct {
		percent     float64
		width       int
		filled, gap int
	}{
		{0, 10, 0, 10},
		{0.5, 10, 5, 5},
		{1.5, 10, 10, 0},
		{-1, 10, 0, 10},
	}
	for _, tt := range tests {
		filled, empty := Cells(tt.percent, tt.width)
		if filled != tt.filled || empty != tt.gap {
			t.Errorf("Cells(%v, %d) = %d, %d, want %d, %d", tt.percent, tt.width, filled, empty, tt.filled, tt.gap)
		}
	}
}

func TestHeartsView(t *testing.T) {
	got := HeartsView(3, 10)
	if n := strings.Count(got, "♥"); n != 3 {
		t.Errorf("filled hearts = %d, want 3", n)
	}
	if n := strings.Count(got, "♡"); n != 7 {
		t.Errorf("empty hearts = %d, want 7", n)
	}
	if n := strings.Count(HeartsView(12, 10), "♥"); n != 10 {
		t.Errorf("capped hearts = %d, want 10", n)
	}
}

func TestStatsCardView(t *testing.T) {
	card := NewStatsCard(store.UserStats{UserID: 7, Hearts: 4, XPTotal: 250, CurrentStreak: 8, LongestStreak: 12, StreakFreezes: 1}, 60)
	out := card.View()
	for _, want := range []string{"User 7", "Level 3", "8 days", "next milestone 30", "12 days"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
