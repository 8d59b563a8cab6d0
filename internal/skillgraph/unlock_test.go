package skillgraph

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
	"github.com/abhisek/linguo/internal/store"
)

func TestUnlockable(t *testing.T) {
	edges := []store.Prerequisite{
		{SkillID: "c", PrerequisiteSkillID: "a", MinMastery: 0.5},
		{SkillID: "c", PrerequisiteSkillID: "b", MinMastery: 0.5},
	}
	tests := []struct {
		name    string
		edges   []store.Prerequisite
		mastery map[string]float64
		want    bool
	}{
		{"no edges", nil, nil, true},
		{"both satisfied", edges, map[string]float64{"a": 0.5, "b": 0.9}, true},
		{"only one satisfied", edges, map[string]float64{"a": 0.9, "b": 0.49}, false},
		{"missing progress counts as zero", edges, map[string]float64{"a": 0.9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unlockable(tt.edges, tt.mastery); got != tt.want {
				t.Errorf("Unlockable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func newUnlockFixture(t *testing.T) (*Evaluator, *store.Store, *clock.Fixed) {
	t.Helper()
	s, err := store.OpenSQLite(fmt.Sprintf("file:unlock_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	c := s.ContentRepo()
	require.NoError(t, c.UpsertLanguage(ctx, store.Language{Code: "es", Name: "Spanish"}))
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.UpsertSkill(ctx, store.Skill{ID: id, LanguageCode: "es", Name: id, Position: i}))
	}
	require.NoError(t, c.UpsertPrerequisite(ctx, store.Prerequisite{SkillID: "c", PrerequisiteSkillID: "a", MinMastery: 0.5}))
	require.NoError(t, c.UpsertPrerequisite(ctx, store.Prerequisite{SkillID: "c", PrerequisiteSkillID: "b", MinMastery: 0.5}))
	require.NoError(t, c.UpsertPrerequisite(ctx, store.Prerequisite{SkillID: "d", PrerequisiteSkillID: "c", MinMastery: 0.5}))

	clk := &clock.Fixed{T: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewEvaluator(c, s.ProgressRepo(), clk), s, clk
}

func TestCheckAndUnlockSkills_RootsFirst(t *testing.T) {
	ev, s, clk := newUnlockFixture(t)
	ctx := context.Background()

	unlocked, err := ev.CheckAndUnlockSkills(ctx, 1, "es")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, unlocked)

	p, err := s.ProgressRepo().SkillProgress(ctx, 1, "a")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, store.SkillUnlocked, p.Status)
	assert.Equal(t, 0.0, p.Mastery)
	require.NotNil(t, p.UnlockedAt)
	assert.True(t, p.UnlockedAt.Equal(clk.T))

	// Nothing new on a second call.
	unlocked, err = ev.CheckAndUnlockSkills(ctx, 1, "es")
	require.NoError(t, err)
	assert.Empty(t, unlocked)
}

func TestCheckAndUnlockSkills_RequiresAllPrerequisites(t *testing.T) {
	ev, s, _ := newUnlockFixture(t)
	ctx := context.Background()
	pr := s.ProgressRepo()

	require.NoError(t, pr.UpsertSkillProgress(ctx, &store.SkillProgress{UserID: 1, SkillID: "a", Status: store.SkillInProgress, Mastery: 0.9}))
	require.NoError(t, pr.UpsertSkillProgress(ctx, &store.SkillProgress{UserID: 1, SkillID: "b", Status: store.SkillInProgress, Mastery: 0.3}))

	unlocked, err := ev.CheckAndUnlockSkills(ctx, 1, "es")
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	require.NoError(t, pr.UpsertSkillProgress(ctx, &store.SkillProgress{UserID: 1, SkillID: "b", Status: store.SkillInProgress, Mastery: 0.5}))
	unlocked, err = ev.CheckAndUnlockSkills(ctx, 1, "es")
	require.NoError(t, err)
	// One hop only: d needs c's mastery, which is still 0.
	assert.Equal(t, []string{"c"}, unlocked)
}

func TestCheckAndUnlockSkills_KeepsExistingUnlockTime(t *testing.T) {
	ev, s, _ := newUnlockFixture(t)
	ctx := context.Background()
	earlier := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.ProgressRepo().UpsertSkillProgress(ctx, &store.SkillProgress{
		UserID: 1, SkillID: "a", Status: store.SkillLocked, UnlockedAt: &earlier,
	}))
	_, err := ev.CheckAndUnlockSkills(ctx, 1, "es")
	require.NoError(t, err)

	p, err := s.ProgressRepo().SkillProgress(ctx, 1, "a")
	require.NoError(t, err)
	assert.Equal(t, store.SkillUnlocked, p.Status)
	assert.True(t, p.UnlockedAt.Equal(earlier))
}

func TestCheckAndUnlockSkills_InvalidInput(t *testing.T) {
	ev, _, _ := newUnlockFixture(t)
	_, err := ev.CheckAndUnlockSkills(context.Background(), 0, "es")
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
	_, err = ev.CheckAndUnlockSkills(context.Background(), 1, "")
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}
