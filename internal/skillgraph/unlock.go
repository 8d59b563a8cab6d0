package skillgraph

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/errs"
	"github.com/abhisek/linguo/internal/store"
)

// Unlockable reports whether every direct prerequisite edge is satisfied.
// mastery maps skill IDs to the user's current mastery; missing entries count
// as 0. A skill with no edges is always unlockable.
func Unlockable(edges []store.Prerequisite, mastery map[string]float64) bool {
	for _, e := range edges {
		if mastery[e.PrerequisiteSkillID] < e.MinMastery {
			return false
		}
	}
	return true
}

// IsLocked reports whether a skill counts as locked for a user. p is nil when
// the user has no progress row.
func IsLocked(p *store.SkillProgress) bool {
	return p == nil || p.Status == store.SkillLocked
}

// Evaluator unlocks skills whose prerequisites the user has satisfied.
type Evaluator struct {
	content  store.ContentRepo
	progress store.ProgressRepo
	clock    clock.Clock
}

// NewEvaluator creates an unlock evaluator.
func NewEvaluator(content store.ContentRepo, progress store.ProgressRepo, clk clock.Clock) *Evaluator {
	return &Evaluator{content: content, progress: progress, clock: clk}
}

// CheckAndUnlockSkills unlocks every locked skill in the language whose
// direct prerequisites are met and returns the IDs it unlocked. Only one hop
// is evaluated per call: a skill unlocked here does not count as progress
// for its dependents until their prerequisites reach the required mastery.
func (e *Evaluator) CheckAndUnlockSkills(ctx context.Context, userID int64, languageCode string) ([]string, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, err
	}
	if err := errs.CheckID("language", languageCode); err != nil {
		return nil, err
	}

	skills, err := e.content.Skills(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("load skills: %w", err)
	}
	edges, err := e.content.Prerequisites(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("load prerequisites: %w", err)
	}
	progress, err := e.progress.SkillProgressFor(ctx, userID, languageCode)
	if err != nil {
		return nil, fmt.Errorf("load skill progress: %w", err)
	}

	bySkill := make(map[string][]store.Prerequisite)
	for _, edge := range edges {
		bySkill[edge.SkillID] = append(bySkill[edge.SkillID], edge)
	}
	mastery := make(map[string]float64, len(progress))
	for id, p := range progress {
		mastery[id] = p.Mastery
	}

	now := e.clock.Now()
	var unlocked []string
	for _, s := range skills {
		var existing *store.SkillProgress
		if p, ok := progress[s.ID]; ok {
			existing = &p
		}
		if !IsLocked(existing) || !Unlockable(bySkill[s.ID], mastery) {
			continue
		}

		next := store.SkillProgress{UserID: userID, SkillID: s.ID, Status: store.SkillUnlocked}
		if existing != nil {
			next = *existing
			next.Status = store.SkillUnlocked
		}
		if next.UnlockedAt == nil {
			t := now
			next.UnlockedAt = &t
		}
		if err := e.progress.UpsertSkillProgress(ctx, &next); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, s.ID)
	}

	if len(unlocked) > 0 {
		log.WithFields(log.Fields{
			"user_id":  userID,
			"language": languageCode,
			"skills":   unlocked,
		}).Debug("skills unlocked")
	}
	return unlocked, nil
}
