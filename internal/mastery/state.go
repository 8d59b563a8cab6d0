package mastery

import (
	"math"
	"time"

	"github.com/abhisek/linguo/internal/store"
)

// Mastery at or above which a skill counts as mastered.
const masteredThreshold = 0.9

// StateTransition records a skill status change for display and logging.
type StateTransition struct {
	SkillID string
	From    string
	To      string
}

// Aggregate returns the weighted mean of concept masteries over a skill's
// links. Weights are whole numbers: fractions are dropped and anything
// below 1 counts as 1. Concepts without progress count as 0. A skill with no linked concepts has mastery 0.
func Aggregate(links []store.SkillConcept, conceptMastery map[string]float64) float64 {
	var sum, weights float64
	for _, l := range links {
		w := math.Max(1, math.Floor(l.Weight))
		sum += w * conceptMastery[l.ConceptID]
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return math.Min(1, math.Max(0, sum/weights))
}

// ResolveStatus picks the skill status for an aggregated mastery. existing
// is nil when the user has no row for the skill.
func ResolveStatus(m float64, existing *store.SkillProgress) string {
	switch {
	case m >= masteredThreshold:
		return store.SkillMastered
	case existing != nil && existing.Status == store.SkillLocked:
		return store.SkillLocked
	case m > 0:
		return store.SkillInProgress
	case existing != nil:
		return existing.Status
	default:
		return store.SkillUnlocked
	}
}

// Apply builds the updated skill progress row. unlockedAt is set once when
// the skill leaves the locked state; masteredAt tracks whether the skill is
// currently mastered.
func Apply(existing *store.SkillProgress, userID int64, skillID string, m float64, now time.Time) store.SkillProgress {
	var p store.SkillProgress
	if existing != nil {
		p = *existing
	}
	p.UserID = userID
	p.SkillID = skillID
	p.Mastery = m
	p.Status = ResolveStatus(m, existing)

	if p.Status != store.SkillLocked && p.UnlockedAt == nil {
		t := now
		p.UnlockedAt = &t
	}
	switch {
	case p.Status != store.SkillMastered:
		p.MasteredAt = nil
	case p.MasteredAt == nil:
		t := now
		p.MasteredAt = &t
	}
	return p
}
