package mastery

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/errs"
	"github.com/abhisek/linguo/internal/skillgraph"
	"github.com/abhisek/linguo/internal/store"
)

// Service recomputes skill mastery from concept progress.
type Service struct {
	content  store.ContentRepo
	progress store.ProgressRepo
	clock    clock.Clock
}

// NewService creates a mastery service.
func NewService(content store.ContentRepo, progress store.ProgressRepo, clk clock.Clock) *Service {
	return &Service{content: content, progress: progress, clock: clk}
}

// RecomputeSkillMastery aggregates the user's concept masteries into the
// skill's progress row and persists it.
func (s *Service) RecomputeSkillMastery(ctx context.Context, skillID string, userID int64) (*store.SkillProgress, error) {
	p, _, err := s.recompute(ctx, skillID, userID)
	return p, err
}

// RecomputeForConcept recomputes every reachable skill that links the
// concept and returns the status transitions that occurred. Skills the user
// has not unlocked are left untouched so practice cannot bypass their
// prerequisites.
func (s *Service) RecomputeForConcept(ctx context.Context, conceptID string, userID int64) ([]StateTransition, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, err
	}
	if err := errs.CheckID("concept_id", conceptID); err != nil {
		return nil, err
	}

	skillIDs, err := s.content.SkillsForConcept(ctx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("load concept skills: %w", err)
	}

	var transitions []StateTransition
	for _, id := range skillIDs {
		ok, err := s.reachable(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		_, tr, err := s.recompute(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		if tr != nil {
			transitions = append(transitions, *tr)
		}
	}
	return transitions, nil
}

// reachable reports whether the user may progress the skill: it has a row
// that is not locked, or it has no row and its direct prerequisites are met.
func (s *Service) reachable(ctx context.Context, skillID string, userID int64) (bool, error) {
	existing, err := s.progress.SkillProgress(ctx, userID, skillID)
	if err != nil {
		return false, fmt.Errorf("load skill progress: %w", err)
	}
	if existing != nil {
		return existing.Status != store.SkillLocked, nil
	}

	skill, err := s.content.Skill(ctx, skillID)
	if err != nil {
		return false, fmt.Errorf("load skill: %w", err)
	}
	if skill == nil {
		return false, errs.NotFound("skill", skillID)
	}
	edges, err := s.content.Prerequisites(ctx, skill.LanguageCode)
	if err != nil {
		return false, fmt.Errorf("load prerequisites: %w", err)
	}
	var own []store.Prerequisite
	for _, e := range edges {
		if e.SkillID == skillID {
			own = append(own, e)
		}
	}
	if len(own) == 0 {
		return true, nil
	}
	progress, err := s.progress.SkillProgressFor(ctx, userID, skill.LanguageCode)
	if err != nil {
		return false, fmt.Errorf("load skill progress: %w", err)
	}
	mastery := make(map[string]float64, len(progress))
	for id, p := range progress {
		mastery[id] = p.Mastery
	}
	return skillgraph.Unlockable(own, mastery), nil
}

func (s *Service) recompute(ctx context.Context, skillID string, userID int64) (*store.SkillProgress, *StateTransition, error) {
	if err := errs.CheckUserID(userID); err != nil {
		return nil, nil, err
	}
	if err := errs.CheckID("skill_id", skillID); err != nil {
		return nil, nil, err
	}

	skill, err := s.content.Skill(ctx, skillID)
	if err != nil {
		return nil, nil, fmt.Errorf("load skill: %w", err)
	}
	if skill == nil {
		return nil, nil, errs.NotFound("skill", skillID)
	}

	links, err := s.content.SkillConcepts(ctx, skillID)
	if err != nil {
		return nil, nil, fmt.Errorf("load skill concepts: %w", err)
	}
	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.ConceptID
	}
	progress, err := s.progress.ConceptProgressFor(ctx, userID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load concept progress: %w", err)
	}
	cm := make(map[string]float64, len(progress))
	for id, p := range progress {
		cm[id] = p.Mastery
	}

	existing, err := s.progress.SkillProgress(ctx, userID, skillID)
	if err != nil {
		return nil, nil, fmt.Errorf("load skill progress: %w", err)
	}

	next := Apply(existing, userID, skillID, Aggregate(links, cm), s.clock.Now())
	if err := s.progress.UpsertSkillProgress(ctx, &next); err != nil {
		return nil, nil, err
	}

	from := ""
	if existing != nil {
		from = existing.Status
	}
	if from == next.Status {
		return &next, nil, nil
	}
	log.WithFields(log.Fields{
		"user_id":  userID,
		"skill_id": skillID,
		"from":     from,
		"to":       next.Status,
		"mastery":  next.Mastery,
	}).Debug("skill status changed")
	return &next, &StateTransition{SkillID: skillID, From: from, To: next.Status}, nil
}
