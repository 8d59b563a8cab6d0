package content

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/linguo/internal/store"
)

// Summary counts the rows an import wrote.
type Summary struct {
	Language      string
	Concepts      int
	Skills        int
	Prerequisites int
	Questions     int
	Warnings      []string
}

// Import checks a pack and upserts its rows. Re-importing the same pack is
// idempotent; progress rows are never touched.
func Import(ctx context.Context, w store.ContentWriter, p *Pack) (*Summary, error) {
	warnings, err := Check(p)
	if err != nil {
		return nil, err
	}
	for _, msg := range warnings {
		log.WithField("language", p.Language.Code).Warn(msg)
	}

	sum := &Summary{Language: p.Language.Code, Warnings: warnings}
	if err := w.UpsertLanguage(ctx, store.Language{Code: p.Language.Code, Name: p.Language.Name}); err != nil {
		return nil, err
	}
	for _, c := range p.Concepts {
		if err := w.UpsertConcept(ctx, store.Concept{
			ID:           c.ID,
			LanguageCode: p.Language.Code,
			Name:         c.Name,
			CEFRLevel:    c.CEFR,
		}); err != nil {
			return nil, err
		}
		sum.Concepts++
	}

	skills, edges := p.graphRows()
	for _, s := range skills {
		if err := w.UpsertSkill(ctx, s); err != nil {
			return nil, err
		}
		sum.Skills++
	}
	for _, s := range p.Skills {
		for _, sc := range s.Concepts {
			weight := sc.Weight
			if weight == 0 {
				weight = 1
			}
			if err := w.UpsertSkillConcept(ctx, store.SkillConcept{SkillID: s.ID, ConceptID: sc.ID, Weight: weight}); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range edges {
		if err := w.UpsertPrerequisite(ctx, e); err != nil {
			return nil, err
		}
		sum.Prerequisites++
	}
	for _, q := range p.Questions {
		if err := w.UpsertQuestion(ctx, store.Question{
			ID:            q.ID,
			ConceptID:     q.Concept,
			Type:          q.Type,
			Prompt:        q.Prompt,
			CorrectAnswer: q.Answer,
		}); err != nil {
			return nil, err
		}
		sum.Questions++
	}

	log.WithFields(log.Fields{
		"language":  sum.Language,
		"concepts":  sum.Concepts,
		"skills":    sum.Skills,
		"questions": sum.Questions,
	}).Info("content pack imported")
	return sum, nil
}
