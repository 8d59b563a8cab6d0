package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// ContentStore implements ContentRepo and ContentWriter.
type ContentStore struct {
	conn
}

var (
	_ ContentRepo   = (*ContentStore)(nil)
	_ ContentWriter = (*ContentStore)(nil)
)

func (r *ContentStore) Language(ctx context.Context, code string) (*Language, error) {
	q := r.b().Select("code", "name").From(r.b().Table(tLanguages)).Where(entsql.EQ("code", code))
	var l Language
	if err := r.queryRow(ctx, q).Scan(&l.Code, &l.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query language: %w", err)
	}
	return &l, nil
}

func (r *ContentStore) Languages(ctx context.Context) ([]Language, error) {
	q := r.b().Select("code", "name").From(r.b().Table(tLanguages)).OrderBy("code")
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query languages: %w", err)
	}
	defer rows.Close()

	var out []Language
	for rows.Next() {
		var l Language
		if err := rows.Scan(&l.Code, &l.Name); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ContentStore) Concept(ctx context.Context, id string) (*Concept, error) {
	q := r.b().Select("id", "language_code", "name", "cefr_level").
		From(r.b().Table(tConcepts)).
		Where(entsql.EQ("id", id))
	var c Concept
	if err := r.queryRow(ctx, q).Scan(&c.ID, &c.LanguageCode, &c.Name, &c.CEFRLevel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query concept: %w", err)
	}
	return &c, nil
}

func (r *ContentStore) Skill(ctx context.Context, id string) (*Skill, error) {
	q := r.b().Select("id", "language_code", "name", "cefr_level", "position").
		From(r.b().Table(tSkills)).
		Where(entsql.EQ("id", id))
	var s Skill
	if err := r.queryRow(ctx, q).Scan(&s.ID, &s.LanguageCode, &s.Name, &s.CEFRLevel, &s.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query skill: %w", err)
	}
	return &s, nil
}

func (r *ContentStore) Skills(ctx context.Context, languageCode string) ([]Skill, error) {
	q := r.b().Select("id", "language_code", "name", "cefr_level", "position").
		From(r.b().Table(tSkills)).
		Where(entsql.EQ("language_code", languageCode)).
		OrderBy("position", "id")
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	var out []Skill
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.LanguageCode, &s.Name, &s.CEFRLevel, &s.Position); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ContentStore) SkillConcepts(ctx context.Context, skillID string) ([]SkillConcept, error) {
	q := r.b().Select("skill_id", "concept_id", "weight").
		From(r.b().Table(tSkillConcepts)).
		Where(entsql.EQ("skill_id", skillID)).
		OrderBy("concept_id")
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query skill concepts: %w", err)
	}
	defer rows.Close()

	var out []SkillConcept
	for rows.Next() {
		var sc SkillConcept
		if err := rows.Scan(&sc.SkillID, &sc.ConceptID, &sc.Weight); err != nil {
			return nil, fmt.Errorf("scan skill concept: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *ContentStore) SkillsForConcept(ctx context.Context, conceptID string) ([]string, error) {
	q := r.b().Select("skill_id").
		From(r.b().Table(tSkillConcepts)).
		Where(entsql.EQ("concept_id", conceptID)).
		OrderBy("skill_id")
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query concept skills: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan concept skill: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *ContentStore) Prerequisites(ctx context.Context, languageCode string) ([]Prerequisite, error) {
	p := r.b().Table(tSkillPrerequisites)
	s := r.b().Table(tSkills)
	q := r.b().Select(p.C("skill_id"), p.C("prerequisite_skill_id"), p.C("min_mastery")).
		From(p).
		Join(s).On(p.C("skill_id"), s.C("id")).
		Where(entsql.EQ(s.C("language_code"), languageCode)).
		OrderBy(p.C("skill_id"), p.C("prerequisite_skill_id"))
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query prerequisites: %w", err)
	}
	defer rows.Close()

	var out []Prerequisite
	for rows.Next() {
		var e Prerequisite
		if err := rows.Scan(&e.SkillID, &e.PrerequisiteSkillID, &e.MinMastery); err != nil {
			return nil, fmt.Errorf("scan prerequisite: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ContentStore) questionSelect() (*entsql.Selector, *entsql.SelectTable, *entsql.SelectTable) {
	q := r.b().Table(tQuestions)
	c := r.b().Table(tConcepts)
	sel := r.b().Select().
		From(q).
		Join(c).On(q.C("concept_id"), c.C("id"))
	// Join aliases the concepts table, so its columns are taken afterwards.
	sel.Select(q.C("id"), q.C("concept_id"), q.C("type"), q.C("prompt"), q.C("correct_answer"), c.C("cefr_level"))
	return sel, q, c
}

func scanQuestion(sc interface{ Scan(...any) error }) (Question, error) {
	var q Question
	err := sc.Scan(&q.ID, &q.ConceptID, &q.Type, &q.Prompt, &q.CorrectAnswer, &q.CEFRLevel)
	return q, err
}

func (r *ContentStore) Question(ctx context.Context, id string) (*Question, error) {
	sel, qt, _ := r.questionSelect()
	sel.Where(entsql.EQ(qt.C("id"), id))
	q, err := scanQuestion(r.queryRow(ctx, sel))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query question: %w", err)
	}
	return &q, nil
}

func (r *ContentStore) Questions(ctx context.Context, languageCode string) ([]Question, error) {
	sel, qt, ct := r.questionSelect()
	sel.Where(entsql.EQ(ct.C("language_code"), languageCode)).OrderBy(qt.C("id"))
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *ContentStore) UpsertLanguage(ctx context.Context, l Language) error {
	q := r.b().Insert(tLanguages).
		Columns("code", "name").
		Values(l.Code, l.Name).
		OnConflict(entsql.ConflictColumns("code"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert language %s: %w", l.Code, err)
	}
	return nil
}

func (r *ContentStore) UpsertConcept(ctx context.Context, c Concept) error {
	q := r.b().Insert(tConcepts).
		Columns("id", "language_code", "name", "cefr_level").
		Values(c.ID, c.LanguageCode, c.Name, c.CEFRLevel).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert concept %s: %w", c.ID, err)
	}
	return nil
}

func (r *ContentStore) UpsertSkill(ctx context.Context, s Skill) error {
	q := r.b().Insert(tSkills).
		Columns("id", "language_code", "name", "cefr_level", "position").
		Values(s.ID, s.LanguageCode, s.Name, s.CEFRLevel, s.Position).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert skill %s: %w", s.ID, err)
	}
	return nil
}

func (r *ContentStore) UpsertSkillConcept(ctx context.Context, sc SkillConcept) error {
	q := r.b().Insert(tSkillConcepts).
		Columns("skill_id", "concept_id", "weight").
		Values(sc.SkillID, sc.ConceptID, sc.Weight).
		OnConflict(entsql.ConflictColumns("skill_id", "concept_id"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert skill concept %s/%s: %w", sc.SkillID, sc.ConceptID, err)
	}
	return nil
}

func (r *ContentStore) UpsertPrerequisite(ctx context.Context, p Prerequisite) error {
	q := r.b().Insert(tSkillPrerequisites).
		Columns("skill_id", "prerequisite_skill_id", "min_mastery").
		Values(p.SkillID, p.PrerequisiteSkillID, p.MinMastery).
		OnConflict(entsql.ConflictColumns("skill_id", "prerequisite_skill_id"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert prerequisite %s->%s: %w", p.SkillID, p.PrerequisiteSkillID, err)
	}
	return nil
}

func (r *ContentStore) UpsertQuestion(ctx context.Context, qu Question) error {
	q := r.b().Insert(tQuestions).
		Columns("id", "concept_id", "type", "prompt", "correct_answer").
		Values(qu.ID, qu.ConceptID, qu.Type, qu.Prompt, qu.CorrectAnswer).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := r.exec(ctx, q); err != nil {
		return fmt.Errorf("upsert question %s: %w", qu.ID, err)
	}
	return nil
}
