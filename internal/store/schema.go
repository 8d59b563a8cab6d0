package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tLanguages          = "languages"
	tConcepts           = "concepts"
	tSkills             = "skills"
	tSkillConcepts      = "skill_concepts"
	tSkillPrerequisites = "skill_prerequisites"
	tQuestions          = "questions"
	tConceptProgress    = "concept_progress"
	tSkillProgress      = "skill_progress"
	tUserStats          = "user_stats"
	tDailyActivity      = "daily_activity"
	tUserLanguages      = "user_languages"
	tPlacementSessions  = "placement_sessions"
	tPlacementAnswers   = "placement_answers"
	tWeeklyChallenges   = "weekly_challenges"
	tUserChallenges     = "user_challenges"
	tAnswerEvents       = "answer_events"
)

func str(name string, size int64) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeString, Size: size}
}

func i64(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt64}
}

func integer(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeInt}
}

func float(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeFloat64}
}

func boolean(name string) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeBool}
}

func timestamp(name string, nullable bool) *schema.Column {
	return &schema.Column{Name: name, Type: field.TypeTime, Nullable: nullable}
}

// table builds a schema table. pk lists the primary key column names and each
// entry of uniques lists the columns of one unique index.
func table(name string, cols []*schema.Column, pk []string, uniques ...[]string) *schema.Table {
	t := &schema.Table{Name: name, Columns: cols}
	byName := make(map[string]*schema.Column, len(cols))
	for _, c := range cols {
		byName[c.Name] = c
	}
	for _, n := range pk {
		t.PrimaryKey = append(t.PrimaryKey, byName[n])
	}
	for _, u := range uniques {
		idx := &schema.Index{Name: name + "_" + strings.Join(u, "_"), Unique: true}
		for _, n := range u {
			idx.Columns = append(idx.Columns, byName[n])
		}
		t.Indexes = append(t.Indexes, idx)
	}
	return t
}

// Tables returns the full relational schema.
func Tables() []*schema.Table {
	events := table(tAnswerEvents, []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		i64("user_id"),
		str("question_id", 128),
		str("concept_id", 128),
		str("answer", 1024),
		boolean("correct"),
		i64("response_ms"),
		timestamp("created_at", false),
	}, []string{"id"})
	events.Indexes = append(events.Indexes, &schema.Index{
		Name:    "answer_events_user_id_created_at",
		Columns: []*schema.Column{events.Columns[1], events.Columns[7]},
	})

	return []*schema.Table{
		table(tLanguages, []*schema.Column{
			str("code", 16),
			str("name", 128),
		}, []string{"code"}),

		table(tConcepts, []*schema.Column{
			str("id", 128),
			str("language_code", 16),
			str("name", 255),
			str("cefr_level", 4),
		}, []string{"id"}),

		table(tSkills, []*schema.Column{
			str("id", 128),
			str("language_code", 16),
			str("name", 255),
			str("cefr_level", 4),
			integer("position"),
		}, []string{"id"}),

		table(tSkillConcepts, []*schema.Column{
			str("skill_id", 128),
			str("concept_id", 128),
			float("weight"),
		}, []string{"skill_id", "concept_id"}),

		table(tSkillPrerequisites, []*schema.Column{
			str("skill_id", 128),
			str("prerequisite_skill_id", 128),
			float("min_mastery"),
		}, []string{"skill_id", "prerequisite_skill_id"}),

		table(tQuestions, []*schema.Column{
			str("id", 128),
			str("concept_id", 128),
			str("type", 32),
			str("prompt", 1024),
			str("correct_answer", 1024),
		}, []string{"id"}),

		table(tConceptProgress, []*schema.Column{
			i64("user_id"),
			str("concept_id", 128),
			str("status", 16),
			float("mastery"),
			float("easiness_factor"),
			integer("interval_days"),
			integer("repetitions"),
			integer("total_attempts"),
			integer("correct_attempts"),
			timestamp("next_review_at", false),
			timestamp("last_reviewed_at", false),
		}, []string{"user_id", "concept_id"}),

		table(tSkillProgress, []*schema.Column{
			i64("user_id"),
			str("skill_id", 128),
			str("status", 16),
			float("mastery"),
			timestamp("unlocked_at", true),
			timestamp("mastered_at", true),
		}, []string{"user_id", "skill_id"}),

		table(tUserStats, []*schema.Column{
			i64("user_id"),
			integer("hearts"),
			timestamp("hearts_last_refilled", true),
			integer("xp_total"),
			integer("current_streak"),
			integer("longest_streak"),
			integer("streak_freezes"),
			integer("freezes_earned_total"),
			integer("total_correct_answers"),
			timestamp("last_activity", true),
		}, []string{"user_id"}),

		table(tDailyActivity, []*schema.Column{
			i64("user_id"),
			str("activity_date", 10),
			integer("xp_earned"),
			integer("correct_answers"),
		}, []string{"user_id", "activity_date"}),

		table(tUserLanguages, []*schema.Column{
			i64("user_id"),
			str("language_code", 16),
			str("cefr_level", 4),
			timestamp("placed_at", true),
		}, []string{"user_id", "language_code"}),

		table(tPlacementSessions, []*schema.Column{
			str("id", 36),
			i64("user_id"),
			str("language_code", 16),
			integer("level_index"),
			integer("consecutive_correct"),
			integer("consecutive_wrong"),
			integer("total_questions"),
			integer("correct_count"),
			timestamp("started_at", false),
			timestamp("completed_at", true),
		}, []string{"id"}),

		table(tPlacementAnswers, []*schema.Column{
			str("session_id", 36),
			str("question_id", 128),
			boolean("correct"),
			timestamp("answered_at", false),
		}, []string{"session_id", "question_id"}),

		table(tWeeklyChallenges, []*schema.Column{
			str("id", 160),
			str("template_key", 64),
			str("type", 32),
			str("title", 255),
			integer("target"),
			integer("xp_reward"),
			timestamp("week_start", false),
			timestamp("week_end", false),
		}, []string{"id"}, []string{"template_key", "week_start"}),

		table(tUserChallenges, []*schema.Column{
			i64("user_id"),
			str("challenge_id", 160),
			integer("progress"),
			timestamp("completed_at", true),
			boolean("xp_awarded"),
		}, []string{"user_id", "challenge_id"}),

		events,
	}
}

// migrate creates or updates every table.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables()...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
