package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func seedContent(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	w := s.ContentRepo()
	require.NoError(t, w.UpsertLanguage(ctx, Language{Code: "es", Name: "Spanish"}))
	require.NoError(t, w.UpsertLanguage(ctx, Language{Code: "fr", Name: "French"}))
	require.NoError(t, w.UpsertConcept(ctx, Concept{ID: "es-hola", LanguageCode: "es", Name: "hola", CEFRLevel: "A1"}))
	require.NoError(t, w.UpsertConcept(ctx, Concept{ID: "es-ser", LanguageCode: "es", Name: "ser", CEFRLevel: "A2"}))
	require.NoError(t, w.UpsertConcept(ctx, Concept{ID: "fr-bonjour", LanguageCode: "fr", Name: "bonjour", CEFRLevel: "A1"}))
	require.NoError(t, w.UpsertSkill(ctx, Skill{ID: "es-basics", LanguageCode: "es", Name: "Basics", CEFRLevel: "A1", Position: 1}))
	require.NoError(t, w.UpsertSkill(ctx, Skill{ID: "es-verbs", LanguageCode: "es", Name: "Verbs", CEFRLevel: "A2", Position: 2}))
	require.NoError(t, w.UpsertSkillConcept(ctx, SkillConcept{SkillID: "es-basics", ConceptID: "es-hola", Weight: 1}))
	require.NoError(t, w.UpsertSkillConcept(ctx, SkillConcept{SkillID: "es-verbs", ConceptID: "es-ser", Weight: 2}))
	require.NoError(t, w.UpsertPrerequisite(ctx, Prerequisite{SkillID: "es-verbs", PrerequisiteSkillID: "es-basics", MinMastery: 0.6}))
	require.NoError(t, w.UpsertQuestion(ctx, Question{ID: "q1", ConceptID: "es-hola", Type: "translation", Prompt: "hello", CorrectAnswer: "hola"}))
	require.NoError(t, w.UpsertQuestion(ctx, Question{ID: "q2", ConceptID: "es-ser", Type: "fill_blank", Prompt: "yo ___", CorrectAnswer: "soy"}))
	require.NoError(t, w.UpsertQuestion(ctx, Question{ID: "q3", ConceptID: "fr-bonjour", Type: "translation", Prompt: "hello", CorrectAnswer: "bonjour"}))
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "sqlite3", s.Dialect())
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked with a file-based DB below.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDBUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linguo.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linguo.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestContentRoundTrip(t *testing.T) {
	s := openTestStore(t)
	seedContent(t, s)
	ctx := context.Background()
	r := s.ContentRepo()

	langs, err := r.Languages(ctx)
	require.NoError(t, err)
	assert.Len(t, langs, 2)

	skills, err := r.Skills(ctx, "es")
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, "es-basics", skills[0].ID)

	prereqs, err := r.Prerequisites(ctx, "es")
	require.NoError(t, err)
	require.Len(t, prereqs, 1)
	assert.Equal(t, Prerequisite{SkillID: "es-verbs", PrerequisiteSkillID: "es-basics", MinMastery: 0.6}, prereqs[0])

	prereqs, err = r.Prerequisites(ctx, "fr")
	require.NoError(t, err)
	assert.Empty(t, prereqs)

	q, err := r.Question(ctx, "q2")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "A2", q.CEFRLevel)
	assert.Equal(t, "soy", q.CorrectAnswer)

	qs, err := r.Questions(ctx, "es")
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, []string{"A1", "A2"}, []string{qs[0].CEFRLevel, qs[1].CEFRLevel})

	qs, err = r.Questions(ctx, "fr")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "q3", qs[0].ID)

	skillIDs, err := r.SkillsForConcept(ctx, "es-ser")
	require.NoError(t, err)
	assert.Equal(t, []string{"es-verbs"}, skillIDs)

	missing, err := r.Question(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Upserting again replaces values rather than failing.
	require.NoError(t, r.UpsertSkillConcept(ctx, SkillConcept{SkillID: "es-verbs", ConceptID: "es-ser", Weight: 3}))
	scs, err := r.SkillConcepts(ctx, "es-verbs")
	require.NoError(t, err)
	require.Len(t, scs, 1)
	assert.Equal(t, 3.0, scs[0].Weight)
}

func TestConceptProgressUpsert(t *testing.T) {
	s := openTestStore(t)
	seedContent(t, s)
	ctx := context.Background()
	r := s.ProgressRepo()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got, err := r.ConceptProgress(ctx, 1, "es-hola")
	require.NoError(t, err)
	assert.Nil(t, got)

	p := &ConceptProgress{
		UserID: 1, ConceptID: "es-hola", Status: ConceptLearning, Mastery: 0.4,
		EasinessFactor: 2.6, IntervalDays: 1, Repetitions: 1, TotalAttempts: 1,
		CorrectAttempts: 1, NextReviewAt: now.AddDate(0, 0, 1), LastReviewedAt: now,
	}
	require.NoError(t, r.UpsertConceptProgress(ctx, p))

	p.Repetitions = 2
	p.IntervalDays = 6
	require.NoError(t, r.UpsertConceptProgress(ctx, p))

	got, err = r.ConceptProgress(ctx, 1, "es-hola")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Repetitions)
	assert.Equal(t, 6, got.IntervalDays)
	assert.True(t, got.NextReviewAt.Equal(now.AddDate(0, 0, 1)))

	byID, err := r.ConceptProgressFor(ctx, 1, []string{"es-hola", "es-ser"})
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	empty, err := r.ConceptProgressFor(ctx, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDueConcepts(t *testing.T) {
	s := openTestStore(t)
	seedContent(t, s)
	ctx := context.Background()
	r := s.ProgressRepo()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, p := range []*ConceptProgress{
		{UserID: 1, ConceptID: "es-hola", Status: ConceptLearning, EasinessFactor: 2.5, IntervalDays: 1, NextReviewAt: now.Add(-time.Hour), LastReviewedAt: now},
		{UserID: 1, ConceptID: "es-ser", Status: ConceptLearning, EasinessFactor: 2.5, IntervalDays: 1, NextReviewAt: now.Add(-48 * time.Hour), LastReviewedAt: now},
		{UserID: 1, ConceptID: "fr-bonjour", Status: ConceptLearning, EasinessFactor: 2.5, IntervalDays: 1, NextReviewAt: now.Add(-time.Hour), LastReviewedAt: now},
		{UserID: 2, ConceptID: "es-hola", Status: ConceptLearning, EasinessFactor: 2.5, IntervalDays: 1, NextReviewAt: now.Add(time.Hour), LastReviewedAt: now},
	} {
		require.NoError(t, r.UpsertConceptProgress(ctx, p))
	}

	due, err := r.DueConcepts(ctx, 1, "es", now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "es-ser", due[0].ConceptID, "most overdue first")
	assert.Equal(t, "es-hola", due[1].ConceptID)

	due, err = r.DueConcepts(ctx, 2, "es", now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestSkillProgressNullableTimes(t *testing.T) {
	s := openTestStore(t)
	seedContent(t, s)
	ctx := context.Background()
	r := s.ProgressRepo()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.UpsertSkillProgress(ctx, &SkillProgress{UserID: 1, SkillID: "es-basics", Status: SkillUnlocked, UnlockedAt: &now}))
	require.NoError(t, r.UpsertSkillProgress(ctx, &SkillProgress{UserID: 1, SkillID: "es-verbs", Status: SkillLocked}))

	got, err := r.SkillProgress(ctx, 1, "es-basics")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.UnlockedAt)
	assert.True(t, got.UnlockedAt.Equal(now))
	assert.Nil(t, got.MasteredAt)

	all, err := r.SkillProgressFor(ctx, 1, "es")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, SkillLocked, all["es-verbs"].Status)
}

func TestStatsAndDailyActivity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := s.StatsRepo()

	got, err := r.Stats(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, r.AddXP(ctx, 7, 30))
	got, err = r.Stats(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, MaxHearts, got.Hearts)
	assert.Equal(t, 30, got.XPTotal)

	refill := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.SetHearts(ctx, 7, 4, &refill))
	got, err = r.Stats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Hearts)
	require.NotNil(t, got.HeartsLastRefilled)
	assert.True(t, got.HeartsLastRefilled.Equal(refill))

	got.CurrentStreak = 3
	require.NoError(t, r.SaveStats(ctx, got))
	got, err = r.Stats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentStreak)

	require.NoError(t, r.AddDailyActivity(ctx, 7, "2026-03-10", 10, 1))
	require.NoError(t, r.AddDailyActivity(ctx, 7, "2026-03-10", 20, 1))
	day, err := r.DailyActivity(ctx, 7, "2026-03-10")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, 30, day.XPEarned)
	assert.Equal(t, 2, day.CorrectAnswers)

	day, err = r.DailyActivity(ctx, 7, "2026-03-11")
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestPlacementSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := s.PlacementRepo()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	sess := &PlacementSession{ID: "sess-1", UserID: 1, LanguageCode: "es", LevelIndex: 1, StartedAt: now}
	require.NoError(t, r.CreateSession(ctx, sess))
	require.NoError(t, r.RecordAnswer(ctx, PlacementAnswer{SessionID: "sess-1", QuestionID: "q1", Correct: true, AnsweredAt: now}))
	require.NoError(t, r.RecordAnswer(ctx, PlacementAnswer{SessionID: "sess-1", QuestionID: "q1", Correct: true, AnsweredAt: now}))

	sess.TotalQuestions = 1
	sess.CorrectCount = 1
	sess.ConsecutiveCorrect = 1
	sess.CompletedAt = &now
	require.NoError(t, r.SaveSession(ctx, sess))

	got, err := r.Session(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]bool{"q1": true}, got.Asked)
	assert.Equal(t, 1, got.TotalQuestions)
	require.NotNil(t, got.CompletedAt)

	missing, err := r.Session(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, r.SaveUserLanguage(ctx, UserLanguage{UserID: 1, LanguageCode: "es", CEFRLevel: "A2", PlacedAt: &now}))
	require.NoError(t, r.SaveUserLanguage(ctx, UserLanguage{UserID: 1, LanguageCode: "es", CEFRLevel: "B1", PlacedAt: &now}))
	ul, err := r.UserLanguage(ctx, 1, "es")
	require.NoError(t, err)
	require.NotNil(t, ul)
	assert.Equal(t, "B1", ul.CEFRLevel)
}

func TestChallengeXPAwardedOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := s.ChallengeRepo()
	weekStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Millisecond)

	c := WeeklyChallenge{ID: "correct_answers-2026-03-09", TemplateKey: "correct_answers", Type: "correct_answers",
		Title: "Answer 10", Target: 10, XPReward: 50, WeekStart: weekStart, WeekEnd: weekEnd}
	require.NoError(t, r.InsertChallenges(ctx, []WeeklyChallenge{c}))
	// Same template and week is ignored.
	dup := c
	dup.Target = 99
	require.NoError(t, r.InsertChallenges(ctx, []WeeklyChallenge{dup}))

	week, err := r.ChallengesForWeek(ctx, weekStart)
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, 10, week[0].Target)

	active, err := r.ActiveChallenges(ctx, "correct_answers", weekStart.Add(36*time.Hour))
	require.NoError(t, err)
	assert.Len(t, active, 1)
	active, err = r.ActiveChallenges(ctx, "correct_answers", weekEnd.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, r.EnsureUserChallenge(ctx, 1, c.ID))
	require.NoError(t, r.EnsureUserChallenge(ctx, 1, c.ID))
	uc, err := r.AddProgress(ctx, 1, c.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, uc.Progress)
	uc, err = r.AddProgress(ctx, 1, c.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 11, uc.Progress)

	done, err := r.MarkCompleted(ctx, 1, c.ID, weekStart.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, done)
	done, err = r.MarkCompleted(ctx, 1, c.ID, weekStart.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, done)

	awarded, err := r.MarkXPAwarded(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.True(t, awarded)
	awarded, err = r.MarkXPAwarded(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.False(t, awarded, "xp must be awarded at most once")
}

func TestEventAppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := s.EventRepo()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Append(ctx, AnswerEvent{
			UserID: 1, QuestionID: fmt.Sprintf("q%d", i), ConceptID: "es-hola",
			Answer: "hola", Correct: i%2 == 0, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, r.Append(ctx, AnswerEvent{UserID: 2, QuestionID: "q9", CreatedAt: base}))

	events, err := r.Recent(ctx, 1, QueryOpts{Limit: 3})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "q4", events[0].QuestionID)
	assert.True(t, events[0].Correct)

	events, err = r.Recent(ctx, 1, QueryOpts{From: base.Add(3 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestDefaultDBPathEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "custom.db")
	t.Setenv("LINGUO_DB", path)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.DirExists(t, filepath.Dir(path))
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LINGUO_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "linguo", "linguo.db"), got)
}
