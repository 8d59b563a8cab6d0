package placement

import (
	"testing"
	"time"

	"github.com/abhisek/linguo/internal/random"
	"github.com/abhisek/linguo/internal/skillgraph"
	"github.com/abhisek/linguo/internal/store"
)

func newTestSession() *store.PlacementSession {
	return NewSession("s1", 1, "es", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestStep_LevelUpResetsCounters(t *testing.T) {
	s := newTestSession()
	if s.LevelIndex != 1 {
		t.Fatalf("start level = %d, want 1", s.LevelIndex)
	}

	for i := 0; i < 2; i++ {
		if tr := Step(s, true); tr.Moved() {
			t.Fatalf("moved after %d correct", i+1)
		}
	}
	tr := Step(s, true)
	if !tr.Moved() || s.LevelIndex != 2 {
		t.Errorf("level after 3 correct = %d, want 2", s.LevelIndex)
	}
	if s.ConsecutiveCorrect != 0 || s.ConsecutiveWrong != 0 {
		t.Errorf("counters = %d/%d, want 0/0", s.ConsecutiveCorrect, s.ConsecutiveWrong)
	}

	// A fourth correct answer only starts a new run.
	Step(s, true)
	if s.LevelIndex != 2 || s.ConsecutiveCorrect != 1 {
		t.Errorf("after 4th correct: level = %d run = %d, want 2/1", s.LevelIndex, s.ConsecutiveCorrect)
	}
	if s.TotalQuestions != 4 || s.CorrectCount != 4 {
		t.Errorf("totals = %d/%d, want 4/4", s.TotalQuestions, s.CorrectCount)
	}
}

func TestStep_LevelDownAndBounds(t *testing.T) {
	s := newTestSession()
	Step(s, false)
	Step(s, false)
	if s.LevelIndex != 0 {
		t.Errorf("level after 2 wrong = %d, want 0", s.LevelIndex)
	}
	Step(s, false)
	Step(s, false)
	if s.LevelIndex != 0 {
		t.Errorf("level below A1 = %d, want 0", s.LevelIndex)
	}

	s.LevelIndex = 5
	for i := 0; i < 3; i++ {
		Step(s, true)
	}
	if s.LevelIndex != 5 {
		t.Errorf("level above C2 = %d, want 5", s.LevelIndex)
	}
}

func TestStep_MixedAnswersResetRuns(t *testing.T) {
	s := newTestSession()
	Step(s, true)
	Step(s, true)
	Step(s, false)
	if s.ConsecutiveCorrect != 0 || s.ConsecutiveWrong != 1 {
		t.Errorf("counters = %d/%d, want 0/1", s.ConsecutiveCorrect, s.ConsecutiveWrong)
	}
	Step(s, true)
	if s.LevelIndex != 1 {
		t.Errorf("level = %d, want 1", s.LevelIndex)
	}
}

func TestStep_TerminalAtMaxQuestions(t *testing.T) {
	s := newTestSession()
	var tr Transition
	for i := 0; i < MaxQuestions; i++ {
		if IsTerminal(s) {
			t.Fatalf("terminal after %d questions", i)
		}
		tr = Step(s, i%2 == 0)
	}
	if !tr.Terminal || !IsTerminal(s) {
		t.Errorf("not terminal after %d questions", MaxQuestions)
	}
}

func TestEstimatedLevel(t *testing.T) {
	s := newTestSession()
	if got := EstimatedLevel(s); got != skillgraph.LevelA2 {
		t.Errorf("EstimatedLevel() = %v, want A2", got)
	}
}

func TestSelectQuestion(t *testing.T) {
	pool := []store.Question{
		{ID: "a1", CEFRLevel: "A1"},
		{ID: "a2-1", CEFRLevel: "A2"},
		{ID: "a2-2", CEFRLevel: "a2"},
		{ID: "b1", CEFRLevel: "B1"},
	}
	src := random.New(7)
	s := newTestSession()

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		q := SelectQuestion(src, pool, s)
		if q == nil {
			t.Fatal("SelectQuestion() = nil, want A2 question")
		}
		if q.ID != "a2-1" && q.ID != "a2-2" {
			t.Errorf("SelectQuestion() = %s, want an A2 question", q.ID)
		}
		s.Asked[q.ID] = true
		seen[q.ID] = true
	}
	if len(seen) != 2 {
		t.Errorf("asked questions repeated: %v", seen)
	}

	// Level exhausted: fall back to any unasked question.
	q := SelectQuestion(src, pool, s)
	if q == nil || (q.ID != "a1" && q.ID != "b1") {
		t.Errorf("fallback = %v, want a1 or b1", q)
	}

	s.Asked["a1"], s.Asked["b1"] = true, true
	if q := SelectQuestion(src, pool, s); q != nil {
		t.Errorf("SelectQuestion() = %s, want nil when exhausted", q.ID)
	}
}
