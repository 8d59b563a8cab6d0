// Package challenge generates weekly challenges and tracks each user's
// progress against them.
package challenge

import "fmt"

// Challenge types. Each names the counter a challenge's progress follows.
const (
	TypeCorrectAnswers   = "correct_answers"
	TypeXPEarned         = "xp_earned"
	TypeConceptsReviewed = "concepts_reviewed"
	TypeSkillsUnlocked   = "skills_unlocked"
	TypeStreakDays       = "streak_days"
)

// PerWeek is the number of challenges generated for each week.
const PerWeek = 3

// Template describes a challenge before it is instantiated for a week. The
// target is drawn uniformly from [MinTarget, MaxTarget].
type Template struct {
	Key       string
	Type      string
	Title     string // format string taking the target
	MinTarget int
	MaxTarget int
	XPReward  int
}

// TitleFor renders the template title for a target.
func (t Template) TitleFor(target int) string {
	return fmt.Sprintf(t.Title, target)
}

var catalog = []Template{
	{Key: "correct-answers", Type: TypeCorrectAnswers, Title: "Answer %d questions correctly", MinTarget: 30, MaxTarget: 60, XPReward: 50},
	{Key: "correct-answers-marathon", Type: TypeCorrectAnswers, Title: "Marathon: %d correct answers", MinTarget: 100, MaxTarget: 150, XPReward: 120},
	{Key: "xp-earned", Type: TypeXPEarned, Title: "Earn %d XP", MinTarget: 200, MaxTarget: 500, XPReward: 75},
	{Key: "concepts-reviewed", Type: TypeConceptsReviewed, Title: "Review %d concepts", MinTarget: 15, MaxTarget: 30, XPReward: 50},
	{Key: "skills-unlocked", Type: TypeSkillsUnlocked, Title: "Unlock %d new skills", MinTarget: 1, MaxTarget: 3, XPReward: 100},
	{Key: "streak-days", Type: TypeStreakDays, Title: "Practice on %d different days", MinTarget: 3, MaxTarget: 7, XPReward: 60},
}

// Catalog returns a copy of the template catalog.
func Catalog() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

// Types returns every challenge type, in catalog order and without repeats.
func Types() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range catalog {
		if !seen[t.Type] {
			seen[t.Type] = true
			out = append(out, t.Type)
		}
	}
	return out
}

// KnownType reports whether typ names a challenge type in the catalog.
func KnownType(typ string) bool {
	for _, t := range catalog {
		if t.Type == typ {
			return true
		}
	}
	return false
}
