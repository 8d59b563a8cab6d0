package skillgraph

import "strings"

// Level is a CEFR proficiency tier.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// AllLevels returns all levels from easiest to hardest.
func AllLevels() []Level {
	return []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}
}

// LevelAt returns the level for a placement index, clamped to [0,5].
func LevelAt(i int) Level {
	levels := AllLevels()
	if i < 0 {
		i = 0
	}
	if i >= len(levels) {
		i = len(levels) - 1
	}
	return levels[i]
}

// ParseLevel returns the index of a level string. Matching is
// case-insensitive. ok is false for empty or unknown strings.
func ParseLevel(s string) (index int, ok bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, l := range AllLevels() {
		if string(l) == s {
			return i, true
		}
	}
	return 0, false
}

// DisplayName returns a human-readable name for a level.
func (l Level) DisplayName() string {
	switch l {
	case LevelA1:
		return "Beginner"
	case LevelA2:
		return "Elementary"
	case LevelB1:
		return "Intermediate"
	case LevelB2:
		return "Upper Intermediate"
	case LevelC1:
		return "Advanced"
	case LevelC2:
		return "Proficient"
	default:
		return string(l)
	}
}
