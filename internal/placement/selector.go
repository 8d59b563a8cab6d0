package placement

import (
	"strings"

	"github.com/abhisek/linguo/internal/random"
	"github.com/abhisek/linguo/internal/skillgraph"
	"github.com/abhisek/linguo/internal/store"
)

// SelectQuestion picks the next question for a session. It prefers an unasked
// question at the current level, then any unasked question in the pool. It
// returns nil when every question has been asked.
func SelectQuestion(src random.Source, pool []store.Question, s *store.PlacementSession) *store.Question {
	level := string(skillgraph.LevelAt(s.LevelIndex))

	var atLevel, unasked []int
	for i, q := range pool {
		if s.Asked[q.ID] {
			continue
		}
		unasked = append(unasked, i)
		if strings.EqualFold(strings.TrimSpace(q.CEFRLevel), level) {
			atLevel = append(atLevel, i)
		}
	}

	candidates := atLevel
	if len(candidates) == 0 {
		candidates = unasked
	}
	if len(candidates) == 0 {
		return nil
	}
	q := pool[candidates[src.IntN(len(candidates))]]
	return &q
}
