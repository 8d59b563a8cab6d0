package skillgraph

import (
	"fmt"
	"strings"

	"github.com/abhisek/linguo/internal/store"
)

// Validate performs the structural checks that reject a skill set: duplicate
// IDs, unknown CEFR tags, dangling or self-referencing prerequisites and
// out-of-range thresholds. Cycles are not rejected here; NewGraph reports
// them through CycleNodes. Returns a combined error describing all problems
// found, or nil if valid.
func Validate(skills []store.Skill, edges []store.Prerequisite) error {
	var errs []string

	idSet := make(map[string]bool, len(skills))
	for _, s := range skills {
		if idSet[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate skill ID: %q", s.ID))
		}
		idSet[s.ID] = true
		if s.CEFRLevel != "" {
			if _, ok := ParseLevel(s.CEFRLevel); !ok {
				errs = append(errs, fmt.Sprintf("skill %q has unknown CEFR level %q", s.ID, s.CEFRLevel))
			}
		}
	}

	for _, e := range edges {
		if !idSet[e.SkillID] {
			errs = append(errs, fmt.Sprintf("prerequisite edge references nonexistent skill %q", e.SkillID))
		}
		if !idSet[e.PrerequisiteSkillID] {
			errs = append(errs, fmt.Sprintf("skill %q references nonexistent prerequisite %q", e.SkillID, e.PrerequisiteSkillID))
		}
		if e.SkillID == e.PrerequisiteSkillID {
			errs = append(errs, fmt.Sprintf("skill %q lists itself as a prerequisite", e.SkillID))
		}
		if e.MinMastery < 0 || e.MinMastery > 1 {
			errs = append(errs, fmt.Sprintf("skill %q prerequisite %q: minMastery must be in [0, 1], got %f", e.SkillID, e.PrerequisiteSkillID, e.MinMastery))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("skill graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
