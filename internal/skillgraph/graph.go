package skillgraph

import (
	"slices"
	"sort"

	"github.com/abhisek/linguo/internal/store"
)

// Graph holds one language's skill DAG with precomputed indices.
type Graph struct {
	skills     []store.Skill
	byID       map[string]*store.Skill
	prereqs    map[string][]store.Prerequisite
	dependents map[string][]string
	roots      []store.Skill
	topoOrder  []store.Skill
	cycle      []string
}

// NewGraph constructs a graph from skills and prerequisite edges. Edges that
// reference unknown skills are ignored. Skills on a cycle cannot be ordered;
// they are reported by CycleNodes and appended to the topological order by ID.
func NewGraph(skills []store.Skill, edges []store.Prerequisite) *Graph {
	gr := &Graph{
		skills:     slices.Clone(skills),
		byID:       make(map[string]*store.Skill, len(skills)),
		prereqs:    make(map[string][]store.Prerequisite),
		dependents: make(map[string][]string),
	}

	for i := range gr.skills {
		gr.byID[gr.skills[i].ID] = &gr.skills[i]
	}

	for _, e := range edges {
		if gr.byID[e.SkillID] == nil || gr.byID[e.PrerequisiteSkillID] == nil {
			continue
		}
		gr.prereqs[e.SkillID] = append(gr.prereqs[e.SkillID], e)
		gr.dependents[e.PrerequisiteSkillID] = append(gr.dependents[e.PrerequisiteSkillID], e.SkillID)
	}

	// Topological sort (Kahn's algorithm)
	inDegree := make(map[string]int, len(gr.skills))
	for i := range gr.skills {
		inDegree[gr.skills[i].ID] = len(gr.prereqs[gr.skills[i].ID])
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort initial queue for deterministic ordering
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		gr.topoOrder = append(gr.topoOrder, *gr.byID[id])

		sorted := slices.Clone(gr.dependents[id])
		sort.Strings(sorted)
		for _, depID := range sorted {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	for id, deg := range inDegree {
		if deg > 0 {
			gr.cycle = append(gr.cycle, id)
		}
	}
	sort.Strings(gr.cycle)
	for _, id := range gr.cycle {
		gr.topoOrder = append(gr.topoOrder, *gr.byID[id])
	}

	for i := range gr.skills {
		if len(gr.prereqs[gr.skills[i].ID]) == 0 {
			gr.roots = append(gr.roots, gr.skills[i])
		}
	}

	return gr
}

// Skill returns a skill by ID.
func (gr *Graph) Skill(id string) (store.Skill, bool) {
	s, ok := gr.byID[id]
	if !ok {
		return store.Skill{}, false
	}
	return *s, true
}

// Skills returns all skills in input order.
func (gr *Graph) Skills() []store.Skill {
	return slices.Clone(gr.skills)
}

// RootSkills returns all skills with no prerequisites.
func (gr *Graph) RootSkills() []store.Skill {
	return slices.Clone(gr.roots)
}

// Prerequisites returns the direct prerequisite edges for a skill.
func (gr *Graph) Prerequisites(id string) []store.Prerequisite {
	return slices.Clone(gr.prereqs[id])
}

// Dependents returns the IDs of skills that directly depend on the given skill.
func (gr *Graph) Dependents(id string) []string {
	deps := slices.Clone(gr.dependents[id])
	sort.Strings(deps)
	return deps
}

// TopologicalOrder returns all skills, prerequisites before dependents.
func (gr *Graph) TopologicalOrder() []store.Skill {
	return slices.Clone(gr.topoOrder)
}

// CycleNodes returns the IDs of skills that sit on or behind a prerequisite
// cycle, sorted. Empty for a valid DAG.
func (gr *Graph) CycleNodes() []string {
	return slices.Clone(gr.cycle)
}

// AtOrBelow returns skills whose level is at or below the given level index.
// Untagged skills, and skills with an unrecognized tag, are always included.
func (gr *Graph) AtOrBelow(levelIndex int) []store.Skill {
	var out []store.Skill
	for _, s := range gr.topoOrder {
		if s.CEFRLevel == "" {
			out = append(out, s)
			continue
		}
		if i, ok := ParseLevel(s.CEFRLevel); !ok || i <= levelIndex {
			out = append(out, s)
		}
	}
	return out
}
