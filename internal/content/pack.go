// Package content loads, validates and imports JSON content packs that
// describe one language's concepts, skill graph and questions.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/abhisek/linguo/internal/skillgraph"
	"github.com/abhisek/linguo/internal/store"
)

// SupportedMajor is the only pack format major version this build reads.
const SupportedMajor = "v1"

const schemaURL = "schema://linguo/content-pack.json"

//go:embed schema.json
var schemaJSON []byte

//go:embed packs/*.json
var builtin embed.FS

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Pack is the decoded form of a content pack.
type Pack struct {
	Version   string         `json:"version"`
	Language  PackLanguage   `json:"language"`
	Concepts  []PackConcept  `json:"concepts"`
	Skills    []PackSkill    `json:"skills"`
	Questions []PackQuestion `json:"questions"`
}

type PackLanguage struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type PackConcept struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	CEFR string `json:"cefr,omitempty"`
}

type PackSkill struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	CEFR          string             `json:"cefr,omitempty"`
	Concepts      []PackSkillConcept `json:"concepts"`
	Prerequisites []PackPrerequisite `json:"prerequisites,omitempty"`
}

// PackSkillConcept links a concept into a skill. An omitted weight means 1.
type PackSkillConcept struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight,omitempty"`
}

type PackPrerequisite struct {
	Skill      string  `json:"skill"`
	MinMastery float64 `json:"minMastery"`
}

type PackQuestion struct {
	ID      string `json:"id"`
	Concept string `json:"concept"`
	Type    string `json:"type"`
	Prompt  string `json:"prompt"`
	Answer  string `json:"answer"`
}

func packSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(schemaJSON, &doc); err != nil {
			compileErr = fmt.Errorf("parse pack schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add pack schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Parse decodes a pack and checks it against the pack schema. It does not
// check cross references; see Check.
func Parse(data []byte) (*Pack, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	sch, err := packSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var p Pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode pack: %w", err)
	}
	return &p, nil
}

// LoadFile reads and parses a pack from disk.
func LoadFile(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Builtin returns the embedded starter pack for a language code.
func Builtin(code string) (*Pack, error) {
	data, err := builtin.ReadFile("packs/" + code + ".json")
	if err != nil {
		return nil, fmt.Errorf("no built-in pack for %q", code)
	}
	return Parse(data)
}

// BuiltinCodes lists the languages with an embedded starter pack.
func BuiltinCodes() []string {
	entries, err := builtin.ReadDir("packs")
	if err != nil {
		return nil
	}
	var codes []string
	for _, e := range entries {
		codes = append(codes, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(codes)
	return codes
}

// Check validates the pack version and its cross references. Prerequisite
// cycles are not errors; they are returned as warnings.
func Check(p *Pack) (warnings []string, err error) {
	if !semver.IsValid(p.Version) {
		return nil, fmt.Errorf("invalid pack version %q", p.Version)
	}
	if major := semver.Major(p.Version); major != SupportedMajor {
		return nil, fmt.Errorf("unsupported pack version %s: want %s.x", p.Version, SupportedMajor)
	}

	var problems []string
	concepts := make(map[string]bool, len(p.Concepts))
	for _, c := range p.Concepts {
		if concepts[c.ID] {
			problems = append(problems, fmt.Sprintf("duplicate concept ID: %q", c.ID))
		}
		concepts[c.ID] = true
	}
	for _, s := range p.Skills {
		for _, sc := range s.Concepts {
			if !concepts[sc.ID] {
				problems = append(problems, fmt.Sprintf("skill %q references unknown concept %q", s.ID, sc.ID))
			}
		}
	}
	questions := make(map[string]bool, len(p.Questions))
	for _, q := range p.Questions {
		if questions[q.ID] {
			problems = append(problems, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		questions[q.ID] = true
		if !concepts[q.Concept] {
			problems = append(problems, fmt.Sprintf("question %q references unknown concept %q", q.ID, q.Concept))
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("content validation failed:\n  %s", strings.Join(problems, "\n  "))
	}

	skills, edges := p.graphRows()
	if err := skillgraph.Validate(skills, edges); err != nil {
		return nil, err
	}
	if cycle := skillgraph.NewGraph(skills, edges).CycleNodes(); len(cycle) > 0 {
		warnings = append(warnings, fmt.Sprintf("prerequisite cycle involving skills: %s", strings.Join(cycle, ", ")))
	}
	return warnings, nil
}

func (p *Pack) graphRows() ([]store.Skill, []store.Prerequisite) {
	skills := make([]store.Skill, 0, len(p.Skills))
	var edges []store.Prerequisite
	for i, s := range p.Skills {
		skills = append(skills, store.Skill{
			ID:           s.ID,
			LanguageCode: p.Language.Code,
			Name:         s.Name,
			CEFRLevel:    s.CEFR,
			Position:     i + 1,
		})
		for _, pr := range s.Prerequisites {
			edges = append(edges, store.Prerequisite{
				SkillID:             s.ID,
				PrerequisiteSkillID: pr.Skill,
				MinMastery:          pr.MinMastery,
			})
		}
	}
	return skills, edges
}
