package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/linguo/internal/mastery"
	"github.com/abhisek/linguo/internal/skillgraph"
	"github.com/abhisek/linguo/internal/store"
	"github.com/abhisek/linguo/internal/ui/theme"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Browse the skill graph",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a language's skills in prerequisite order with the learner's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		userID := userFlag(cmd)
		ctx := cmd.Context()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		c := st.ContentRepo()
		var (
			skills   []store.Skill
			edges    []store.Prerequisite
			progress map[string]store.SkillProgress
		)
		eg, gctx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			rows, err := c.Skills(gctx, lang)
			skills = rows
			return err
		})
		eg.Go(func() error {
			rows, err := c.Prerequisites(gctx, lang)
			edges = rows
			return err
		})
		eg.Go(func() error {
			rows, err := st.ProgressRepo().SkillProgressFor(gctx, userID, lang)
			progress = rows
			return err
		})
		if err := eg.Wait(); err != nil {
			return err
		}
		if len(skills) == 0 {
			return fmt.Errorf("no skills found for language %q; import a content pack first", lang)
		}

		masteryOf := make(map[string]float64, len(progress))
		for id, p := range progress {
			masteryOf[id] = p.Mastery
		}

		g := skillgraph.NewGraph(skills, edges)
		if cycle := g.CycleNodes(); len(cycle) > 0 {
			fmt.Printf("warning: prerequisite cycle involving %s\n\n", strings.Join(cycle, ", "))
		}

		fmt.Printf("%-20s  %-24s  %4s  %-12s  %7s  %s\n",
			"ID", "Name", "CEFR", "Status", "Mastery", "Requires")
		fmt.Println(strings.Repeat("─", 90))

		for _, s := range g.TopologicalOrder() {
			name := s.Name
			if len(name) > 24 {
				name = name[:21] + "..."
			}

			p, ok := progress[s.ID]
			status := ""
			if ok {
				status = p.Status
			}
			prereqs := g.Prerequisites(s.ID)
			state := mastery.ResolveDisplayState(status, skillgraph.Unlockable(prereqs, masteryOf))

			var requires []string
			for _, e := range prereqs {
				requires = append(requires, fmt.Sprintf("%s@%.0f%%", e.PrerequisiteSkillID, e.MinMastery*100))
			}

			cefr := s.CEFRLevel
			if cefr == "" {
				cefr = "-"
			}
			label := fmt.Sprintf("%-12s", state)
			if style, ok := theme.StatusColors[status]; ok {
				label = style.Render(label)
			}
			fmt.Printf("%-20s  %-24s  %4s  %s  %6.0f%%  %s\n",
				s.ID, name, cefr, label, p.Mastery*100, strings.Join(requires, ", "))
		}

		fmt.Printf("\n%d skills\n", len(skills))
		return nil
	},
}

func init() {
	skillListCmd.Flags().String("lang", "es", "Language code")
	addUserFlag(skillListCmd)

	skillCmd.AddCommand(skillListCmd)
}
