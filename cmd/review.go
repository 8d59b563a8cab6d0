package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/spacedrep"
	"github.com/abhisek/linguo/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List concepts due for review, most overdue first",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		ctx := cmd.Context()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		clk, err := newClock()
		if err != nil {
			return err
		}

		due, err := spacedrep.NewScheduler(st.ProgressRepo(), clk).DueConcepts(ctx, userFlag(cmd), lang)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println("Nothing due. Come back later!")
			return nil
		}

		fmt.Printf("%-24s  %-28s  %-8s  %7s  %7s\n", "Concept", "Name", "Status", "Overdue", "Mastery")
		fmt.Println(strings.Repeat("─", 84))
		for _, d := range due {
			name := d.ConceptID
			if c, err := st.ContentRepo().Concept(ctx, d.ConceptID); err == nil && c != nil {
				name = c.Name
			}
			status := fmt.Sprintf("%-8s", d.Status)
			if d.Status == spacedrep.ReviewOverdue {
				status = theme.Incorrect.Render(status)
			}
			fmt.Printf("%-24s  %-28s  %s  %6.1fd  %6.0f%%\n",
				d.ConceptID, name, status, d.OverdueDays, d.Mastery*100)
		}
		fmt.Printf("\n%d concepts due\n", len(due))
		return nil
	},
}

func init() {
	reviewCmd.Flags().String("lang", "es", "Language code")
	addUserFlag(reviewCmd)
}
