package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/practice"
	"github.com/abhisek/linguo/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a learner's most recent graded answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		clk, err := newClock()
		if err != nil {
			return err
		}

		events, err := practice.NewService(st, clk, cfg.HeartsEnabled).History(cmd.Context(), userFlag(cmd), limit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No answers yet.")
			return nil
		}

		loc, _ := cfg.Location()
		fmt.Printf("%-16s  %-20s  %-3s  %-24s  %s\n", "When", "Question", "", "Answer", "Time")
		fmt.Println(strings.Repeat("─", 80))
		for _, e := range events {
			mark := theme.Correct.Render("✓  ")
			if !e.Correct {
				mark = theme.Incorrect.Render("✗  ")
			}
			ans := e.Answer
			if len(ans) > 24 {
				ans = ans[:21] + "..."
			}
			took := "-"
			if e.ResponseMs > 0 {
				took = fmt.Sprintf("%.1fs", float64(e.ResponseMs)/1000)
			}
			fmt.Printf("%-16s  %-20s  %s  %-24s  %s\n",
				e.CreatedAt.In(loc).Format("2006-01-02 15:04"), e.QuestionID, mark, ans, took)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of answers to show")
	addUserFlag(historyCmd)
}
