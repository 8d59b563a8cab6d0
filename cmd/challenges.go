package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/challenge"
	"github.com/abhisek/linguo/internal/ui/components"
	"github.com/abhisek/linguo/internal/ui/theme"
)

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "Show this week's challenges, generating them if needed",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		week, err := challenge.NewGenerator(st.ChallengeRepo(), clk, newRandom()).EnsureWeek(ctx)
		if err != nil {
			return err
		}
		standings, err := challenge.NewTracker(st.ChallengeRepo(), st.StatsRepo(), clk).Standings(ctx, userFlag(cmd), week)
		if err != nil {
			return err
		}

		if len(standings) > 0 {
			c := standings[0].Challenge
			fmt.Println(theme.Title.Render(fmt.Sprintf("Week of %s to %s",
				c.WeekStart.Format("Jan 2"), c.WeekEnd.Format("Jan 2"))))
			fmt.Println()
		}
		for _, s := range standings {
			fmt.Println(components.ChallengeRow(s.Challenge.Title, s.Progress, s.Challenge.Target, s.Challenge.XPReward, s.Completed, 48))
			fmt.Println()
		}
		return nil
	},
}

func init() {
	addUserFlag(challengesCmd)
}
