package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/app"
	"github.com/abhisek/linguo/internal/placement"
	placementscreen "github.com/abhisek/linguo/internal/screens/placement"
	"github.com/abhisek/linguo/internal/streak"
)

var placementCmd = &cobra.Command{
	Use:   "placement",
	Short: "Take the interactive placement quiz for a language",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		userID := userFlag(cmd)
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

		svc := placement.NewService(st.PlacementRepo(), st.ContentRepo(), st.ProgressRepo(), clk, newRandom())
		sess, err := svc.Start(ctx, userID, lang)
		if err != nil {
			return err
		}

		// Placement never changes hearts or streak, so one read serves the header.
		stats, err := streak.NewEngine(st.StatsRepo(), clk).RefreshHearts(ctx, userID)
		if err != nil {
			return err
		}
		status := func() (int, int) { return stats.Hearts, stats.CurrentStreak }

		return app.Run(placementscreen.NewQuizScreen(svc, sess.ID), status)
	},
}

func init() {
	placementCmd.Flags().String("lang", "es", "Language code")
	addUserFlag(placementCmd)
}
