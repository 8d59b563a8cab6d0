package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/streak"
	"github.com/abhisek/linguo/internal/ui/components"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a learner's hearts, XP, level and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetInt("width")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		clk, err := newClock()
		if err != nil {
			return err
		}

		// RefreshHearts applies regeneration so the card shows current hearts.
		stats, err := streak.NewEngine(st.StatsRepo(), clk).RefreshHearts(cmd.Context(), userFlag(cmd))
		if err != nil {
			return err
		}
		fmt.Println(components.NewStatsCard(*stats, width).View())
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("width", 48, "Card width in columns")
	addUserFlag(statsCmd)
}
