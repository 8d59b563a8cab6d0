package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/challenge"
	"github.com/abhisek/linguo/internal/jobs"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background worker that generates weekly challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		clk, err := newClock()
		if err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		gen := challenge.NewGenerator(st.ChallengeRepo(), clk, newRandom())
		sched := jobs.NewScheduler(cfg.WeeklySchedule, loc, clk, jobs.EnsurerFunc(func(ctx context.Context, t time.Time) error {
			_, err := gen.EnsureWeekAt(ctx, t)
			return err
		}))
		if err := sched.Start(ctx); err != nil {
			return err
		}
		log.WithField("next", sched.Next()).Info("worker running")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("shutting down worker")
		cancel()
		sched.Stop()
		return nil
	},
}
