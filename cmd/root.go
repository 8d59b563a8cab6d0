package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/clock"
	"github.com/abhisek/linguo/internal/config"
	"github.com/abhisek/linguo/internal/random"
	"github.com/abhisek/linguo/internal/store"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "linguo",
	Short:        "Language learning progression engine",
	Long:         "Linguo tracks spaced repetition, skill mastery, streaks, hearts, placement and weekly challenges for language learners.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		c.ConfigureLogging()
		cfg = c
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LINGUO_DB env var)")

	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(placementCmd)
	rootCmd.AddCommand(challengesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LINGUO_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the configured datastore. The caller closes it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	if cfg.DBDriver == store.DriverPostgres {
		st, err := store.Open(store.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return st, nil
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(store.DriverSQLite, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newClock returns the wall clock in the configured timezone.
func newClock() (clock.Clock, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return clock.New(loc), nil
}

// newRandom returns a seeded source when LINGUO_RANDOM_SEED is set.
func newRandom() random.Source {
	if cfg.RandomSeed != 0 {
		return random.New(cfg.RandomSeed)
	}
	return random.System()
}

// addUserFlag registers the --user flag shared by the learner commands.
func addUserFlag(c *cobra.Command) {
	c.Flags().Int64("user", 1, "Learner user ID")
}

func userFlag(c *cobra.Command) int64 {
	id, _ := c.Flags().GetInt64("user")
	return id
}
