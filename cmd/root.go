package cmd

import (
	"fmt"
	"os"

	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/logging"
	"github.com/matheuskafuri/techpulse/internal/update"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagLogLevel string
	flagCorpus   string
	flagSince    string
	flagRefresh  bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "techpulse",
	Short: "Estimate how likely tech terms are to show up on Hacker News",
	Long: `techpulse counts how often each tracked technology term appears in Hacker News
titles per time bucket and estimates the probability that the term is mentioned
at least once in the following period.

Without a subcommand it runs the estimate command.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runEstimate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagCorpus, "corpus", "", "read articles from a JSON file instead of the local store")
	rootCmd.PersistentFlags().StringVar(&flagSince, "since", "", "only use stored articles from the last duration (e.g., 90d, 720h)")
	rootCmd.PersistentFlags().BoolVar(&flagRefresh, "refresh", false, "fetch new articles into the store before running")

	addEstimateFlags(rootCmd)

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = c

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logging.Init(logging.Config{Level: level, Format: cfg.LogFormat})
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No config needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("techpulse %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		if res := update.Check(cmd.Context(), version); res != nil {
			fmt.Printf("A newer release is available: %s\n", res.LatestVersion)
		} else {
			fmt.Println("No newer release found.")
		}
	},
}

var flagCheck bool

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
