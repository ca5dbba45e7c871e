package cmd

import (
	"fmt"

	"github.com/matheuskafuri/techpulse/internal/cache"
	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/corpus"
	"github.com/spf13/cobra"
)

var (
	flagMethod string
	flagLimit  int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch Hacker News stories into the local store",
	Long: `Download stories and store them for later estimates.

Methods:
  api       top stories from the Hacker News API (default)
  scraping  stories listed on the front page, detailed through the API
  feeds     the RSS/Atom feeds enabled in the config`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		limit := flagLimit
		if limit <= 0 {
			limit = cfg.TopLimit()
		}

		fmt.Println("Fetching stories...")
		n, err := refresh(cmd.Context(), db, flagMethod, limit)
		if err != nil {
			return err
		}
		fmt.Printf("Stored %d stories.\n", n)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON corpus into the local store",
	Long:  "Read a JSON array (or newline-delimited JSON) of Hacker News items and store them.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := corpus.LoadFile(args[0])
		if err != nil {
			return err
		}

		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		if err := db.UpsertRecords(records); err != nil {
			return fmt.Errorf("caching articles: %w", err)
		}
		fmt.Printf("Imported %d record(s) from %s.\n", len(records), args[0])
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&flagMethod, "method", methodAPI, "api, scraping or feeds")
	fetchCmd.Flags().IntVar(&flagLimit, "limit", 0, "number of stories (default from config)")
}
