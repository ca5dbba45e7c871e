package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matheuskafuri/techpulse/internal/cache"
	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/spf13/cobra"
)

var flagPruneOlderThan string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop stories posted before a cutoff from the corpus store",
	Long: `Delete stored stories whose posting time is older than the cutoff and
reclaim disk space. The estimates only see what the store still holds, so
pruning shortens the history every bucket is computed from.

The cutoff is the retention value from config (default: 365d) unless
overridden with --older-than. Fetching never prunes on its own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cache.Open(config.CachePath())
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}
		cutoff := time.Now().Add(-retention).UTC()
		if deleted == 0 {
			fmt.Printf("No stories posted before %s.\n", cutoff.Format(time.DateOnly))
		} else {
			fmt.Printf("Dropped %d stories posted before %s (%s ago).\n", deleted, cutoff.Format(time.DateOnly), formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how much history the corpus store covers",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.CachePath()
		db, err := cache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer db.Close()
		return writeStats(os.Stdout, db, dbPath)
	},
}

// writeStats prints the store's size, the posting range of its stories and
// when it was last fetched into.
func writeStats(w io.Writer, db *cache.Cache, dbPath string) error {
	count, size, err := db.Stats(dbPath)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	oldest, newest, ok, err := db.Span()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Store:   %s (%s)\n", dbPath, formatBytes(size))
	fmt.Fprintf(w, "Stories: %d\n", count)
	if ok {
		fmt.Fprintf(w, "Posted:  %s to %s (%s)\n", oldest.Format(time.DateOnly), newest.Format(time.DateOnly), formatDuration(newest.Sub(oldest)))
	} else {
		fmt.Fprintln(w, "Posted:  no dated stories")
	}
	if last, ok := db.LastRefresh(); ok {
		fmt.Fprintf(w, "Fetched: %s\n", last.Local().Format(time.DateTime))
	} else {
		fmt.Fprintln(w, "Fetched: never")
	}
	if cfg != nil && cfg.Corpus != "" {
		fmt.Fprintf(w, "Corpus:  %s (used instead of the store)\n", cfg.Corpus)
	}
	return nil
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "cutoff age of posting time (e.g., 730d, 720h)")
}

func formatDuration(d time.Duration) string {
	h := d.Hours()
	days := int(h / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(h))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
