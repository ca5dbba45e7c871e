package cmd

import (
	"github.com/matheuskafuri/techpulse/internal/forecast"
	"github.com/matheuskafuri/techpulse/internal/report"
	"github.com/matheuskafuri/techpulse/internal/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Explore the estimates interactively",
	Long:  "Open the explorer: move between buckets and terms and see the estimate for the next period.",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := computeTables(cmd)
		if err != nil {
			return err
		}
		kind, err := report.ParseKind(flagTable)
		if err != nil {
			return err
		}

		opts := tui.RunOpts{
			Tables: t,
			Kind:   kind,
			Reload: func() (*forecast.Tables, error) { return computeTables(cmd) },
		}
		if flagBucket != "" && len(t.Buckets) > 0 {
			key, err := selectBucket(t, flagBucket)
			if err != nil {
				return err
			}
			opts.Bucket = &key
		}
		return tui.Run(opts)
	},
}

func init() {
	addEstimateFlags(browseCmd)
}
