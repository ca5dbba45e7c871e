package cmd

import (
	"fmt"
	"os"

	"github.com/matheuskafuri/techpulse/internal/correlate"
	"github.com/matheuskafuri/techpulse/internal/report"
	"github.com/spf13/cobra"
)

var flagTargetHour int

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlate posting hour with discussion volume",
	Long: `Group stories by local hour of posting and compare how close that hour is to the
target hour (default 20:00 in the configured timezone) with the total number of
comments. Both series are min-max scaled before the Pearson coefficient is taken.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hour, err := targetHour(cmd.Flags().Changed("hour"))
		if err != nil {
			return err
		}
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}
		res, err := correlate.Run(records, correlate.Options{
			Location:   cfg.Location(),
			TargetHour: hour,
		})
		if err != nil {
			return err
		}
		return report.Correlation(os.Stdout, res)
	},
}

// targetHour checks --hour before anything is fetched.
func targetHour(flagSet bool) (int, error) {
	if !flagSet {
		return cfg.TargetHour(), nil
	}
	if flagTargetHour < 0 || flagTargetHour > 23 {
		return 0, fmt.Errorf("invalid --hour %d: %w", flagTargetHour, correlate.ErrBadHour)
	}
	return flagTargetHour, nil
}

func init() {
	correlateCmd.Flags().IntVar(&flagTargetHour, "hour", correlate.DefaultTargetHour, "target hour of day (0-23)")
}
