package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matheuskafuri/techpulse/internal/bucket"
	"github.com/matheuskafuri/techpulse/internal/forecast"
	"github.com/matheuskafuri/techpulse/internal/report"
	"github.com/matheuskafuri/techpulse/internal/vocab"
	"github.com/spf13/cobra"
)

var (
	flagTerm   string
	flagBucket string
	flagTable  string
	flagScheme string
	flagVocab  []string
	flagStrict bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print occurrence tables or a single term estimate",
	Long: `Compute, per bucket and term, the number of titles, the number of titles that
mention the term, their share and the probability of at least one mention in
the next bucket.

With --term the estimate for that term is printed for --bucket (default: the
latest bucket with articles). Otherwise the table chosen with --table is shown.`,
	Example: `  techpulse estimate --corpus hacker_news_data.json --term docker --bucket Jan
  techpulse estimate --scheme year-month --table share`,
	RunE: runEstimate,
}

func init() {
	addEstimateFlags(estimateCmd)
}

func addEstimateFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagTerm, "term", "", "print the estimate for one term")
	c.Flags().StringVar(&flagBucket, "bucket", "", "bucket to estimate from (e.g., Jan, 3, 2021-03, 2021-W09)")
	c.Flags().StringVar(&flagTable, "table", "probability", "table to print: probability, share, terms or articles")
	c.Flags().StringVar(&flagScheme, "scheme", "", "bucket scheme: month, year-month or week (default from config)")
	c.Flags().StringSliceVar(&flagVocab, "vocab", nil, "comma-separated terms overriding the configured vocabulary")
	c.Flags().BoolVar(&flagStrict, "strict", false, "fail on records with unreadable timestamps instead of skipping them")
}

// computeTables runs the pipeline with config and flag overrides applied.
func computeTables(cmd *cobra.Command) (*forecast.Tables, error) {
	var (
		v   vocab.Vocabulary
		err error
	)
	if len(flagVocab) > 0 {
		v, err = vocab.New(flagVocab)
	} else {
		v, err = cfg.Vocab()
	}
	if err != nil {
		return nil, err
	}

	scheme := cfg.Scheme()
	if flagScheme != "" {
		if scheme, err = bucket.ParseScheme(flagScheme); err != nil {
			return nil, err
		}
	}

	records, err := loadRecords(cmd.Context())
	if err != nil {
		return nil, err
	}

	return forecast.Run(records, v, forecast.Options{
		Scheme:  scheme,
		Workers: cfg.Workers(),
		Strict:  flagStrict || cfg.Strict,
	})
}

func runEstimate(cmd *cobra.Command, args []string) error {
	kind, err := report.ParseKind(flagTable)
	if err != nil {
		return err
	}

	t, err := computeTables(cmd)
	if err != nil {
		return err
	}
	out := os.Stdout

	if len(t.Buckets) == 0 {
		fmt.Fprintln(out, "No articles to analyse. Run `techpulse fetch` or pass --corpus.")
		return report.Rejected(out, t)
	}

	if flagTerm == "" {
		if err := report.Grid(out, t, kind); err != nil {
			return err
		}
		return report.Rejected(out, t)
	}

	if !t.Vocabulary.Contains(flagTerm) {
		return fmt.Errorf("term %q is not tracked (vocabulary: %s)", flagTerm, strings.Join(t.Vocabulary.Terms(), ", "))
	}
	key, err := selectBucket(t, flagBucket)
	if err != nil {
		return err
	}
	p, ok := t.Next(key, flagTerm)
	if !ok {
		return fmt.Errorf("no titles in bucket %s", t.Scheme.Label(key))
	}
	if err := report.Estimate(out, t.Scheme, p); err != nil {
		return err
	}
	return report.Rejected(out, t)
}

var errNoBucket = errors.New("no titles in bucket")

// selectBucket resolves --bucket, defaulting to the latest bucket present.
func selectBucket(t *forecast.Tables, raw string) (bucket.Key, error) {
	if raw == "" {
		return t.Buckets[len(t.Buckets)-1], nil
	}
	key, err := t.Scheme.ParseKey(raw)
	if err != nil {
		return 0, err
	}
	if !t.HasBucket(key) {
		return 0, fmt.Errorf("%w %s", errNoBucket, t.Scheme.Label(key))
	}
	return key, nil
}
