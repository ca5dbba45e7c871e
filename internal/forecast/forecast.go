// Package forecast runs the term-probability pipeline over a corpus:
// records are placed in time buckets, their titles encoded against the
// vocabulary, counts folded per bucket and turned into estimates.
package forecast

import (
	"fmt"

	"github.com/matheuskafuri/techpulse/internal/bucket"
	"github.com/matheuskafuri/techpulse/internal/corpus"
	"github.com/matheuskafuri/techpulse/internal/estimate"
	"github.com/matheuskafuri/techpulse/internal/logging"
	"github.com/matheuskafuri/techpulse/internal/presence"
	"github.com/matheuskafuri/techpulse/internal/vocab"
)

// Options control a pipeline run. The zero value buckets by month,
// encodes sequentially and excludes records with bad timestamps.
type Options struct {
	Scheme  bucket.Scheme
	Workers int
	// Strict fails the run on the first record with a bad timestamp instead
	// of excluding it.
	Strict bool
}

// Run computes the article, term, share and probability tables for records.
func Run(records []corpus.Record, v vocab.Vocabulary, opts Options) (*Tables, error) {
	if v.Len() == 0 {
		return nil, &vocab.ConfigError{Index: -1, Err: vocab.ErrEmpty}
	}
	scheme := opts.Scheme
	if scheme == "" {
		scheme = bucket.Month
	}

	logging.Debug().Int("records", len(records)).Str("scheme", string(scheme)).Msg("bucketing - START")
	keys := make([]bucket.Key, 0, len(records))
	titles := make([]*string, 0, len(records))
	var rejected []*corpus.DataError
	for i, r := range records {
		ts, err := r.Time.Parse()
		if err != nil {
			dataErr := &corpus.DataError{RecordID: r.ID, Index: i, Field: "time", Err: err}
			if opts.Strict {
				return nil, dataErr
			}
			logging.Warn().Int64("record_id", r.ID).Int("index", i).Err(err).Msg("excluding record")
			rejected = append(rejected, dataErr)
			continue
		}
		keys = append(keys, scheme.Key(ts))
		titles = append(titles, r.Title)
	}
	logging.Debug().Int("accepted", len(keys)).Int("rejected", len(rejected)).Msg("bucketing - END")

	logging.Debug().Int("workers", opts.Workers).Msg("encoding - START")
	enc := presence.NewEncoder(v)
	vectors := enc.EncodeAll(titles, opts.Workers)
	logging.Debug().Msg("encoding - END")

	agg := bucket.NewAggregator(v.Len())
	for i, vec := range vectors {
		if err := agg.Add(keys[i], vec); err != nil {
			return nil, fmt.Errorf("aggregating record #%d: %w", i, err)
		}
	}

	t, err := build(agg, v, scheme)
	if err != nil {
		return nil, err
	}
	t.Rejected = rejected
	logging.Debug().Int("buckets", len(t.Buckets)).Msg("estimates computed")
	return t, nil
}

func build(agg *bucket.Aggregator, v vocab.Vocabulary, scheme bucket.Scheme) (*Tables, error) {
	t := newTables(v, scheme)
	for _, key := range agg.Keys() {
		articles, counts, _ := agg.Counts(key)
		for i, n := range counts {
			s, err := estimate.New(key, v.Term(i), articles, n)
			if err != nil {
				return nil, err
			}
			t.put(s)
		}
		t.Buckets = append(t.Buckets, key)
	}
	return t, nil
}
