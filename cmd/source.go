package cmd

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/matheuskafuri/techpulse/internal/cache"
	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/corpus"
	"github.com/matheuskafuri/techpulse/internal/feed"
	"github.com/matheuskafuri/techpulse/internal/hn"
	"github.com/matheuskafuri/techpulse/internal/logging"
)

const (
	methodAPI      = "api"
	methodScraping = "scraping"
	methodFeeds    = "feeds"

	// Stories per front page.
	pageSize = 30
)

func hnClient() *hn.Client {
	return hn.NewClientWithBaseURL(&http.Client{Timeout: cfg.HNTimeout()}, cfg.HN.BaseURL, cfg.HN.SiteURL)
}

// loadRecords reads the corpus file when one is given, otherwise the local
// article store. The store is topped up first with --refresh or once it is
// older than refresh_interval; only a forced refresh fails the load.
func loadRecords(ctx context.Context) ([]corpus.Record, error) {
	path := flagCorpus
	if path == "" {
		path = cfg.Corpus
	}
	if path != "" {
		records, err := corpus.LoadFile(path)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("path", path).Int("records", len(records)).Msg("corpus loaded")
		return records, nil
	}

	db, err := cache.Open(config.CachePath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	if shouldRefresh(db, flagRefresh, cfg.RefreshDuration()) {
		if _, err := refresh(ctx, db, methodAPI, cfg.TopLimit()); err != nil {
			if flagRefresh {
				return nil, err
			}
			logging.Warn().Err(err).Msg("automatic refresh failed, using stored stories")
		}
	}

	var opts cache.QueryOpts
	if flagSince != "" {
		d, err := parseSince(flagSince)
		if err != nil {
			return nil, fmt.Errorf("invalid --since value: %w", err)
		}
		opts.Since = time.Now().Add(-d)
	}
	records, err := db.Records(opts)
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	logging.Info().Int("records", len(records)).Msg("store loaded")
	return records, nil
}

// fetchRecords pulls up to limit stories with the given method.
func fetchRecords(ctx context.Context, method string, limit int) ([]corpus.Record, []error, error) {
	switch method {
	case methodFeeds:
		result := feed.FetchAll(ctx, cfg.EnabledFeeds())
		return result.Records, result.Errors, nil

	case methodAPI, methodScraping:
		client := hnClient()
		var ids []int64
		if method == methodScraping {
			pages := int(math.Ceil(float64(limit) / pageSize))
			rows, err := client.Scrape(ctx, pages)
			if err != nil {
				return nil, nil, err
			}
			for _, r := range rows {
				ids = append(ids, r.ID)
			}
			if len(ids) > limit {
				ids = ids[:limit]
			}
		} else {
			var err error
			ids, err = client.TopStories(ctx, limit)
			if err != nil {
				return nil, nil, err
			}
		}

		res, err := client.Items(ctx, ids, 8)
		if err != nil {
			return nil, nil, err
		}
		records := make([]corpus.Record, len(res.Items))
		for i, it := range res.Items {
			records[i] = it.Record()
		}
		return records, res.Errors, nil
	}
	return nil, nil, fmt.Errorf("unknown method %q (want api, scraping or feeds)", method)
}

// shouldRefresh reports whether the store is fetched into before reading.
// A zero interval turns the automatic refresh off.
func shouldRefresh(db *cache.Cache, force bool, interval time.Duration) bool {
	if force {
		return true
	}
	return interval > 0 && db.NeedsRefresh(interval)
}

// refresh fetches into the store. Stored stories are never pruned here: an
// imported historical corpus is older than any retention window and only
// the explicit prune command may drop it.
func refresh(ctx context.Context, db *cache.Cache, method string, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	records, errs, err := fetchRecords(ctx, method, limit)
	if err != nil {
		return 0, fmt.Errorf("fetching: %w", err)
	}
	for _, e := range errs {
		logging.Warn().Err(e).Msg("fetch")
	}
	return storeFetched(db, records)
}

// storeFetched upserts fetched records and stamps the refresh time.
func storeFetched(db *cache.Cache, records []corpus.Record) (int, error) {
	if err := db.UpsertRecords(records); err != nil {
		return 0, fmt.Errorf("caching articles: %w", err)
	}
	if err := db.SetLastRefresh(); err != nil {
		return 0, fmt.Errorf("recording refresh time: %w", err)
	}
	return len(records), nil
}

func parseSince(s string) (time.Duration, error) {
	return config.ParseDays(s)
}
