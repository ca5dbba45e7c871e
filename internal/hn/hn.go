// Package hn reads stories from Hacker News, either through the Firebase API
// or by scraping the front page.
package hn

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"github.com/matheuskafuri/techpulse/internal/corpus"
	"golang.org/x/sync/errgroup"
)

const (
	BaseURL = "https://hacker-news.firebaseio.com"
	SiteURL = "https://news.ycombinator.com"
)

// Item is a Hacker News item as served by the API.
type Item struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	URL         string           `json:"url"`
	Score       int              `json:"score"`
	Descendants int              `json:"descendants"`
	By          string           `json:"by"`
	Time        corpus.Timestamp `json:"time"`
	Type        string           `json:"type"`
	Deleted     bool             `json:"deleted"`
	Dead        bool             `json:"dead"`
}

// Record converts the item to a corpus record.
func (it Item) Record() corpus.Record {
	r := corpus.Record{
		ID:          it.ID,
		Time:        it.Time,
		By:          it.By,
		URL:         it.URL,
		Type:        it.Type,
		Score:       it.Score,
		Descendants: it.Descendants,
	}
	if it.Title != "" {
		title := it.Title
		r.Title = &title
	}
	return r
}

type Client struct {
	http    *http.Client
	baseURL string
	siteURL string
}

// NewClient returns a client for the public API. A nil http.Client uses
// http.DefaultClient.
func NewClient(client *http.Client) *Client {
	return NewClientWithBaseURL(client, BaseURL, SiteURL)
}

// NewClientWithBaseURL points the client at other hosts, mainly for tests.
func NewClientWithBaseURL(client *http.Client, baseURL, siteURL string) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{http: client, baseURL: baseURL, siteURL: siteURL}
}

// TopStories returns up to limit ids from the top stories list.
func (c *Client) TopStories(ctx context.Context, limit int) ([]int64, error) {
	return c.storyList(ctx, "topstories", limit)
}

// NewStories returns up to limit ids of the newest stories.
func (c *Client) NewStories(ctx context.Context, limit int) ([]int64, error) {
	return c.storyList(ctx, "newstories", limit)
}

func (c *Client) storyList(ctx context.Context, name string, limit int) ([]int64, error) {
	var ids []int64
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v0/%s.json", c.baseURL, name), &ids); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

// Item fetches one item. A missing item is an error.
func (c *Client) Item(ctx context.Context, id int64) (*Item, error) {
	var item *Item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v0/item/%d.json", c.baseURL, id), &item); err != nil {
		return nil, fmt.Errorf("fetching item %d: %w", id, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found", id)
	}
	return item, nil
}

// ItemsResult holds the items that could be fetched, in request order, and
// the errors of those that could not.
type ItemsResult struct {
	Items  []Item
	Errors []error
}

// Items fetches ids concurrently with at most workers requests in flight.
// A failing item is reported in Errors and skipped; only cancellation of
// ctx aborts the batch.
func (c *Client) Items(ctx context.Context, ids []int64, workers int) (ItemsResult, error) {
	if workers <= 0 {
		workers = 8
	}
	slots := make([]*Item, len(ids))
	var (
		mu     sync.Mutex
		result ItemsResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			item, err := c.Item(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				result.Errors = append(result.Errors, err)
				mu.Unlock()
				return nil
			}
			slots[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ItemsResult{}, err
	}

	for _, it := range slots {
		if it != nil && !it.Deleted && !it.Dead {
			result.Items = append(result.Items, *it)
		}
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ItemURL is the discussion page of an item.
func (c *Client) ItemURL(id int64) string {
	return c.siteURL + "/item?id=" + strconv.FormatInt(id, 10)
}
