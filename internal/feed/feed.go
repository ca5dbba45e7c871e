// Package feed turns RSS and Atom listings of Hacker News stories (such as
// hnrss.org) into corpus records.
package feed

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/corpus"
	"github.com/mmcdole/gofeed"
)

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]corpus.Record, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
	// MaxAge drops items published earlier than now-MaxAge. Zero keeps all.
	MaxAge time.Duration
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]corpus.Record, error) {
	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	return f.records(feed, time.Now()), nil
}

// Parse reads an already downloaded feed document.
func (f *RSSFetcher) Parse(body string) ([]corpus.Record, error) {
	feed, err := f.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return f.records(feed, time.Now()), nil
}

func (f *RSSFetcher) records(feed *gofeed.Feed, now time.Time) []corpus.Record {
	out := make([]corpus.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		var pub *time.Time
		if item.PublishedParsed != nil {
			pub = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = item.UpdatedParsed
		}

		if pub != nil && f.MaxAge > 0 && pub.Before(now.Add(-f.MaxAge)) {
			continue
		}

		r := corpus.Record{
			ID:   recordID(item),
			URL:  item.Link,
			Type: "story",
		}
		if t := strings.TrimSpace(item.Title); t != "" {
			r.Title = &t
		}
		// An undated item keeps an empty timestamp and is rejected by the
		// pipeline rather than silently dated to now.
		if pub != nil {
			r.Time = corpus.Unix(pub.Unix())
		}
		if item.Author != nil {
			r.By = item.Author.Name
		}
		desc := stripHTML(item.Description)
		r.Score = counter(pointsRe, desc)
		r.Descendants = counter(commentsRe, desc)
		out = append(out, r)
	}
	return out
}

var (
	pointsRe   = regexp.MustCompile(`Points:\s*(\d+)`)
	commentsRe = regexp.MustCompile(`Comments:\s*(\d+)`)
)

func counter(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// recordID prefers the Hacker News item id found in the guid or comments
// link. Items without one get a negative id hashed from their link so they
// can never collide with a real item.
func recordID(item *gofeed.Item) int64 {
	for _, candidate := range []string{item.GUID, item.Link} {
		if id, ok := hnItemID(candidate); ok {
			return id
		}
	}
	key := item.Link
	if key == "" {
		key = item.GUID
	}
	return articleID(key)
}

func hnItemID(raw string) (int64, bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Hostname(), "ycombinator.com") || u.Path != "/item" {
		return 0, false
	}
	id, err := strconv.ParseInt(u.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func articleID(link string) int64 {
	h := fnv.New64a()
	h.Write([]byte(link))
	return -int64(h.Sum64()>>1) - 1
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

type FetchResult struct {
	Records []corpus.Record
	Errors  []error
}

func FetchAll(ctx context.Context, sources []config.Source) FetchResult {
	return FetchAllWith(ctx, NewRSSFetcher(), sources)
}

// FetchAllWith fetches every source concurrently. A failing source is
// recorded in Errors and does not stop the others.
func FetchAllWith(ctx context.Context, fetcher Fetcher, sources []config.Source) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
		wg     sync.WaitGroup
	)

	for _, src := range sources {
		wg.Add(1)
		go func(s config.Source) {
			defer wg.Done()
			records, err := fetcher.Fetch(ctx, s)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				return
			}
			result.Records = append(result.Records, records...)
		}(src)
	}

	wg.Wait()
	return result
}
