package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/corpus"
)

const hnrss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
<title>Hacker News: Front Page</title>
<link>https://news.ycombinator.com/</link>
<item>
  <title>Docker images are too big</title>
  <description><![CDATA[<p>Article URL: <a href="https://example.com/docker">https://example.com/docker</a></p><p>Points: 42</p><p># Comments: 17</p>]]></description>
  <pubDate>Mon, 01 Feb 2021 10:00:00 +0000</pubDate>
  <dc:creator>alice</dc:creator>
  <link>https://example.com/docker</link>
  <guid isPermaLink="false">https://news.ycombinator.com/item?id=26000000</guid>
</item>
<item>
  <title>A post with no HN link</title>
  <description>plain</description>
  <pubDate>Tue, 02 Feb 2021 10:00:00 +0000</pubDate>
  <link>https://blog.example.com/post</link>
</item>
<item>
  <title>Undated</title>
  <link>https://news.ycombinator.com/item?id=26000001</link>
</item>
</channel>
</rss>`

func TestParseHNRSS(t *testing.T) {
	records, err := NewRSSFetcher().Parse(hnrss)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	first := records[0]
	if first.ID != 26000000 {
		t.Errorf("ID = %d, want 26000000", first.ID)
	}
	if first.TitleText() != "Docker images are too big" {
		t.Errorf("title = %q", first.TitleText())
	}
	if first.Score != 42 || first.Descendants != 17 {
		t.Errorf("score/comments = %d/%d, want 42/17", first.Score, first.Descendants)
	}
	if first.By != "alice" {
		t.Errorf("by = %q, want alice", first.By)
	}
	ts, err := first.Time.Parse()
	if err != nil {
		t.Fatalf("time: %v", err)
	}
	if !ts.Equal(time.Date(2021, 2, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("time = %v", ts)
	}

	if records[1].ID >= 0 {
		t.Errorf("non-HN item should get a negative id, got %d", records[1].ID)
	}

	if records[2].ID != 26000001 {
		t.Errorf("ID from link = %d, want 26000001", records[2].ID)
	}
	if _, err := records[2].Time.Parse(); !errors.Is(err, corpus.ErrMissingTime) {
		t.Errorf("undated item: err = %v, want ErrMissingTime", err)
	}
}

func TestMaxAge(t *testing.T) {
	f := NewRSSFetcher()
	f.MaxAge = 24 * time.Hour
	records, err := f.Parse(hnrss)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// Both dated items are from 2021; only the undated one survives.
	if len(records) != 1 || records[0].ID != 26000001 {
		t.Errorf("got %+v", records)
	}
}

func TestArticleID(t *testing.T) {
	id1 := articleID("https://example.com/post-1")
	id2 := articleID("https://example.com/post-2")
	id1again := articleID("https://example.com/post-1")

	if id1 == id2 {
		t.Error("different URLs should produce different IDs")
	}
	if id1 != id1again {
		t.Error("same URL should produce same ID")
	}
	if id1 >= 0 || id2 >= 0 {
		t.Errorf("hashed ids must be negative: %d, %d", id1, id2)
	}
}

func TestHNItemID(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"https://news.ycombinator.com/item?id=123", 123, true},
		{"http://news.ycombinator.com/item?id=9", 9, true},
		{"https://news.ycombinator.com/news", 0, false},
		{"https://example.com/item?id=5", 0, false},
		{"https://news.ycombinator.com/item?id=abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := hnItemID(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Errorf("hnItemID(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
		{"<p>Points: 1</p><p>Comments: 2</p>", "Points: 1 Comments: 2"},
	}
	for _, tt := range tests {
		got := stripHTML(tt.input)
		if got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, hnrss)
	}))
	defer srv.Close()

	res := FetchAll(context.Background(), []config.Source{
		{Name: "front", Type: "rss", URL: srv.URL + "/frontpage", Enabled: true},
		{Name: "broken", Type: "rss", URL: srv.URL + "/broken", Enabled: true},
	})
	if len(res.Records) != 3 {
		t.Errorf("got %d records, want 3", len(res.Records))
	}
	if len(res.Errors) != 1 {
		t.Errorf("got %d errors, want 1", len(res.Errors))
	}
}
