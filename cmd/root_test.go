package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/corpus"
	"github.com/matheuskafuri/techpulse/internal/forecast"
	"github.com/matheuskafuri/techpulse/internal/hn"
	"github.com/matheuskafuri/techpulse/internal/vocab"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSelectBucket(t *testing.T) {
	title := "Docker on Windows"
	at := func(m time.Month) corpus.Timestamp {
		return corpus.Unix(time.Date(2021, m, 3, 0, 0, 0, 0, time.UTC).Unix())
	}
	tables, err := forecast.Run([]corpus.Record{
		{ID: 1, Title: &title, Time: at(time.January)},
		{ID: 2, Title: &title, Time: at(time.March)},
	}, vocab.MustNew("docker"), forecast.Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 3, false},
		{"Jan", 1, false},
		{"january", 1, false},
		{"3", 3, false},
		{"Feb", 0, true},
		{"Smarch", 0, true},
	}
	for _, tt := range tests {
		got, err := selectBucket(tables, tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("selectBucket(%q) error = %v", tt.raw, err)
			continue
		}
		if !tt.wantErr && int(got) != tt.want {
			t.Errorf("selectBucket(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestStoryLink(t *testing.T) {
	c := hn.NewClient(nil)
	tests := []struct {
		link string
		want string
	}{
		{"https://example.com/a", "https://example.com/a"},
		{"", "https://news.ycombinator.com/item?id=7"},
		{"item?id=7", "https://news.ycombinator.com/item?id=7"},
	}
	for _, tt := range tests {
		if got := storyLink(c, 7, tt.link); got != tt.want {
			t.Errorf("storyLink(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestFetchRecordsUnknownMethod(t *testing.T) {
	cfg = &config.Config{}
	if _, _, err := fetchRecords(context.Background(), "carrier-pigeon", 10); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90 * 24 * time.Hour); got != "90d" {
		t.Errorf("formatDuration(90d) = %q", got)
	}
	if got := formatDuration(5 * time.Hour); got != "5h" {
		t.Errorf("formatDuration(5h) = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
