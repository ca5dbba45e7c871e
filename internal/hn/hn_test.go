package hn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/matheuskafuri/techpulse/internal/corpus"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v0/topstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[1, 2, 3, 4, 5]`)
	})
	mux.HandleFunc("/v0/newstories.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[9, 8]`)
	})
	mux.HandleFunc("/v0/item/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v0/item/"), ".json")
		switch id {
		case "1":
			fmt.Fprint(w, `{"id":1,"type":"story","title":"Show HN: Rust in prod","by":"pg","time":1600000000,"score":10,"descendants":4}`)
		case "2":
			fmt.Fprint(w, `{"id":2,"type":"story","title":"Dead one","dead":true,"time":1600000100}`)
		case "3":
			fmt.Fprint(w, `null`)
		case "4":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "5":
			fmt.Fprint(w, `{"id":5,"type":"job","time":1600000200}`)
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStoryLists(t *testing.T) {
	srv := newTestServer(t)
	c := NewClientWithBaseURL(srv.Client(), srv.URL, srv.URL)

	ids, err := c.TopStories(context.Background(), 3)
	if err != nil {
		t.Fatalf("TopStories: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("TopStories = %v, want [1 2 3]", ids)
	}

	ids, err = c.NewStories(context.Background(), 0)
	if err != nil {
		t.Fatalf("NewStories: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("NewStories = %v, want 2 ids", ids)
	}
}

func TestItem(t *testing.T) {
	srv := newTestServer(t)
	c := NewClientWithBaseURL(srv.Client(), srv.URL, srv.URL)

	item, err := c.Item(context.Background(), 1)
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if item.Title != "Show HN: Rust in prod" || item.Descendants != 4 {
		t.Errorf("unexpected item: %+v", item)
	}

	if _, err := c.Item(context.Background(), 3); err == nil {
		t.Error("expected error for null item")
	}
	if _, err := c.Item(context.Background(), 4); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestItemsCollectsErrors(t *testing.T) {
	srv := newTestServer(t)
	c := NewClientWithBaseURL(srv.Client(), srv.URL, srv.URL)

	res, err := c.Items(context.Background(), []int64{1, 2, 3, 4, 5}, 2)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	// 2 is dead, 3 is null, 4 fails.
	if len(res.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(res.Items))
	}
	if res.Items[0].ID != 1 || res.Items[1].ID != 5 {
		t.Errorf("items out of order: %d, %d", res.Items[0].ID, res.Items[1].ID)
	}
	if len(res.Errors) != 2 {
		t.Errorf("got %d errors, want 2", len(res.Errors))
	}
}

func TestItemsCancelled(t *testing.T) {
	srv := newTestServer(t)
	c := NewClientWithBaseURL(srv.Client(), srv.URL, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Items(ctx, []int64{1, 5}, 1); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestItemRecord(t *testing.T) {
	r := Item{ID: 7, Title: "Go 1.24", Time: corpus.Unix(1600000000), Descendants: 3}.Record()
	if r.Title == nil || *r.Title != "Go 1.24" {
		t.Errorf("title = %v", r.Title)
	}
	ts, err := r.Time.Parse()
	if err != nil || ts.Unix() != 1600000000 {
		t.Errorf("time = %v, %v", ts, err)
	}

	r = Item{ID: 8, Type: "job", Time: corpus.Unix(1)}.Record()
	if r.Title != nil {
		t.Errorf("empty title should map to nil, got %q", *r.Title)
	}
}

func TestItemWithoutTime(t *testing.T) {
	var it Item
	if err := json.Unmarshal([]byte(`{"id":9,"type":"story","title":"No clock"}`), &it); err != nil {
		t.Fatal(err)
	}
	if _, err := it.Record().Time.Parse(); !errors.Is(err, corpus.ErrMissingTime) {
		t.Errorf("missing time: got %v, want ErrMissingTime", err)
	}

	if err := json.Unmarshal([]byte(`{"id":9,"time":0}`), &it); err != nil {
		t.Fatal(err)
	}
	ts, err := it.Record().Time.Parse()
	if err != nil || ts.Unix() != 0 {
		t.Errorf("explicit zero time = %v, %v", ts, err)
	}
}

func TestItemURL(t *testing.T) {
	c := NewClient(nil)
	if got := c.ItemURL(42); got != "https://news.ycombinator.com/item?id=42" {
		t.Errorf("ItemURL = %q", got)
	}
}
