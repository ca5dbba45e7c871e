package hn

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Listing is one row of the front page.
type Listing struct {
	Rank  int
	ID    int64
	Title string
	Link  string
}

// Scrape reads the given number of front-page pages and returns their rows
// in page order.
func (c *Client) Scrape(ctx context.Context, pages int) ([]Listing, error) {
	if pages <= 0 {
		pages = 1
	}
	var out []Listing
	for p := 1; p <= pages; p++ {
		rows, err := c.scrapePage(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (c *Client) scrapePage(ctx context.Context, page int) ([]Listing, error) {
	url := fmt.Sprintf("%s/news?p=%d", c.siteURL, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraping page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scraping page %d: status %d", page, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing page %d: %w", page, err)
	}
	return parseListings(doc), nil
}

func parseListings(doc *goquery.Document) []Listing {
	var out []Listing
	doc.Find("tr.athing").Each(func(_ int, row *goquery.Selection) {
		id, err := strconv.ParseInt(row.AttrOr("id", ""), 10, 64)
		if err != nil {
			return
		}
		rank, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(row.Find("span.rank").Text()), "."))

		// Newer markup wraps the link in span.titleline, older uses a.storylink.
		link := row.Find("span.titleline > a").First()
		if link.Length() == 0 {
			link = row.Find("a.storylink").First()
		}
		out = append(out, Listing{
			Rank:  rank,
			ID:    id,
			Title: strings.TrimSpace(link.Text()),
			Link:  link.AttrOr("href", ""),
		})
	})
	return out
}
