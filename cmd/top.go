package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matheuskafuri/techpulse/internal/browser"
	"github.com/matheuskafuri/techpulse/internal/hn"
	"github.com/matheuskafuri/techpulse/internal/logging"
	"github.com/matheuskafuri/techpulse/internal/rank"
	"github.com/matheuskafuri/techpulse/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagTopLimit  int
	flagTopMethod string
	flagOpen      int
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the hottest stories on Hacker News right now",
	Long: `With the api method, stories are ranked by (comments - 1) / (age in hours + 2)^gravity.
The scraping method lists the front page in its own order.`,
	RunE: runTop,
}

func init() {
	topCmd.Flags().IntVar(&flagTopLimit, "limit", 0, "number of stories (default from config)")
	topCmd.Flags().StringVar(&flagTopMethod, "method", methodAPI, "api or scraping")
	topCmd.Flags().IntVar(&flagOpen, "open", 0, "open the nth story in the browser")
}

func runTop(cmd *cobra.Command, args []string) error {
	limit := flagTopLimit
	if limit <= 0 {
		limit = cfg.TopLimit()
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()
	client := hnClient()

	var links []string
	switch flagTopMethod {
	case methodScraping:
		rows, err := client.Scrape(ctx, (limit+pageSize-1)/pageSize)
		if err != nil {
			return err
		}
		if len(rows) > limit {
			rows = rows[:limit]
		}
		for _, r := range rows {
			fmt.Printf("%3d. %s\n", r.Rank, r.Title)
			links = append(links, storyLink(client, r.ID, r.Link))
		}

	case methodAPI:
		records, errs, err := fetchRecords(ctx, methodAPI, limit)
		if err != nil {
			return err
		}
		for _, e := range errs {
			logging.Warn().Err(e).Msg("fetch")
		}
		ranked, rejected := rank.Sort(records, time.Now(), cfg.Gravity())
		for _, r := range rejected {
			logging.Warn().Err(r).Msg("unranked")
		}
		if err := report.Top(os.Stdout, ranked); err != nil {
			return err
		}
		for _, r := range ranked {
			links = append(links, storyLink(client, r.ID, r.URL))
		}

	default:
		return fmt.Errorf("unknown method %q (want api or scraping)", flagTopMethod)
	}

	if flagOpen > 0 {
		if flagOpen > len(links) {
			return fmt.Errorf("--open %d: only %d stories listed", flagOpen, len(links))
		}
		return browser.Open(links[flagOpen-1])
	}
	return nil
}

// storyLink prefers the story's own URL; Ask HN and similar posts link to
// their discussion page.
func storyLink(c *hn.Client, id int64, link string) string {
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return c.ItemURL(id)
	}
	return link
}
