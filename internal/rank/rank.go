// Package rank orders stories by how hot their discussion is, using the
// classic Hacker News gravity formula on comment counts.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/matheuskafuri/techpulse/internal/corpus"
)

// DefaultGravity is the exponent applied to a story's age.
const DefaultGravity = 1.8

// Ranked is a record together with its score.
type Ranked struct {
	corpus.Record
	Score float64
}

// Score computes (descendants-1) / (ageHours+2)^gravity. Future timestamps
// count as zero age.
func Score(descendants int, age time.Duration, gravity float64) float64 {
	if gravity <= 0 {
		gravity = DefaultGravity
	}
	hours := age.Hours()
	if hours < 0 {
		hours = 0
	}
	return float64(descendants-1) / math.Pow(hours+2, gravity)
}

// Sort scores records relative to now and returns them best first. Ties keep
// input order. Records whose time cannot be read are returned separately.
func Sort(records []corpus.Record, now time.Time, gravity float64) ([]Ranked, []*corpus.DataError) {
	ranked := make([]Ranked, 0, len(records))
	var rejected []*corpus.DataError
	for i, r := range records {
		ts, err := r.Time.Parse()
		if err != nil {
			rejected = append(rejected, &corpus.DataError{RecordID: r.ID, Index: i, Field: "time", Err: err})
			continue
		}
		ranked = append(ranked, Ranked{Record: r, Score: Score(r.Descendants, now.Sub(ts), gravity)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, rejected
}

// Top returns at most n entries of an already sorted slice.
func Top(ranked []Ranked, n int) []Ranked {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
