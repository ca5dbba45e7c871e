// Package estimate converts per-bucket term counts into the probability that
// a term is mentioned at least once in a following period of equal volume.
//
// Each of the bucket's n articles is treated as an independent Bernoulli trial
// whose success rate is the observed term share p, so
//
//	P(at least one mention) = 1 - (1-p)^n
//
// The exponent is the bucket's total article count. Raising (1-p) to the term
// count instead does not follow from the trial model and is not supported.
package estimate

import (
	"fmt"
	"math"

	"github.com/matheuskafuri/techpulse/internal/bucket"
)

// Stats is the estimate for one (bucket, term) pair.
type Stats struct {
	Bucket       bucket.Key
	Term         string
	ArticleCount int
	TermCount    int
	Share        float64
	Probability  float64
}

// RangeError reports counts that violate 0 <= term count <= article count.
type RangeError struct {
	Bucket       bucket.Key
	Term         string
	ArticleCount int
	TermCount    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("bucket %d term %q: term count %d outside [0, %d]", e.Bucket, e.Term, e.TermCount, e.ArticleCount)
}

// New builds the estimate for a term that appeared in termCount of the
// articleCount articles of a bucket.
func New(key bucket.Key, term string, articleCount, termCount int) (Stats, error) {
	if articleCount < 0 || termCount < 0 || termCount > articleCount {
		return Stats{}, &RangeError{Bucket: key, Term: term, ArticleCount: articleCount, TermCount: termCount}
	}
	share := Share(termCount, articleCount)
	return Stats{
		Bucket:       key,
		Term:         term,
		ArticleCount: articleCount,
		TermCount:    termCount,
		Share:        share,
		Probability:  Probability(share, articleCount),
	}, nil
}

// Share returns termCount/articleCount, or 0 for an empty bucket.
func Share(termCount, articleCount int) float64 {
	if articleCount <= 0 {
		return 0
	}
	return float64(termCount) / float64(articleCount)
}

// Probability returns 1 - (1-share)^n clamped to [0, 1].
func Probability(share float64, n int) float64 {
	if n <= 0 || share <= 0 || math.IsNaN(share) {
		return 0
	}
	if share >= 1 {
		return 1
	}
	p := 1 - math.Pow(1-share, float64(n))
	return math.Min(1, math.Max(0, p))
}
