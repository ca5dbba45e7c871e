package forecast

import (
	"github.com/matheuskafuri/techpulse/internal/bucket"
	"github.com/matheuskafuri/techpulse/internal/corpus"
	"github.com/matheuskafuri/techpulse/internal/estimate"
	"github.com/matheuskafuri/techpulse/internal/vocab"
)

// Cell addresses one (bucket, term) entry of the tables.
type Cell struct {
	Bucket bucket.Key
	Term   string
}

// Tables holds the pipeline output. Every bucket in Buckets has an entry
// for every vocabulary term in each of the four maps.
type Tables struct {
	Vocabulary vocab.Vocabulary
	Scheme     bucket.Scheme
	Buckets    []bucket.Key

	ArticleCounts map[Cell]int
	TermCounts    map[Cell]int
	Shares        map[Cell]float64
	Probabilities map[Cell]float64

	// Rejected lists the records excluded for bad timestamps.
	Rejected []*corpus.DataError
}

func newTables(v vocab.Vocabulary, scheme bucket.Scheme) *Tables {
	return &Tables{
		Vocabulary:    v,
		Scheme:        scheme,
		ArticleCounts: make(map[Cell]int),
		TermCounts:    make(map[Cell]int),
		Shares:        make(map[Cell]float64),
		Probabilities: make(map[Cell]float64),
	}
}

func (t *Tables) put(s estimate.Stats) {
	c := Cell{Bucket: s.Bucket, Term: s.Term}
	t.ArticleCounts[c] = s.ArticleCount
	t.TermCounts[c] = s.TermCount
	t.Shares[c] = s.Share
	t.Probabilities[c] = s.Probability
}

// HasBucket reports whether key had at least one article.
func (t *Tables) HasBucket(key bucket.Key) bool {
	for _, k := range t.Buckets {
		if k == key {
			return true
		}
	}
	return false
}

// Stats returns the estimate for one cell. term is matched case-insensitively
// against the vocabulary.
func (t *Tables) Stats(key bucket.Key, term string) (estimate.Stats, bool) {
	i, ok := t.Vocabulary.Index(term)
	if !ok {
		return estimate.Stats{}, false
	}
	c := Cell{Bucket: key, Term: t.Vocabulary.Term(i)}
	n, ok := t.ArticleCounts[c]
	if !ok {
		return estimate.Stats{}, false
	}
	return estimate.Stats{
		Bucket:       key,
		Term:         c.Term,
		ArticleCount: n,
		TermCount:    t.TermCounts[c],
		Share:        t.Shares[c],
		Probability:  t.Probabilities[c],
	}, true
}

// Row returns the estimates of every term for key in vocabulary order.
func (t *Tables) Row(key bucket.Key) []estimate.Stats {
	if !t.HasBucket(key) {
		return nil
	}
	row := make([]estimate.Stats, 0, t.Vocabulary.Len())
	for _, term := range t.Vocabulary.Terms() {
		s, _ := t.Stats(key, term)
		row = append(row, s)
	}
	return row
}

// Prediction is the estimate for the period after Observed.
type Prediction struct {
	Observed bucket.Key
	Target   bucket.Key
	estimate.Stats
}

// Next returns the probability that term appears at least once in the bucket
// following key, estimated from key's share and volume.
func (t *Tables) Next(key bucket.Key, term string) (Prediction, bool) {
	s, ok := t.Stats(key, term)
	if !ok {
		return Prediction{}, false
	}
	return Prediction{Observed: key, Target: t.Scheme.Next(key), Stats: s}, true
}
