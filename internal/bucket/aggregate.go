package bucket

import (
	"fmt"
	"sort"

	"github.com/matheuskafuri/techpulse/internal/presence"
)

// Aggregator folds presence vectors into per-bucket counters. It is not safe
// for concurrent use; build one per goroutine and combine them with Merge.
type Aggregator struct {
	width   int
	buckets map[Key]*counter
}

type counter struct {
	articles int
	terms    []int
}

// NewAggregator returns an aggregator for vectors of the given width.
func NewAggregator(width int) *Aggregator {
	return &Aggregator{
		width:   width,
		buckets: make(map[Key]*counter),
	}
}

// Add counts one article in bucket key.
func (a *Aggregator) Add(key Key, vec presence.Vector) error {
	if len(vec) != a.width {
		return fmt.Errorf("presence vector has %d columns, want %d", len(vec), a.width)
	}
	c := a.bucket(key)
	c.articles++
	for i, present := range vec {
		if present {
			c.terms[i]++
		}
	}
	return nil
}

// Merge adds other's counts into a.
func (a *Aggregator) Merge(other *Aggregator) error {
	if other.width != a.width {
		return fmt.Errorf("cannot merge aggregators of width %d and %d", other.width, a.width)
	}
	for key, oc := range other.buckets {
		c := a.bucket(key)
		c.articles += oc.articles
		for i, n := range oc.terms {
			c.terms[i] += n
		}
	}
	return nil
}

// Keys returns the non-empty buckets in ascending order.
func (a *Aggregator) Keys() []Key {
	keys := make([]Key, 0, len(a.buckets))
	for k := range a.buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Counts returns the article total and a copy of the per-term counts for key.
func (a *Aggregator) Counts(key Key) (articles int, terms []int, ok bool) {
	c, ok := a.buckets[key]
	if !ok {
		return 0, nil, false
	}
	terms = make([]int, len(c.terms))
	copy(terms, c.terms)
	return c.articles, terms, true
}

func (a *Aggregator) Len() int { return len(a.buckets) }

func (a *Aggregator) bucket(key Key) *counter {
	c, ok := a.buckets[key]
	if !ok {
		c = &counter{terms: make([]int, a.width)}
		a.buckets[key] = c
	}
	return c
}
