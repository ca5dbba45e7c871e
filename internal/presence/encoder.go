// Package presence turns article titles into per-term presence vectors.
//
// Matching is token based: a title and every vocabulary term are case-folded,
// NFKC-normalised and split at each rune that is not a letter or digit. A term
// is present when its tokens occur as a contiguous run of title tokens, so a
// term embedded in a longer word ("dockerfile") does not count as "docker".
package presence

import (
	"slices"

	"github.com/matheuskafuri/techpulse/internal/vocab"
	"golang.org/x/sync/errgroup"
)

// minChunk keeps EncodeAll sequential for small corpora.
const minChunk = 256

// Vector holds one presence bit per vocabulary position.
type Vector []bool

// Count returns how many terms are present.
func (v Vector) Count() int {
	n := 0
	for _, b := range v {
		if b {
			n++
		}
	}
	return n
}

// Encoder matches titles against a fixed vocabulary.
type Encoder struct {
	vocab  vocab.Vocabulary
	single map[string][]int // one-token term -> vocabulary positions
	multi  []phrase
}

type phrase struct {
	pos    int
	tokens []string
}

func NewEncoder(v vocab.Vocabulary) *Encoder {
	e := &Encoder{
		vocab:  v,
		single: make(map[string][]int, v.Len()),
	}
	for i := 0; i < v.Len(); i++ {
		tokens := Tokenize(v.Term(i))
		if len(tokens) == 1 {
			e.single[tokens[0]] = append(e.single[tokens[0]], i)
			continue
		}
		e.multi = append(e.multi, phrase{pos: i, tokens: tokens})
	}
	return e
}

func (e *Encoder) Vocabulary() vocab.Vocabulary { return e.vocab }

// Encode returns the presence vector for one title. A nil title matches no
// term.
func (e *Encoder) Encode(title *string) Vector {
	vec := make(Vector, e.vocab.Len())
	if title == nil {
		return vec
	}

	tokens := Tokenize(*title)
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		for _, pos := range e.single[tok] {
			vec[pos] = true
		}
	}
	for _, p := range e.multi {
		if containsRun(tokens, p.tokens) {
			vec[p.pos] = true
		}
	}
	return vec
}

// EncodeAll encodes titles in order. With workers > 1 the titles are split
// into chunks encoded concurrently; the result is identical to encoding them
// one by one.
func (e *Encoder) EncodeAll(titles []*string, workers int) []Vector {
	out := make([]Vector, len(titles))
	if workers <= 1 || len(titles) < 2*minChunk {
		for i, t := range titles {
			out[i] = e.Encode(t)
		}
		return out
	}

	size := (len(titles) + workers - 1) / workers
	if size < minChunk {
		size = minChunk
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(titles); start += size {
		end := min(start+size, len(titles))
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = e.Encode(titles[i])
			}
			return nil
		})
	}
	_ = g.Wait() // chunk workers never fail
	return out
}

// Tokenize folds s and splits it into letter/digit runs, exactly as the
// vocabulary does when it checks terms for duplicates.
func Tokenize(s string) []string {
	return vocab.Tokenize(s)
}

func containsRun(tokens, run []string) bool {
	for i := 0; i+len(run) <= len(tokens); i++ {
		if slices.Equal(tokens[i:i+len(run)], run) {
			return true
		}
	}
	return false
}
