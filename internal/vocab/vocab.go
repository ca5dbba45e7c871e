package vocab

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmpty     = errors.New("vocabulary is empty")
	ErrBlankTerm = errors.New("term has no letters or digits")
	ErrDuplicate = errors.New("duplicate term")
)

// ConfigError reports an invalid vocabulary. Index is the position of the
// offending term, or -1 when the vocabulary as a whole is invalid.
type ConfigError struct {
	Term  string
	Index int
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Index < 0 {
		return "vocabulary: " + e.Err.Error()
	}
	return fmt.Sprintf("vocabulary: term %d (%q): %v", e.Index, e.Term, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Default is the term list tracked when no vocabulary is configured.
func Default() []string {
	return []string{"kubernetes", "linux", "windows", "solarwinds", "garmin", "aws", "docker", "github", "wordpress", "rundeck"}
}

// Vocabulary is an ordered, immutable set of distinct terms. The zero value
// is an empty vocabulary; use New to build a valid one.
type Vocabulary struct {
	terms []string
	index map[string]int
}

// New validates terms and freezes them in the given order. Terms are never
// reordered or deduplicated: a term whose Key equals an earlier one is an
// error.
func New(terms []string) (Vocabulary, error) {
	if len(terms) == 0 {
		return Vocabulary{}, &ConfigError{Index: -1, Err: ErrEmpty}
	}

	v := Vocabulary{
		terms: make([]string, len(terms)),
		index: make(map[string]int, len(terms)),
	}
	for i, t := range terms {
		key := Key(t)
		if key == "" {
			return Vocabulary{}, &ConfigError{Term: t, Index: i, Err: ErrBlankTerm}
		}
		if j, ok := v.index[key]; ok {
			return Vocabulary{}, &ConfigError{Term: t, Index: i, Err: fmt.Errorf("%w: same as term %d (%q)", ErrDuplicate, j, terms[j])}
		}
		v.terms[i] = t
		v.index[key] = i
	}
	return v, nil
}

// MustNew is New for literals in tests and defaults; it panics on error.
func MustNew(terms ...string) Vocabulary {
	v, err := New(terms)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Vocabulary) Len() int { return len(v.terms) }

// Terms returns a copy of the terms in configured order.
func (v Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

func (v Vocabulary) Term(i int) string { return v.terms[i] }

// Index returns the position of term, compared by Key.
func (v Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[Key(term)]
	return i, ok
}

func (v Vocabulary) Contains(term string) bool {
	_, ok := v.Index(term)
	return ok
}

func (v Vocabulary) String() string {
	return strings.Join(v.terms, ", ")
}

// Tokenize NFKC-normalises and case-folds s, then splits it into letter and
// digit runs. Titles and terms are compared on these tokens.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	folded := cases.Fold().String(norm.NFKC.String(s))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Key is the identity of a term: its tokens joined by single spaces. Terms
// with equal keys always match the same titles, so "Node.js", "node js"
// and "ＮＯＤＥ JS" are one term.
func Key(term string) string {
	return strings.Join(Tokenize(term), " ")
}
