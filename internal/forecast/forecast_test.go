package forecast

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/matheuskafuri/techpulse/internal/bucket"
	"github.com/matheuskafuri/techpulse/internal/corpus"
	"github.com/matheuskafuri/techpulse/internal/vocab"
)

func rec(id int64, title string, ts time.Time) corpus.Record {
	return corpus.Record{ID: id, Title: &title, Time: corpus.Unix(ts.Unix())}
}

func jan(day int) time.Time { return time.Date(2021, time.January, day, 12, 0, 0, 0, time.UTC) }
func mar(day int) time.Time { return time.Date(2021, time.March, day, 12, 0, 0, 0, time.UTC) }

func scenario() []corpus.Record {
	return []corpus.Record{
		rec(1, "Linux kernel update", jan(3)),
		rec(2, "Docker compose tips", jan(9)),
		rec(3, "Random post", jan(17)),
		rec(4, "Linux and Docker together", jan(28)),
	}
}

func TestRunScenario(t *testing.T) {
	tables, err := Run(scenario(), vocab.MustNew("linux", "docker"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(tables.Buckets) != 1 || tables.Buckets[0] != 1 {
		t.Fatalf("expected only bucket 1, got %v", tables.Buckets)
	}
	for _, term := range []string{"linux", "docker"} {
		c := Cell{Bucket: 1, Term: term}
		if tables.ArticleCounts[c] != 4 {
			t.Errorf("%s: expected 4 articles, got %d", term, tables.ArticleCounts[c])
		}
		if tables.TermCounts[c] != 2 {
			t.Errorf("%s: expected term count 2, got %d", term, tables.TermCounts[c])
		}
		if tables.Shares[c] != 0.5 {
			t.Errorf("%s: expected share 0.5, got %v", term, tables.Shares[c])
		}
		if tables.Probabilities[c] != 0.9375 {
			t.Errorf("%s: expected probability 0.9375, got %v", term, tables.Probabilities[c])
		}
	}
}

func TestRunOmitsEmptyBuckets(t *testing.T) {
	records := append(scenario(), rec(5, "Docker in March", mar(2)))
	tables, err := Run(records, vocab.MustNew("linux", "docker"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(tables.Buckets) != 2 || tables.Buckets[0] != 1 || tables.Buckets[1] != 3 {
		t.Fatalf("expected buckets [1 3], got %v", tables.Buckets)
	}
	feb := Cell{Bucket: 2, Term: "linux"}
	if _, ok := tables.ArticleCounts[feb]; ok {
		t.Error("February has no articles and must be absent from ArticleCounts")
	}
	if _, ok := tables.Probabilities[feb]; ok {
		t.Error("February must be absent from Probabilities")
	}
	if _, ok := tables.Stats(2, "linux"); ok {
		t.Error("Stats should report February as missing")
	}
	if tables.Row(2) != nil {
		t.Error("Row should be nil for an empty bucket")
	}
}

func TestRunZeroOccurrenceTerm(t *testing.T) {
	records := append(scenario(), rec(5, "Docker in March", mar(2)))
	tables, err := Run(records, vocab.MustNew("linux", "docker", "rundeck"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, key := range tables.Buckets {
		c := Cell{Bucket: key, Term: "rundeck"}
		tc, ok := tables.TermCounts[c]
		if !ok {
			t.Fatalf("bucket %d: rundeck missing from TermCounts", key)
		}
		if tc != 0 || tables.Shares[c] != 0 || tables.Probabilities[c] != 0 {
			t.Errorf("bucket %d: expected zeros, got count=%d share=%v prob=%v", key, tc, tables.Shares[c], tables.Probabilities[c])
		}
		if tables.ArticleCounts[c] == 0 {
			t.Errorf("bucket %d: article count must be the bucket total, got 0", key)
		}
	}
}

func TestRunArticleCountIsBucketTotal(t *testing.T) {
	records := []corpus.Record{
		rec(1, "Docker", jan(1)),
		rec(2, "nothing", jan(2)),
		rec(3, "nothing", jan(3)),
		{ID: 4, Time: corpus.Unix(jan(4).Unix())}, // no title
	}
	tables, err := Run(records, vocab.MustNew("docker"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s, ok := tables.Stats(1, "DOCKER")
	if !ok {
		t.Fatal("expected stats for docker")
	}
	if s.ArticleCount != 4 || s.TermCount != 1 || s.Share != 0.25 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestRunInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"linux", "docker", "aws", "rust", "dockerfile", "post", "GitHub", "news"}
	var records []corpus.Record
	for i := 0; i < 2000; i++ {
		title := words[rng.Intn(len(words))] + " " + words[rng.Intn(len(words))]
		ts := time.Date(2021, time.Month(1+rng.Intn(4)), 1+rng.Intn(28), rng.Intn(24), 0, 0, 0, time.UTC)
		records = append(records, rec(int64(i), title, ts))
	}

	v := vocab.MustNew("linux", "docker", "aws", "github", "garmin")
	tables, err := Run(records, v, Options{Workers: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, key := range tables.Buckets {
		for _, term := range v.Terms() {
			c := Cell{Bucket: key, Term: term}
			n, tc := tables.ArticleCounts[c], tables.TermCounts[c]
			if tc < 0 || tc > n {
				t.Errorf("%v: term count %d outside [0, %d]", c, tc, n)
			}
			if s := tables.Shares[c]; s < 0 || s > 1 {
				t.Errorf("%v: share %v out of range", c, s)
			}
			if p := tables.Probabilities[c]; p < 0 || p > 1 {
				t.Errorf("%v: probability %v out of range", c, p)
			}
			if tc == 0 && tables.Probabilities[c] != 0 {
				t.Errorf("%v: zero count must give zero probability", c)
			}
		}
	}
}

func TestRunIdempotentAndOrderIndependent(t *testing.T) {
	var records []corpus.Record
	for i := 0; i < 1500; i++ {
		title := "Random post"
		if i%3 == 0 {
			title = "Linux on AWS"
		}
		records = append(records, rec(int64(i), title, jan(1+i%28)))
	}
	v := vocab.MustNew("linux", "aws", "docker")

	first, err := Run(records, v, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	shuffled := append([]corpus.Record(nil), records...)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second, err := Run(shuffled, v, Options{Workers: 6})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(first.Probabilities) != len(second.Probabilities) {
		t.Fatalf("table sizes differ: %d vs %d", len(first.Probabilities), len(second.Probabilities))
	}
	for c, p := range first.Probabilities {
		if second.Probabilities[c] != p {
			t.Errorf("%v: %v vs %v", c, p, second.Probabilities[c])
		}
		if first.TermCounts[c] != second.TermCounts[c] || first.Shares[c] != second.Shares[c] {
			t.Errorf("%v: counts or shares differ", c)
		}
	}
}

func TestRunExcludesBadTimestamps(t *testing.T) {
	title := "Linux"
	records := append(scenario(),
		corpus.Record{ID: 77, Title: &title, Time: corpus.RawTimestamp(`"last tuesday"`)},
		corpus.Record{ID: 78, Title: &title},
	)
	tables, err := Run(records, vocab.MustNew("linux", "docker"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(tables.Rejected) != 2 {
		t.Fatalf("expected 2 rejected records, got %d", len(tables.Rejected))
	}
	if tables.Rejected[0].RecordID != 77 || !errors.Is(tables.Rejected[0], corpus.ErrBadTime) {
		t.Errorf("unexpected first rejection: %v", tables.Rejected[0])
	}
	if !errors.Is(tables.Rejected[1], corpus.ErrMissingTime) {
		t.Errorf("unexpected second rejection: %v", tables.Rejected[1])
	}
	if n := tables.ArticleCounts[Cell{Bucket: 1, Term: "linux"}]; n != 4 {
		t.Errorf("rejected records must not be counted, got %d articles", n)
	}
}

func TestRunStrictFailsOnBadTimestamp(t *testing.T) {
	records := append(scenario(), corpus.Record{ID: 99, Time: corpus.RawTimestamp("soon")})
	_, err := Run(records, vocab.MustNew("linux"), Options{Strict: true})
	var dataErr *corpus.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
	if dataErr.RecordID != 99 || dataErr.Index != 4 {
		t.Errorf("unexpected error context: %+v", dataErr)
	}
}

func TestRunRejectsEmptyVocabulary(t *testing.T) {
	_, err := Run(scenario(), vocab.Vocabulary{}, Options{})
	if !errors.Is(err, vocab.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestRunYearMonthScheme(t *testing.T) {
	records := []corpus.Record{
		rec(1, "Linux", time.Date(2020, time.January, 5, 0, 0, 0, 0, time.UTC)),
		rec(2, "Linux", time.Date(2021, time.January, 5, 0, 0, 0, 0, time.UTC)),
	}
	monthly, _ := Run(records, vocab.MustNew("linux"), Options{Scheme: bucket.Month})
	if len(monthly.Buckets) != 1 {
		t.Errorf("month scheme should merge years, got %v", monthly.Buckets)
	}
	yearly, _ := Run(records, vocab.MustNew("linux"), Options{Scheme: bucket.YearMonth})
	if len(yearly.Buckets) != 2 || yearly.Buckets[0] != 202001 || yearly.Buckets[1] != 202101 {
		t.Errorf("expected [202001 202101], got %v", yearly.Buckets)
	}
}

func TestNext(t *testing.T) {
	tables, err := Run(scenario(), vocab.MustNew("linux", "docker"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p, ok := tables.Next(1, "docker")
	if !ok {
		t.Fatal("expected prediction")
	}
	if p.Observed != 1 || p.Target != 2 || p.Probability != 0.9375 {
		t.Errorf("unexpected prediction %+v", p)
	}
	if _, ok := tables.Next(1, "kubernetes"); ok {
		t.Error("term outside the vocabulary should not resolve")
	}

	row := tables.Row(1)
	if len(row) != 2 || row[0].Term != "linux" || row[1].Term != "docker" {
		t.Errorf("row not in vocabulary order: %+v", row)
	}
}
