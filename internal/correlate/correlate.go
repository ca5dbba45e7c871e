// Package correlate measures whether stories posted close to a given hour of
// the evening attract more discussion.
//
// Stories are grouped by local hour of day. For each hour the comment counts
// are summed and the proximity to the target hour (minus the minutes to the
// nearest occurrence, today or yesterday) is averaged. Both series are
// min-max scaled and their Pearson coefficient is reported.
package correlate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/matheuskafuri/techpulse/internal/corpus"
	"github.com/matheuskafuri/techpulse/internal/logging"
)

var (
	// ErrNoData is returned when no record has a usable timestamp.
	ErrNoData  = errors.New("no records with a usable timestamp")
	ErrBadHour = errors.New("target hour must be 0-23")
)

const DefaultTargetHour = 20

type Options struct {
	// Location defaults to UTC.
	Location   *time.Location
	TargetHour int
}

// HourStat is one row of the hour-of-day table.
type HourStat struct {
	Hour        int
	Articles    int
	Descendants int
	// Proximity is the mean of -minutes to the target hour.
	Proximity       float64
	ProximityNorm   float64
	DescendantsNorm float64
}

type Result struct {
	TargetHour int
	Location   *time.Location
	Hours      []HourStat
	// Correlation is rounded to three decimals. Defined is false when either
	// series is constant.
	Correlation float64
	Defined     bool
	Rejected    []*corpus.DataError
}

// MinutesToTarget returns the distance in minutes between t and the target
// hour on t's day or the day before, whichever is closer.
func MinutesToTarget(t time.Time, hour int) float64 {
	y, m, d := t.Date()
	today := time.Date(y, m, d, hour, 0, 0, 0, t.Location())
	yesterday := time.Date(y, m, d-1, hour, 0, 0, 0, t.Location())
	return math.Min(math.Abs(t.Sub(today).Minutes()), math.Abs(t.Sub(yesterday).Minutes()))
}

func Run(records []corpus.Record, opts Options) (*Result, error) {
	if opts.TargetHour < 0 || opts.TargetHour > 23 {
		return nil, fmt.Errorf("%w, got %d", ErrBadHour, opts.TargetHour)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	res := &Result{TargetHour: opts.TargetHour, Location: loc}

	type acc struct {
		articles    int
		descendants int
		proximity   float64
	}
	byHour := make(map[int]*acc)

	for i, r := range records {
		ts, err := r.Time.Parse()
		if err != nil {
			de := &corpus.DataError{RecordID: r.ID, Index: i, Field: "time", Err: err}
			logging.Warn().Err(de).Msg("skipping record")
			res.Rejected = append(res.Rejected, de)
			continue
		}
		local := ts.In(loc)
		a, ok := byHour[local.Hour()]
		if !ok {
			a = &acc{}
			byHour[local.Hour()] = a
		}
		a.articles++
		a.descendants += r.Descendants
		a.proximity -= MinutesToTarget(local, opts.TargetHour)
	}
	if len(byHour) == 0 {
		return nil, ErrNoData
	}

	for h, a := range byHour {
		res.Hours = append(res.Hours, HourStat{
			Hour:        h,
			Articles:    a.articles,
			Descendants: a.descendants,
			Proximity:   a.proximity / float64(a.articles),
		})
	}
	sort.Slice(res.Hours, func(i, j int) bool { return res.Hours[i].Hour < res.Hours[j].Hour })

	prox := make([]float64, len(res.Hours))
	desc := make([]float64, len(res.Hours))
	for i, h := range res.Hours {
		prox[i] = h.Proximity
		desc[i] = float64(h.Descendants)
	}
	prox = minMax(prox)
	desc = minMax(desc)
	for i := range res.Hours {
		res.Hours[i].ProximityNorm = prox[i]
		res.Hours[i].DescendantsNorm = desc[i]
	}

	if r, ok := pearson(prox, desc); ok {
		res.Correlation = math.Round(r*1000) / 1000
		res.Defined = true
	}
	logging.Debug().Int("hours", len(res.Hours)).Float64("correlation", res.Correlation).Msg("correlate END")
	return res, nil
}

// minMax rescales xs into [0, 1]. A constant series maps to zeros.
func minMax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if hi == lo {
		return out
	}
	for i, x := range xs {
		out[i] = (x - lo) / (hi - lo)
	}
	return out
}

func pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, false
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}
