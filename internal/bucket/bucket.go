package bucket

import (
	"fmt"
	"strings"
	"time"
)

// Key identifies a time bucket. Its meaning depends on the Scheme that
// produced it; keys of one scheme sort chronologically.
type Key int

// Scheme maps instants to bucket keys.
type Scheme string

const (
	// Month buckets by calendar month number (1-12), ignoring the year.
	Month Scheme = "month"
	// YearMonth buckets by calendar month, keyed yyyymm.
	YearMonth Scheme = "year-month"
	// Week buckets by ISO week, keyed yyyyww.
	Week Scheme = "week"
)

// AllSchemes returns the supported schemes in display order.
func AllSchemes() []Scheme {
	return []Scheme{Month, YearMonth, Week}
}

// ParseScheme resolves a scheme name case-insensitively. The empty string
// selects Month.
func ParseScheme(s string) (Scheme, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Month, nil
	}
	for _, sc := range AllSchemes() {
		if string(sc) == s {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown bucket scheme %q (valid: month, year-month, week)", s)
}

// Key returns the bucket for t, evaluated in UTC.
func (s Scheme) Key(t time.Time) Key {
	t = t.UTC()
	switch s {
	case YearMonth:
		return Key(t.Year()*100 + int(t.Month()))
	case Week:
		y, w := t.ISOWeek()
		return Key(y*100 + w)
	default:
		return Key(t.Month())
	}
}

// Next returns the bucket that follows k.
func (s Scheme) Next(k Key) Key {
	switch s {
	case YearMonth:
		y, m := int(k)/100, int(k)%100
		if m == 12 {
			return Key((y+1)*100 + 1)
		}
		return k + 1
	case Week:
		y, w := int(k)/100, int(k)%100
		// Dec 28 always falls in the last ISO week of its year.
		_, last := time.Date(y, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
		if w >= last {
			return Key((y+1)*100 + 1)
		}
		return k + 1
	default:
		if k >= 12 {
			return 1
		}
		return k + 1
	}
}

// Label formats k for display.
func (s Scheme) Label(k Key) string {
	switch s {
	case YearMonth:
		return fmt.Sprintf("%04d-%02d", int(k)/100, int(k)%100)
	case Week:
		return fmt.Sprintf("%04d-W%02d", int(k)/100, int(k)%100)
	default:
		if k >= 1 && k <= 12 {
			return time.Month(k).String()[:3]
		}
		return fmt.Sprintf("month %d", int(k))
	}
}

// ParseKey parses a key as typed by a user: a month number or name for Month,
// "2021-03" for YearMonth, "2021-W09" for Week. Raw integer keys are accepted
// for every scheme.
func (s Scheme) ParseKey(in string) (Key, error) {
	in = strings.TrimSpace(in)
	var n int
	if _, err := fmt.Sscanf(in, "%d", &n); err == nil && fmt.Sprint(n) == in {
		return Key(n), nil
	}

	switch s {
	case YearMonth:
		var y, m int
		if _, err := fmt.Sscanf(in, "%d-%d", &y, &m); err == nil && m >= 1 && m <= 12 {
			return Key(y*100 + m), nil
		}
	case Week:
		var y, w int
		if _, err := fmt.Sscanf(strings.ToUpper(in), "%d-W%d", &y, &w); err == nil && w >= 1 && w <= 53 {
			return Key(y*100 + w), nil
		}
	default:
		for m := time.January; m <= time.December; m++ {
			name := strings.ToLower(m.String())
			lower := strings.ToLower(in)
			if lower == name || lower == name[:3] {
				return Key(m), nil
			}
		}
	}
	return 0, fmt.Errorf("invalid %s bucket %q", s, in)
}
