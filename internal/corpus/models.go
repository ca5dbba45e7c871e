package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("corpus not found")
	ErrMissingTime = errors.New("missing timestamp")
	ErrBadTime     = errors.New("unparsable timestamp")
)

// Record is one article as delivered by a loader. Title is nil when the
// source had no title.
type Record struct {
	ID          int64     `json:"id"`
	Title       *string   `json:"title"`
	Time        Timestamp `json:"time"`
	By          string    `json:"by,omitempty"`
	URL         string    `json:"url,omitempty"`
	Type        string    `json:"type,omitempty"`
	Score       int       `json:"score,omitempty"`
	Descendants int       `json:"descendants,omitempty"`
}

// TitleText returns the title or "" when it is absent.
func (r Record) TitleText() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// Timestamp keeps the "time" field as received so that a bad value can be
// reported per record instead of failing the whole decode.
type Timestamp struct {
	raw string
}

// Unix returns a Timestamp for seconds since the epoch.
func Unix(sec int64) Timestamp {
	return Timestamp{raw: strconv.FormatInt(sec, 10)}
}

// RawTimestamp wraps an arbitrary textual value.
func RawTimestamp(s string) Timestamp {
	return Timestamp{raw: s}
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.raw = string(bytes.TrimSpace(b))
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseFloat(t.raw, 64); err == nil {
		return []byte(t.raw), nil
	}
	if t.raw == "" {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(strings.Trim(t.raw, `"`))), nil
}

func (t Timestamp) String() string { return t.raw }

// Parse interprets the value as seconds since the epoch (integer, float or
// numeric string) or as an RFC 3339 string. The result is in UTC.
func (t Timestamp) Parse() (time.Time, error) {
	s := strings.TrimSpace(t.raw)
	if s == "" || s == "null" {
		return time.Time{}, ErrMissingTime
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
		if s == "" {
			return time.Time{}, ErrMissingTime
		}
	}

	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		// int64 conversion of an out-of-range float is implementation-defined.
		if math.IsNaN(f) || f < -(1<<63) || f >= 1<<63 {
			return time.Time{}, fmt.Errorf("%w: %q out of range", ErrBadTime, t.raw)
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTime, t.raw)
}

// DataError reports a record that cannot be placed in a bucket.
type DataError struct {
	RecordID int64
	Index    int
	Field    string
	Err      error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("record %d (#%d): %s: %v", e.RecordID, e.Index, e.Field, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }
