package bucket

import (
	"testing"
	"time"
)

func TestSchemeKey(t *testing.T) {
	ts := time.Date(2021, time.March, 14, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		scheme Scheme
		want   Key
	}{
		{Month, 3},
		{YearMonth, 202103},
		{Week, 202110},
	}
	for _, tt := range tests {
		if got := tt.scheme.Key(ts); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.scheme, tt.want, got)
		}
	}
}

func TestSchemeKeyUsesUTC(t *testing.T) {
	// 2021-01-31 20:00 in New York is already February in UTC.
	ny := time.FixedZone("EST", -5*3600)
	ts := time.Date(2021, time.January, 31, 20, 0, 0, 0, ny)
	if got := Month.Key(ts); got != 2 {
		t.Errorf("expected February bucket, got %d", got)
	}
}

func TestMonthBoundary(t *testing.T) {
	last := time.Date(2021, time.January, 31, 23, 59, 59, 0, time.UTC)
	first := last.Add(time.Second)
	if Month.Key(last) != 1 || Month.Key(first) != 2 {
		t.Errorf("expected 1 then 2, got %d then %d", Month.Key(last), Month.Key(first))
	}
	if YearMonth.Key(time.Date(2020, time.December, 31, 23, 59, 59, 0, time.UTC)) != 202012 {
		t.Error("expected 202012 for new year's eve")
	}
}

func TestSchemeNext(t *testing.T) {
	tests := []struct {
		scheme Scheme
		in     Key
		want   Key
	}{
		{Month, 1, 2},
		{Month, 12, 1},
		{YearMonth, 202103, 202104},
		{YearMonth, 202012, 202101},
		{Week, 202110, 202111},
		{Week, 202052, 202053}, // 2020 has 53 ISO weeks
		{Week, 202053, 202101},
		{Week, 202152, 202201},
	}
	for _, tt := range tests {
		if got := tt.scheme.Next(tt.in); got != tt.want {
			t.Errorf("%s.Next(%d): expected %d, got %d", tt.scheme, tt.in, tt.want, got)
		}
	}
}

func TestSchemeLabel(t *testing.T) {
	if got := Month.Label(2); got != "Feb" {
		t.Errorf("expected Feb, got %q", got)
	}
	if got := YearMonth.Label(202104); got != "2021-04" {
		t.Errorf("expected 2021-04, got %q", got)
	}
	if got := Week.Label(202109); got != "2021-W09" {
		t.Errorf("expected 2021-W09, got %q", got)
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in   string
		want Scheme
		err  bool
	}{
		{"", Month, false},
		{"month", Month, false},
		{"Year-Month", YearMonth, false},
		{" week ", Week, false},
		{"quarter", "", true},
	}
	for _, tt := range tests {
		got, err := ParseScheme(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("ParseScheme(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseScheme(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		scheme Scheme
		in     string
		want   Key
		err    bool
	}{
		{Month, "3", 3, false},
		{Month, "mar", 3, false},
		{Month, "February", 2, false},
		{YearMonth, "2021-03", 202103, false},
		{YearMonth, "202103", 202103, false},
		{Week, "2021-w09", 202109, false},
		{Month, "smarch", 0, true},
		{YearMonth, "2021-13", 0, true},
	}
	for _, tt := range tests {
		got, err := tt.scheme.ParseKey(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("%s.ParseKey(%q): expected error, got %d", tt.scheme, tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s.ParseKey(%q) = %d, %v; want %d", tt.scheme, tt.in, got, err, tt.want)
		}
	}
}
