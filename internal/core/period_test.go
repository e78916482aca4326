package core

import (
	"errors"
	"testing"
	"time"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	t.Run("no filter", func(t *testing.T) {
		for _, label := range []string{"", PeriodNone} {
			r, err := ResolvePeriod(label, now)
			if err != nil {
				t.Fatalf("%q: unexpected error %v", label, err)
			}
			if !r.IsZero() {
				t.Fatalf("%q: expected zero range, got %+v", label, r)
			}
		}
	})

	t.Run("last month", func(t *testing.T) {
		r, err := ResolvePeriod(PeriodLastMonth, now)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		wantStart := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		wantEnd := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		if !r.Start.Equal(wantStart) || !r.End.Equal(wantEnd) {
			t.Fatalf("got %+v, want [%v, %v)", r, wantStart, wantEnd)
		}
	})

	t.Run("this year", func(t *testing.T) {
		r, err := ResolvePeriod(PeriodThisYear, now)
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if r.Start.Year() != 2025 || r.End.Year() != 2026 {
			t.Fatalf("got %+v", r)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		if _, err := ResolvePeriod("last week-ish", now); !errors.Is(err, ErrUnknownPeriod) {
			t.Fatalf("expected ErrUnknownPeriod, got %v", err)
		}
	})
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{
		Start: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if !r.Contains(time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("mid-range instant should be contained")
	}
	if !r.Contains(r.Start) {
		t.Fatalf("start is inclusive")
	}
	if r.Contains(r.End) {
		t.Fatalf("end is exclusive")
	}
	if !(DateRange{}).Contains(time.Now()) {
		t.Fatalf("zero range contains everything")
	}
}
