package core

import (
	"errors"
	"time"
)

// Period tokens are a closed set of display strings enumerated by the backend.
// They come back verbatim from the filter form; free-form values are rejected.
const (
	PeriodNone        = "Sin filtro"
	PeriodThisMonth   = "Este mes"
	PeriodLastMonth   = "Último mes"
	PeriodLast3Months = "Últimos 3 meses"
	PeriodThisYear    = "Este año"
)

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

var ErrUnknownPeriod = errors.New("unknown period token")

// Periods returns the closed set of period tokens in display order.
func Periods() []string {
	return []string{PeriodNone, PeriodThisMonth, PeriodLastMonth, PeriodLast3Months, PeriodThisYear}
}

// ResolvePeriod maps a period token to a concrete date range relative to now.
// PeriodNone (and the empty string) resolve to the zero range, meaning no
// date filtering at all.
func ResolvePeriod(label string, now time.Time) (DateRange, error) {
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch label {
	case "", PeriodNone:
		return DateRange{}, nil
	case PeriodThisMonth:
		return DateRange{Start: startOfMonth, End: startOfMonth.AddDate(0, 1, 0)}, nil
	case PeriodLastMonth:
		return DateRange{Start: startOfMonth.AddDate(0, -1, 0), End: startOfMonth}, nil
	case PeriodLast3Months:
		return DateRange{Start: startOfMonth.AddDate(0, -3, 0), End: startOfMonth.AddDate(0, 1, 0)}, nil
	case PeriodThisYear:
		startOfYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: startOfYear, End: startOfYear.AddDate(1, 0, 0)}, nil
	default:
		return DateRange{}, ErrUnknownPeriod
	}
}

// IsZero reports whether the range carries no bounds.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls inside the range. A zero range contains
// every instant.
func (r DateRange) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	return !t.Before(r.Start) && t.Before(r.End)
}
