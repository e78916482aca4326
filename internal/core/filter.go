package core

import (
	"strings"
	"time"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 200

	SortDateDesc   = "date_desc"
	SortDateAsc    = "date_asc"
	SortAmountDesc = "amount_desc"
	SortAmountAsc  = "amount_asc"
)

// TransactionFilter is the ephemeral criteria a list load runs with. It is
// held only in controller state and never persisted.
type TransactionFilter struct {
	Search   string
	Type     TransactionType // empty means all types
	Period   string          // one of the period tokens; resolved via ResolvePeriod
	Range    DateRange       // concrete range resolved from Period
	Page     int
	PageSize int
	Sort     string
}

// Normalize resolves the period token against now and fills pagination and
// sort defaults. Unknown period tokens fall back to no date filtering. A
// range supplied directly (no period token) is kept as-is.
func (f TransactionFilter) Normalize(now time.Time) TransactionFilter {
	f.Search = strings.TrimSpace(f.Search)
	if f.Period != "" {
		if r, err := ResolvePeriod(f.Period, now); err == nil {
			f.Range = r
		} else {
			f.Period = PeriodNone
			f.Range = DateRange{}
		}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.Sort == "" {
		f.Sort = SortDateDesc
	}
	return f
}

// Matches applies the in-memory variant of the filter, used by the local
// backends. The remote backend applies the same semantics server-side.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if !f.Range.Contains(t.OccurredAt) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.CategoryName), needle) &&
			!strings.Contains(strings.ToLower(t.AccountName), needle) {
			return false
		}
	}
	return true
}
