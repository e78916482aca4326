package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"monedero/internal/core"
)

// formatAmount renders cents as a currency string, e.g. "12,34 €".
func formatAmount(m core.Money, currency string) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	rem := cents % 100
	symbol := currencySymbol(currency)
	s := strconv.FormatInt(units, 10) + "," + fmt.Sprintf("%02d", rem) + " " + symbol
	if neg {
		return "-" + s
	}
	return s
}

func currencySymbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "", "EUR":
		return "€"
	case "USD":
		return "$"
	case "GBP":
		return "£"
	default:
		return currency
	}
}

// sanitizeInput trims and strips control characters from form values.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseFilter reads the transaction list criteria from the request.
func parseFilter(r *http.Request) core.TransactionFilter {
	q := r.URL.Query()
	f := core.TransactionFilter{
		Search: sanitizeInput(q.Get("search")),
		Type:   core.TransactionType(sanitizeInput(q.Get("type"))),
		Period: sanitizeInput(q.Get("period")),
		Sort:   sanitizeInput(q.Get("sort")),
	}
	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			f.Page = p
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil {
			f.PageSize = ps
		}
	}
	return f
}

// parseAmount converts a decimal form value to Money.
func parseAmount(raw string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(sanitizeInput(raw))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseDate parses a YYYY-MM-DD form value.
func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", sanitizeInput(raw))
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
