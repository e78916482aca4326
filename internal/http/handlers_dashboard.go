package http

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"monedero/internal/core"
)

type dashboardData struct {
	User             *core.UserIdentity
	Stats            core.Statistics
	Recent           []core.Transaction
	ActiveCategories int
	TotalCategories  int
	BudgetEstimated  core.Money
	BudgetSpent      core.Money
	Error            string
}

// handleDashboard loads the three resource lists concurrently and renders a
// summary. A failed load degrades to its section's transient error message
// instead of failing the whole page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return sc.tx.Load(ctx, core.TransactionFilter{Period: core.PeriodThisMonth})
	})
	g.Go(func() error {
		return sc.cats.Load(ctx)
	})
	g.Go(func() error {
		return sc.budgets.Load(ctx)
	})
	if err := g.Wait(); err != nil {
		slog.WarnContext(r.Context(), "Dashboard load incomplete", "error", err)
	}

	items := sc.tx.Items()
	recent := items
	if len(recent) > 5 {
		recent = recent[:5]
	}

	data := dashboardData{
		User:   s.sessions.Get(r).CurrentUser(),
		Stats:  sc.tx.Statistics(),
		Recent: recent,
		Error:  sc.tx.ErrorMessage(),
	}
	for _, cat := range sc.cats.Items() {
		data.TotalCategories++
		if cat.Active {
			data.ActiveCategories++
		}
	}
	for _, b := range sc.budgets.Items() {
		data.BudgetEstimated = data.BudgetEstimated.Add(b.Estimated)
		data.BudgetSpent = data.BudgetSpent.Add(b.Spent)
	}

	s.render(w, r, "dashboard.html", data)
}
