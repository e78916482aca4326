// Package memory is the development backend: a mutex-guarded in-memory store
// that implements every gateway port. Data lives for the process lifetime.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"monedero/internal/core"
	"monedero/internal/gateway"
)

type Store struct {
	mu sync.Mutex

	transactions []core.Transaction
	categories   []core.TravelCategory
	budgets      []core.TravelBudget
	users        map[string]seedUser // keyed by email

	nextID int
}

type seedUser struct {
	identity core.UserIdentity
	password string
}

func New() *Store {
	return &Store{users: map[string]seedUser{}}
}

// NewSeeded returns a store pre-populated with demo data so the app is usable
// out of the box with DATA_BACKEND=memory.
func NewSeeded() *Store {
	s := New()
	s.users["demo@monedero.dev"] = seedUser{
		identity: core.UserIdentity{ID: "u-demo", Name: "Demo", Email: "demo@monedero.dev"},
		password: "demo",
	}

	now := time.Now().UTC()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	s.transactions = []core.Transaction{
		{ID: s.id("t"), Type: core.Income, Amount: core.Money{Cents: 180000}, Currency: "EUR", Description: "Nómina", CategoryID: "cat-nomina", CategoryName: "Nómina", AccountID: "acc-1", AccountName: "Cuenta corriente", OccurredAt: month.AddDate(0, 0, 1)},
		{ID: s.id("t"), Type: core.Expense, Amount: core.Money{Cents: 6240}, Currency: "EUR", Description: "Supermercado", CategoryID: "cat-comida", CategoryName: "Comida", AccountID: "acc-1", AccountName: "Cuenta corriente", OccurredAt: month.AddDate(0, 0, 3)},
		{ID: s.id("t"), Type: core.Expense, Amount: core.Money{Cents: 95000}, Currency: "EUR", Description: "Alquiler", CategoryID: "cat-casa", CategoryName: "Casa", AccountID: "acc-1", AccountName: "Cuenta corriente", OccurredAt: month.AddDate(0, 0, 2)},
		{ID: s.id("t"), Type: core.Transfer, Amount: core.Money{Cents: 20000}, Currency: "EUR", Description: "Ahorro mensual", CategoryID: "cat-ahorro", CategoryName: "Ahorro", AccountID: "acc-1", AccountName: "Cuenta corriente", OccurredAt: month.AddDate(0, 0, 5)},
	}
	lodging := core.TravelCategory{ID: s.id("c"), Name: "Alojamiento", Mandatory: true, Active: true}
	transport := core.TravelCategory{ID: s.id("c"), Name: "Transporte", Mandatory: true, Active: true}
	s.categories = []core.TravelCategory{
		lodging,
		transport,
		{ID: s.id("c"), Name: "Ocio", Active: true},
		{ID: s.id("c"), Name: "Seguro de viaje", Active: false},
	}
	s.budgets = []core.TravelBudget{
		{ID: s.id("b"), PlanID: "plan-verano", CategoryID: lodging.ID, Estimated: core.Money{Cents: 60000}, Spent: core.Money{Cents: 0}, Notes: "Hotel reservado"},
		{ID: s.id("b"), PlanID: "plan-verano", CategoryID: transport.ID, Estimated: core.Money{Cents: 25000}},
	}
	return s
}

func (s *Store) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *Store) Transactions() gateway.TransactionGateway     { return txStore{s} }
func (s *Store) TravelCategories() gateway.TravelCategoryGateway { return catStore{s} }
func (s *Store) TravelBudgets() gateway.TravelBudgetGateway   { return budgetStore{s} }
func (s *Store) Auth() gateway.AuthGateway                    { return authStore{s} }

type txStore struct{ s *Store }

func (g txStore) List(_ context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	var out []core.Transaction
	for _, t := range g.s.transactions {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	sortTransactions(out, f.Sort)
	return paginate(out, f.Page, f.PageSize), nil
}

func (g txStore) Get(_ context.Context, id string) (core.Transaction, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for _, t := range g.s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, gateway.ErrNotFound
}

func (g txStore) Create(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	t.ID = g.s.id("t")
	g.s.transactions = append(g.s.transactions, t)
	return t, nil
}

func (g txStore) Update(_ context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for i := range g.s.transactions {
		if g.s.transactions[i].ID != id {
			continue
		}
		t := &g.s.transactions[i]
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Amount != nil {
			t.Amount = *patch.Amount
		}
		if patch.CategoryID != nil {
			t.CategoryID = *patch.CategoryID
		}
		if patch.AccountID != nil {
			t.AccountID = *patch.AccountID
		}
		if patch.OccurredAt != nil {
			t.OccurredAt = *patch.OccurredAt
		}
		return *t, nil
	}
	return core.Transaction{}, gateway.ErrNotFound
}

func (g txStore) Delete(_ context.Context, id string, _ bool) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for i := range g.s.transactions {
		if g.s.transactions[i].ID == id {
			g.s.transactions = append(g.s.transactions[:i], g.s.transactions[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

type catStore struct{ s *Store }

func (g catStore) List(_ context.Context) ([]core.TravelCategory, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	out := make([]core.TravelCategory, len(g.s.categories))
	copy(out, g.s.categories)
	return out, nil
}

func (g catStore) Get(_ context.Context, id string) (core.TravelCategory, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for _, c := range g.s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return core.TravelCategory{}, gateway.ErrNotFound
}

func (g catStore) Create(_ context.Context, cat core.TravelCategory) (core.TravelCategory, error) {
	if err := cat.Validate(); err != nil {
		return core.TravelCategory{}, err
	}
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	cat.ID = g.s.id("c")
	g.s.categories = append(g.s.categories, cat)
	return cat, nil
}

func (g catStore) Update(_ context.Context, id string, patch core.TravelCategoryPatch) (core.TravelCategory, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for i := range g.s.categories {
		if g.s.categories[i].ID != id {
			continue
		}
		c := &g.s.categories[i]
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Mandatory != nil {
			c.Mandatory = *patch.Mandatory
		}
		if patch.Active != nil {
			c.Active = *patch.Active
		}
		return *c, nil
	}
	return core.TravelCategory{}, gateway.ErrNotFound
}

func (g catStore) Delete(_ context.Context, id string, _ bool) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for i := range g.s.categories {
		if g.s.categories[i].ID == id {
			g.s.categories = append(g.s.categories[:i], g.s.categories[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

type budgetStore struct{ s *Store }

func (g budgetStore) List(_ context.Context, planID string) ([]core.TravelBudget, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	var out []core.TravelBudget
	for _, b := range g.s.budgets {
		if b.PlanID == planID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (g budgetStore) Get(_ context.Context, id string) (core.TravelBudget, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for _, b := range g.s.budgets {
		if b.ID == id {
			return b, nil
		}
	}
	return core.TravelBudget{}, gateway.ErrNotFound
}

func (g budgetStore) Create(_ context.Context, b core.TravelBudget) (core.TravelBudget, error) {
	if err := b.Validate(); err != nil {
		return core.TravelBudget{}, err
	}
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	b.ID = g.s.id("b")
	g.s.budgets = append(g.s.budgets, b)
	return b, nil
}

func (g budgetStore) Update(_ context.Context, id string, patch core.TravelBudgetPatch) (core.TravelBudget, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for i := range g.s.budgets {
		if g.s.budgets[i].ID != id {
			continue
		}
		b := &g.s.budgets[i]
		if patch.Estimated != nil {
			b.Estimated = *patch.Estimated
		}
		if patch.Spent != nil {
			b.Spent = *patch.Spent
		}
		if patch.Notes != nil {
			b.Notes = *patch.Notes
		}
		return *b, nil
	}
	return core.TravelBudget{}, gateway.ErrNotFound
}

func (g budgetStore) Delete(_ context.Context, id string, _ bool) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	for i := range g.s.budgets {
		if g.s.budgets[i].ID == id {
			g.s.budgets = append(g.s.budgets[:i], g.s.budgets[i+1:]...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

type authStore struct{ s *Store }

func (g authStore) Login(_ context.Context, email, password string) (core.UserIdentity, string, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	u, ok := g.s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok || u.password != password {
		return core.UserIdentity{}, "", gateway.ErrUnauthorized
	}
	return u.identity, fmt.Sprintf("mem-token-%s", u.identity.ID), nil
}

func sortTransactions(items []core.Transaction, order string) {
	switch order {
	case core.SortDateAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].OccurredAt.Before(items[j].OccurredAt) })
	case core.SortAmountDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Amount.Cents > items[j].Amount.Cents })
	case core.SortAmountAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Amount.Cents < items[j].Amount.Cents })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].OccurredAt.After(items[j].OccurredAt) })
	}
}

func paginate(items []core.Transaction, page, pageSize int) []core.Transaction {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return items
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
