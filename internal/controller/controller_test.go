package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"monedero/internal/core"
	"monedero/internal/feedback"
)

// Shared fakes for the controller tests.

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

type recordingNotifier struct {
	log *callLog
}

func (n recordingNotifier) Progress(title, body string) { n.log.add("progress") }
func (n recordingNotifier) Success(title, body string, autoDismiss time.Duration) {
	n.log.add("success")
}
func (n recordingNotifier) Error(title, body string) { n.log.add("error") }

type recordingConfirmer struct {
	answer bool
	log    *callLog
	last   *feedback.ConfirmRequest
}

func (c *recordingConfirmer) Confirm(ctx context.Context, req feedback.ConfirmRequest) bool {
	if c.log != nil {
		c.log.add("confirm")
	}
	r := req
	c.last = &r
	return c.answer
}

type fakeTxGateway struct {
	mu         sync.Mutex
	items      []core.Transaction
	listErr    error
	deleteErr  error
	createErr  error
	listCalls  int
	lastFilter core.TransactionFilter
	deleted    []string
	log        *callLog
}

func (g *fakeTxGateway) List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	g.lastFilter = f
	if g.log != nil {
		g.log.add("list")
	}
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]core.Transaction, len(g.items))
	copy(out, g.items)
	return out, nil
}

func (g *fakeTxGateway) Get(ctx context.Context, id string) (core.Transaction, error) {
	return core.Transaction{}, errors.New("not implemented")
}

func (g *fakeTxGateway) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if g.createErr != nil {
		return core.Transaction{}, g.createErr
	}
	t.ID = "new"
	return t, nil
}

func (g *fakeTxGateway) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	return core.Transaction{}, errors.New("not implemented")
}

func (g *fakeTxGateway) Delete(ctx context.Context, id string, permanent bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.log != nil {
		g.log.add("delete")
	}
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, id)
	return nil
}

type fakeSession struct {
	mu      sync.Mutex
	user    *core.UserIdentity
	token   string
	logouts int
}

func (s *fakeSession) CurrentUser() *core.UserIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.logouts++
}

func (s *fakeSession) logoutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

func loggedIn() *fakeSession {
	return &fakeSession{user: &core.UserIdentity{ID: "u1", Name: "Ana"}, token: "tok"}
}

func sampleTransactions() []core.Transaction {
	when := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	return []core.Transaction{
		{ID: "t1", Type: core.Income, Amount: core.Money{Cents: 10000}, CategoryID: "c1", AccountID: "a1", OccurredAt: when},
		{ID: "t2", Type: core.Expense, Amount: core.Money{Cents: 4000}, CategoryID: "c1", AccountID: "a1", OccurredAt: when},
		{ID: "t3", Type: core.Expense, Amount: core.Money{Cents: 1000}, CategoryID: "c2", AccountID: "a1", OccurredAt: when},
	}
}
