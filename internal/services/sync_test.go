package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"monedero/internal/core"
	"monedero/internal/events"
	"monedero/internal/gateway"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []events.MutationMessage
	err       error
}

func (p *fakePublisher) PublishMutation(_ context.Context, resource, id, action string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, events.MutationMessage{Resource: resource, ID: id, Action: action})
	return nil
}

type stubTxGateway struct {
	gateway.TransactionGateway
	deleteErr error
}

func (g stubTxGateway) Create(_ context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = "t-1"
	return t, nil
}

func (g stubTxGateway) Delete(_ context.Context, id string, _ bool) error {
	return g.deleteErr
}

func validTransaction() core.Transaction {
	return core.Transaction{
		Type:       core.Expense,
		Amount:     core.Money{Cents: 100},
		CategoryID: "c1",
		AccountID:  "a1",
		OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreatePublishesMutation(t *testing.T) {
	pub := &fakePublisher{}
	gw := SyncedTransactions(stubTxGateway{}, pub)

	created, err := gw.Create(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.published))
	}
	got := pub.published[0]
	if got.Resource != events.ResourceTransaction || got.ID != created.ID || got.Action != events.ActionCreated {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	gw := SyncedTransactions(stubTxGateway{}, pub)

	if _, err := gw.Create(context.Background(), validTransaction()); err != nil {
		t.Fatalf("broker failure must not fail the create: %v", err)
	}
}

func TestFailedOperationPublishesNothing(t *testing.T) {
	pub := &fakePublisher{}
	gw := SyncedTransactions(stubTxGateway{deleteErr: errors.New("boom")}, pub)

	if err := gw.Delete(context.Background(), "t-1", false); err == nil {
		t.Fatalf("expected delete error")
	}
	if len(pub.published) != 0 {
		t.Fatalf("failed operation must not publish, got %d events", len(pub.published))
	}
}

func TestNilPublisherIsSkipped(t *testing.T) {
	gw := SyncedTransactions(stubTxGateway{}, nil)
	if _, err := gw.Create(context.Background(), validTransaction()); err != nil {
		t.Fatalf("nil publisher must be tolerated: %v", err)
	}
}

type stubCatGateway struct {
	gateway.TravelCategoryGateway
}

func (g stubCatGateway) Get(_ context.Context, id string) (core.TravelCategory, error) {
	return core.TravelCategory{ID: id, Name: "Alojamiento"}, nil
}

type stubBudgetGateway struct {
	gateway.TravelBudgetGateway
}

func (g stubBudgetGateway) Get(_ context.Context, id string) (core.TravelBudget, error) {
	return core.TravelBudget{ID: id, PlanID: "plan-1"}, nil
}

// Reads pass through the decorators via the port and publish nothing.
func TestGetPassesThroughWithoutPublishing(t *testing.T) {
	pub := &fakePublisher{}

	var cats gateway.TravelCategoryGateway = SyncedTravelCategories(stubCatGateway{}, pub)
	cat, err := cats.Get(context.Background(), "c-1")
	if err != nil || cat.Name != "Alojamiento" {
		t.Fatalf("category get: %+v, %v", cat, err)
	}

	var budgets gateway.TravelBudgetGateway = SyncedTravelBudgets(stubBudgetGateway{}, pub)
	b, err := budgets.Get(context.Background(), "b-1")
	if err != nil || b.PlanID != "plan-1" {
		t.Fatalf("budget get: %+v, %v", b, err)
	}

	if len(pub.published) != 0 {
		t.Fatalf("reads must not publish, got %d events", len(pub.published))
	}
}
