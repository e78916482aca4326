// Package services decorates the gateway ports with mutation event
// publishing. Events are best-effort: a broker failure never fails the
// underlying operation.
package services

import (
	"context"
	"log/slog"

	"monedero/internal/core"
	"monedero/internal/events"
	"monedero/internal/gateway"
)

// MutationPublisher is the slice of the events client the decorators need.
type MutationPublisher interface {
	PublishMutation(ctx context.Context, resource, id, action string) error
}

func publish(ctx context.Context, p MutationPublisher, resource, id, action string) {
	if p == nil {
		return
	}
	if err := p.PublishMutation(ctx, resource, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mutation message",
			"resource", resource, "id", id, "action", action, "error", err)
	}
}

// SyncedTransactions wraps a transaction gateway with event publishing.
func SyncedTransactions(gw gateway.TransactionGateway, pub MutationPublisher) gateway.TransactionGateway {
	return syncedTxGateway{gw: gw, pub: pub}
}

type syncedTxGateway struct {
	gw  gateway.TransactionGateway
	pub MutationPublisher
}

func (s syncedTxGateway) List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	return s.gw.List(ctx, f)
}

func (s syncedTxGateway) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.gw.Get(ctx, id)
}

func (s syncedTxGateway) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.gw.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	publish(ctx, s.pub, events.ResourceTransaction, created.ID, events.ActionCreated)
	return created, nil
}

func (s syncedTxGateway) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	updated, err := s.gw.Update(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}
	publish(ctx, s.pub, events.ResourceTransaction, id, events.ActionUpdated)
	return updated, nil
}

func (s syncedTxGateway) Delete(ctx context.Context, id string, permanent bool) error {
	if err := s.gw.Delete(ctx, id, permanent); err != nil {
		return err
	}
	publish(ctx, s.pub, events.ResourceTransaction, id, events.ActionDeleted)
	return nil
}

// SyncedTravelCategories wraps a travel category gateway with event publishing.
func SyncedTravelCategories(gw gateway.TravelCategoryGateway, pub MutationPublisher) gateway.TravelCategoryGateway {
	return syncedCatGateway{gw: gw, pub: pub}
}

type syncedCatGateway struct {
	gw  gateway.TravelCategoryGateway
	pub MutationPublisher
}

func (s syncedCatGateway) List(ctx context.Context) ([]core.TravelCategory, error) {
	return s.gw.List(ctx)
}

func (s syncedCatGateway) Get(ctx context.Context, id string) (core.TravelCategory, error) {
	return s.gw.Get(ctx, id)
}

func (s syncedCatGateway) Create(ctx context.Context, cat core.TravelCategory) (core.TravelCategory, error) {
	created, err := s.gw.Create(ctx, cat)
	if err != nil {
		return core.TravelCategory{}, err
	}
	publish(ctx, s.pub, events.ResourceTravelCategory, created.ID, events.ActionCreated)
	return created, nil
}

func (s syncedCatGateway) Update(ctx context.Context, id string, patch core.TravelCategoryPatch) (core.TravelCategory, error) {
	updated, err := s.gw.Update(ctx, id, patch)
	if err != nil {
		return core.TravelCategory{}, err
	}
	publish(ctx, s.pub, events.ResourceTravelCategory, id, events.ActionUpdated)
	return updated, nil
}

func (s syncedCatGateway) Delete(ctx context.Context, id string, permanent bool) error {
	if err := s.gw.Delete(ctx, id, permanent); err != nil {
		return err
	}
	publish(ctx, s.pub, events.ResourceTravelCategory, id, events.ActionDeleted)
	return nil
}

// SyncedTravelBudgets wraps a travel budget gateway with event publishing.
func SyncedTravelBudgets(gw gateway.TravelBudgetGateway, pub MutationPublisher) gateway.TravelBudgetGateway {
	return syncedBudgetGateway{gw: gw, pub: pub}
}

type syncedBudgetGateway struct {
	gw  gateway.TravelBudgetGateway
	pub MutationPublisher
}

func (s syncedBudgetGateway) List(ctx context.Context, planID string) ([]core.TravelBudget, error) {
	return s.gw.List(ctx, planID)
}

func (s syncedBudgetGateway) Get(ctx context.Context, id string) (core.TravelBudget, error) {
	return s.gw.Get(ctx, id)
}

func (s syncedBudgetGateway) Create(ctx context.Context, b core.TravelBudget) (core.TravelBudget, error) {
	created, err := s.gw.Create(ctx, b)
	if err != nil {
		return core.TravelBudget{}, err
	}
	publish(ctx, s.pub, events.ResourceTravelBudget, created.ID, events.ActionCreated)
	return created, nil
}

func (s syncedBudgetGateway) Update(ctx context.Context, id string, patch core.TravelBudgetPatch) (core.TravelBudget, error) {
	updated, err := s.gw.Update(ctx, id, patch)
	if err != nil {
		return core.TravelBudget{}, err
	}
	publish(ctx, s.pub, events.ResourceTravelBudget, id, events.ActionUpdated)
	return updated, nil
}

func (s syncedBudgetGateway) Delete(ctx context.Context, id string, permanent bool) error {
	if err := s.gw.Delete(ctx, id, permanent); err != nil {
		return err
	}
	publish(ctx, s.pub, events.ResourceTravelBudget, id, events.ActionDeleted)
	return nil
}
