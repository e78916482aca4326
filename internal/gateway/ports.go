// Package gateway defines the outbound ports toward the remote data backend.
package gateway

import (
	"context"
	"errors"

	"monedero/internal/core"
)

// Sentinel errors every implementation maps its failures onto. Anything else
// surfaces as a plain error whose message is shown to the user verbatim.
var (
	ErrUnauthorized = errors.New("missing or expired credential")
	ErrNotFound     = errors.New("record not found")
)

type (
	TransactionGateway interface {
		List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
		Get(ctx context.Context, id string) (core.Transaction, error)
		Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
		Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error)
		Delete(ctx context.Context, id string, permanent bool) error
	}

	TravelCategoryGateway interface {
		List(ctx context.Context) ([]core.TravelCategory, error)
		Get(ctx context.Context, id string) (core.TravelCategory, error)
		Create(ctx context.Context, c core.TravelCategory) (core.TravelCategory, error)
		Update(ctx context.Context, id string, patch core.TravelCategoryPatch) (core.TravelCategory, error)
		Delete(ctx context.Context, id string, permanent bool) error
	}

	// TravelBudgetGateway lists are scoped to a parent vacation plan.
	TravelBudgetGateway interface {
		List(ctx context.Context, planID string) ([]core.TravelBudget, error)
		Get(ctx context.Context, id string) (core.TravelBudget, error)
		Create(ctx context.Context, b core.TravelBudget) (core.TravelBudget, error)
		Update(ctx context.Context, id string, patch core.TravelBudgetPatch) (core.TravelBudget, error)
		Delete(ctx context.Context, id string, permanent bool) error
	}

	// AuthGateway exchanges credentials for an identity and opaque token.
	AuthGateway interface {
		Login(ctx context.Context, email, password string) (core.UserIdentity, string, error)
	}
)
