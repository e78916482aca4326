// Package backend selects and wires a data backend: the remote REST API, a
// local SQLite database, or the seeded in-memory store.
package backend

import (
	"context"

	"monedero/internal/gateway"
)

// Backend bundles every gateway port the application needs.
type Backend interface {
	Transactions() gateway.TransactionGateway
	TravelCategories() gateway.TravelCategoryGateway
	TravelBudgets() gateway.TravelBudgetGateway
	Auth() gateway.AuthGateway
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// REST specific
	BaseURL string
	Token   func() string

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	RESTBackend   BackendType = "rest"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case RESTBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
