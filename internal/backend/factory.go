package backend

import (
	"context"
	"fmt"
	"log/slog"

	"monedero/internal/events"
	"monedero/internal/gateway"
	"monedero/internal/gateway/memory"
	"monedero/internal/gateway/rest"
	"monedero/internal/services"
	"monedero/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case RESTBackend:
		return f.createRESTBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRESTBackend(config Config) (*BackendResult, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for rest backend")
	}

	client := rest.NewClient(config.BaseURL, config.Token)
	f.logger.Info("Initialized REST backend", "base_url", config.BaseURL)

	return &BackendResult{Backend: client, Cleanup: nil}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional: without it mutations simply are not broadcast.
	var amqpClient *events.Client
	if config.AMQPURL != "" {
		amqpClient, err = events.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	wrapped := syncedBackend{inner: repo, pub: publisherOrNil(amqpClient)}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	cleanup := func() error {
		if amqpClient != nil {
			amqpClient.Close()
		}
		return repo.Close()
	}
	return &BackendResult{Backend: wrapped, Cleanup: cleanup}, nil
}

func (f *DefaultFactory) createMemoryBackend(_ Config) (*BackendResult, error) {
	store := memory.NewSeeded()
	f.logger.Info("Initialized memory backend")
	return &BackendResult{Backend: store, Cleanup: nil}, nil
}

// publisherOrNil avoids wrapping a typed nil in the interface.
func publisherOrNil(c *events.Client) services.MutationPublisher {
	if c == nil {
		return nil
	}
	return c
}

// syncedBackend decorates a backend's mutating gateways with event publishing.
type syncedBackend struct {
	inner Backend
	pub   services.MutationPublisher
}

func (b syncedBackend) Transactions() gateway.TransactionGateway {
	return services.SyncedTransactions(b.inner.Transactions(), b.pub)
}

func (b syncedBackend) TravelCategories() gateway.TravelCategoryGateway {
	return services.SyncedTravelCategories(b.inner.TravelCategories(), b.pub)
}

func (b syncedBackend) TravelBudgets() gateway.TravelBudgetGateway {
	return services.SyncedTravelBudgets(b.inner.TravelBudgets(), b.pub)
}

func (b syncedBackend) Auth() gateway.AuthGateway {
	return b.inner.Auth()
}
