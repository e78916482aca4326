// Package worker ships transaction mutations from the local backend to the
// spreadsheet export destination.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"monedero/internal/events"
	"monedero/internal/export"
	"monedero/internal/gateway"
)

// ExportWorker consumes mutation messages and mirrors transaction changes to
// the exporter. Other resources are acknowledged and skipped.
type ExportWorker struct {
	transactions gateway.TransactionGateway
	exporter     export.TransactionExporter
}

func NewExportWorker(transactions gateway.TransactionGateway, exporter export.TransactionExporter) *ExportWorker {
	return &ExportWorker{
		transactions: transactions,
		exporter:     exporter,
	}
}

// HandleMutation processes one mutation message. Returning an error requeues
// the message.
func (w *ExportWorker) HandleMutation(ctx context.Context, msg *events.MutationMessage) error {
	if msg.Resource != events.ResourceTransaction {
		slog.DebugContext(ctx, "Skipping non-transaction mutation",
			"resource", msg.Resource, "id", msg.ID)
		return nil
	}

	switch msg.Action {
	case events.ActionCreated, events.ActionUpdated:
		return w.exportTransaction(ctx, msg.ID)
	case events.ActionDeleted:
		if err := w.exporter.Remove(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove exported row: %w", err)
		}
		return nil
	default:
		slog.WarnContext(ctx, "Unknown mutation action, dropping",
			"action", msg.Action, "id", msg.ID)
		return nil
	}
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id string) error {
	t, err := w.transactions.Get(ctx, id)
	if errors.Is(err, gateway.ErrNotFound) {
		// Deleted between publish and consume. Nothing to export.
		slog.WarnContext(ctx, "Transaction gone before export", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch transaction: %w", err)
	}

	ref, err := w.exporter.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"id", id,
		"ref", ref)
	return nil
}

// consumer is the slice of the events client the run loop needs.
type consumer interface {
	ConsumeMutations(ctx context.Context, handler func(*events.MutationMessage) error) error
}

// Run consumes until ctx ends, reconnecting with exponential backoff when the
// consume loop drops.
func (w *ExportWorker) Run(ctx context.Context, c consumer) error {
	attempt := 0
	for {
		err := c.ConsumeMutations(ctx, func(msg *events.MutationMessage) error {
			return w.HandleMutation(ctx, msg)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := exponentialBackoff(attempt)
		attempt++
		slog.ErrorContext(ctx, "Consume loop dropped, reconnecting",
			"error", err,
			"attempt", attempt,
			"delay", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func exponentialBackoff(attempt int) time.Duration {
	const maxDelay = 30 * time.Second
	delay := time.Second << attempt
	if delay <= 0 || delay > maxDelay {
		return maxDelay
	}
	return delay
}
