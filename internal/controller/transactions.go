package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"monedero/internal/core"
	"monedero/internal/feedback"
	"monedero/internal/gateway"
	"monedero/internal/session"
)

const loadTransactionsFallback = "No se pudieron cargar los movimientos"

// TransactionController owns the transaction list lifecycle for one session.
type TransactionController struct {
	listState[core.Transaction]

	gw   gateway.TransactionGateway
	sess session.Provider

	statsMu  sync.Mutex
	stats    core.Statistics
	criteria core.TransactionFilter

	now           func() time.Time
	redirectDelay time.Duration
	onAuthExpired func()
	redirectTimer *time.Timer
}

func NewTransactionController(gw gateway.TransactionGateway, sess session.Provider, cfg Config) *TransactionController {
	cfg = cfg.withDefaults()
	c := &TransactionController{
		gw:            gw,
		sess:          sess,
		now:           cfg.Now,
		redirectDelay: cfg.RedirectDelay,
		onAuthExpired: cfg.OnAuthExpired,
	}
	c.init(cfg)
	return c
}

// Load fetches the list with the given criteria, replacing the result set on
// success and recomputing statistics. An unauthenticated session clears
// itself and schedules the login redirect instead of calling the gateway.
func (c *TransactionController) Load(ctx context.Context, f core.TransactionFilter) error {
	return c.reload(ctx, f, true)
}

// Refresh re-runs Load with the currently active criteria. Used after every
// mutation; it keeps the mutation's success notice on screen.
func (c *TransactionController) Refresh(ctx context.Context) error {
	c.statsMu.Lock()
	f := c.criteria
	c.statsMu.Unlock()
	return c.reload(ctx, f, false)
}

func (c *TransactionController) reload(ctx context.Context, f core.TransactionFilter, clearNotices bool) error {
	if c.sess.CurrentUser() == nil || c.sess.Token() == "" {
		c.handleAuthExpired(ctx)
		return gateway.ErrUnauthorized
	}

	f = f.Normalize(c.now())
	c.statsMu.Lock()
	c.criteria = f
	c.statsMu.Unlock()

	c.beginLoad(clearNotices)
	items, err := c.gw.List(ctx, f)
	if err != nil {
		c.finishLoadErr(err, loadTransactionsFallback)
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.handleAuthExpired(ctx)
		}
		return err
	}

	c.finishLoadOK(items)
	c.statsMu.Lock()
	c.stats = core.ComputeStatistics(items)
	c.statsMu.Unlock()
	return nil
}

// Create validates and submits a new transaction, then refreshes. Creation is
// an explicit form submission, so no confirmation dialog is involved, but the
// in-flight guard still applies.
func (c *TransactionController) Create(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		c.setError(displayMessage(err, "Datos no válidos"))
		return err
	}
	if !c.tryBegin() {
		return ErrBusy
	}
	defer c.endOp()

	created, err := c.gw.Create(ctx, t)
	if err != nil {
		msg := displayMessage(err, "No se pudo registrar el movimiento")
		c.notify.Error("Error", msg)
		c.setError(msg)
		return err
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", created.ID,
		"type", created.Type,
		"amount_cents", created.Amount.Cents)
	c.notify.Success("Listo", "Movimiento registrado", successDismiss)
	c.setSuccess("Movimiento registrado")
	_ = c.Refresh(ctx)
	return nil
}

// Delete asks for confirmation referencing the display label and, when
// confirmed, deletes remotely and refreshes. The item stays in the local list
// until the refresh lands.
func (c *TransactionController) Delete(ctx context.Context, id, label string) error {
	req := feedback.ConfirmRequest{
		Title:        "Eliminar movimiento",
		Body:         fmt.Sprintf("¿Eliminar \"%s\"? Esta acción no se puede deshacer.", label),
		ConfirmLabel: "Eliminar",
		CancelLabel:  "Cancelar",
		Severity:     feedback.SeverityDanger,
	}
	return c.mutate(ctx, req,
		"Eliminando movimiento…",
		"Movimiento eliminado",
		"No se pudo eliminar el movimiento",
		func(ctx context.Context) error {
			return c.gw.Delete(ctx, id, false)
		},
		func(ctx context.Context) {
			_ = c.Refresh(ctx)
		},
	)
}

// Statistics returns the aggregates computed from the last successful load.
func (c *TransactionController) Statistics() core.Statistics {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Criteria returns the currently active (normalized) filter.
func (c *TransactionController) Criteria() core.TransactionFilter {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.criteria
}

// handleAuthExpired clears the session immediately and schedules the redirect
// to the login entry point after the configured delay.
func (c *TransactionController) handleAuthExpired(ctx context.Context) {
	c.finishLoadErr(gateway.ErrUnauthorized, loadTransactionsFallback)
	c.sess.Logout()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if c.onAuthExpired == nil {
		return
	}
	if c.redirectTimer != nil {
		c.redirectTimer.Stop()
	}
	slog.WarnContext(ctx, "Credential missing or expired, scheduling login redirect",
		"delay", c.redirectDelay)
	c.redirectTimer = time.AfterFunc(c.redirectDelay, c.onAuthExpired)
}

// Close stops notice and redirect timers.
func (c *TransactionController) Close() {
	c.listState.Close()
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if c.redirectTimer != nil {
		c.redirectTimer.Stop()
		c.redirectTimer = nil
	}
}
