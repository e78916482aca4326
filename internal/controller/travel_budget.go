package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"monedero/internal/core"
	"monedero/internal/feedback"
	"monedero/internal/gateway"
)

// TravelBudgetController manages the budget list of one vacation plan.
// Until a plan is selected, loads are no-ops yielding an empty list.
type TravelBudgetController struct {
	listState[core.TravelBudget]

	gw     gateway.TravelBudgetGateway
	catGw  gateway.TravelCategoryGateway
	planMu sync.Mutex
	planID string
}

func NewTravelBudgetController(gw gateway.TravelBudgetGateway, catGw gateway.TravelCategoryGateway, cfg Config) *TravelBudgetController {
	cfg = cfg.withDefaults()
	c := &TravelBudgetController{gw: gw, catGw: catGw}
	c.init(cfg)
	return c
}

// SetPlan scopes subsequent loads to the given vacation plan.
func (c *TravelBudgetController) SetPlan(planID string) {
	c.planMu.Lock()
	defer c.planMu.Unlock()
	c.planID = planID
}

func (c *TravelBudgetController) Plan() string {
	c.planMu.Lock()
	defer c.planMu.Unlock()
	return c.planID
}

func (c *TravelBudgetController) Load(ctx context.Context) error {
	return c.reload(ctx, true)
}

func (c *TravelBudgetController) Refresh(ctx context.Context) error {
	return c.reload(ctx, false)
}

func (c *TravelBudgetController) reload(ctx context.Context, clearNotices bool) error {
	plan := c.Plan()
	if plan == "" {
		// Scope precondition failure is not an error: empty list, not loading.
		c.beginLoad(clearNotices)
		c.finishLoadOK(nil)
		return nil
	}

	c.beginLoad(clearNotices)
	items, err := c.gw.List(ctx, plan)
	if err != nil {
		c.finishLoadErr(err, "No se pudieron cargar los presupuestos")
		return err
	}

	c.resolveCategoryNames(ctx, items)
	c.finishLoadOK(items)
	return nil
}

// resolveCategoryNames joins budgets against the travel category list so the
// page shows names instead of raw category identifiers. A failed lookup keeps
// the raw id visible rather than hiding the row.
func (c *TravelBudgetController) resolveCategoryNames(ctx context.Context, items []core.TravelBudget) {
	if c.catGw == nil || len(items) == 0 {
		return
	}
	cats, err := c.catGw.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Category lookup for budget display failed", "error", err)
		return
	}
	names := make(map[string]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}
	for i := range items {
		if name, ok := names[items[i].CategoryID]; ok {
			items[i].CategoryName = name
		} else {
			items[i].CategoryName = items[i].CategoryID
		}
	}
}

func (c *TravelBudgetController) Create(ctx context.Context, b core.TravelBudget) error {
	if err := b.Validate(); err != nil {
		c.setError(displayMessage(err, "Datos no válidos"))
		return err
	}
	if !c.tryBegin() {
		return ErrBusy
	}
	defer c.endOp()

	if _, err := c.gw.Create(ctx, b); err != nil {
		msg := displayMessage(err, "No se pudo crear el presupuesto")
		c.notify.Error("Error", msg)
		c.setError(msg)
		return err
	}
	c.notify.Success("Listo", "Presupuesto creado", successDismiss)
	c.setSuccess("Presupuesto creado")
	_ = c.Refresh(ctx)
	return nil
}

func (c *TravelBudgetController) Delete(ctx context.Context, id, label string) error {
	req := feedback.ConfirmRequest{
		Title:        "Eliminar presupuesto",
		Body:         fmt.Sprintf("¿Eliminar el presupuesto de \"%s\"? Esta acción no se puede deshacer.", label),
		ConfirmLabel: "Eliminar",
		CancelLabel:  "Cancelar",
		Severity:     feedback.SeverityDanger,
	}
	return c.mutate(ctx, req,
		"Eliminando presupuesto…",
		"Presupuesto eliminado",
		"No se pudo eliminar el presupuesto",
		func(ctx context.Context) error {
			return c.gw.Delete(ctx, id, false)
		},
		func(ctx context.Context) {
			_ = c.Refresh(ctx)
		},
	)
}
