package controller

import (
	"context"
	"fmt"

	"monedero/internal/core"
	"monedero/internal/feedback"
	"monedero/internal/gateway"
)

// TravelCategoryController manages the travel category list: load, create,
// activate/deactivate in place, and permanent deletion.
type TravelCategoryController struct {
	listState[core.TravelCategory]

	gw gateway.TravelCategoryGateway
}

func NewTravelCategoryController(gw gateway.TravelCategoryGateway, cfg Config) *TravelCategoryController {
	cfg = cfg.withDefaults()
	c := &TravelCategoryController{gw: gw}
	c.init(cfg)
	return c
}

func (c *TravelCategoryController) Load(ctx context.Context) error {
	c.beginLoad(true)
	items, err := c.gw.List(ctx)
	if err != nil {
		c.finishLoadErr(err, "No se pudieron cargar las categorías")
		return err
	}
	c.finishLoadOK(items)
	return nil
}

// Refresh keeps any success notice a preceding mutation set.
func (c *TravelCategoryController) Refresh(ctx context.Context) error {
	c.beginLoad(false)
	items, err := c.gw.List(ctx)
	if err != nil {
		c.finishLoadErr(err, "No se pudieron cargar las categorías")
		return err
	}
	c.finishLoadOK(items)
	return nil
}

func (c *TravelCategoryController) Create(ctx context.Context, cat core.TravelCategory) error {
	if err := cat.Validate(); err != nil {
		c.setError(displayMessage(err, "Datos no válidos"))
		return err
	}
	if !c.tryBegin() {
		return ErrBusy
	}
	defer c.endOp()

	if _, err := c.gw.Create(ctx, cat); err != nil {
		msg := displayMessage(err, "No se pudo crear la categoría")
		c.notify.Error("Error", msg)
		c.setError(msg)
		return err
	}
	c.notify.Success("Listo", "Categoría creada", successDismiss)
	c.setSuccess("Categoría creada")
	_ = c.Refresh(ctx)
	return nil
}

// ToggleActive flips the category's active flag server-side after the user
// confirms. No optimistic local flip: the list reflects the new state only
// through the refresh.
func (c *TravelCategoryController) ToggleActive(ctx context.Context, cat core.TravelCategory) error {
	next := !cat.Active
	action := "desactivar"
	done := "Categoría desactivada"
	if next {
		action = "activar"
		done = "Categoría activada"
	}

	req := feedback.ConfirmRequest{
		Title:        fmt.Sprintf("¿Seguro que quieres %s \"%s\"?", action, cat.Name),
		Body:         "Podrás revertir este cambio en cualquier momento.",
		ConfirmLabel: "Sí, continuar",
		CancelLabel:  "Cancelar",
		Severity:     feedback.SeverityWarning,
	}
	return c.mutate(ctx, req,
		"Actualizando categoría…",
		done,
		"No se pudo actualizar la categoría",
		func(ctx context.Context) error {
			_, err := c.gw.Update(ctx, cat.ID, core.TravelCategoryPatch{Active: &next})
			return err
		},
		func(ctx context.Context) {
			_ = c.Refresh(ctx)
		},
	)
}

// Delete removes the category permanently after a destructive-intent
// confirmation referencing its name.
func (c *TravelCategoryController) Delete(ctx context.Context, id, name string) error {
	req := feedback.ConfirmRequest{
		Title:        "Eliminar categoría",
		Body:         fmt.Sprintf("¿Eliminar \"%s\" de forma permanente? Esta acción no se puede deshacer.", name),
		ConfirmLabel: "Eliminar",
		CancelLabel:  "Cancelar",
		Severity:     feedback.SeverityDanger,
	}
	return c.mutate(ctx, req,
		"Eliminando categoría…",
		"Categoría eliminada",
		"No se pudo eliminar la categoría",
		func(ctx context.Context) error {
			return c.gw.Delete(ctx, id, true)
		},
		func(ctx context.Context) {
			_ = c.Refresh(ctx)
		},
	)
}
