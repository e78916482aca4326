package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"monedero/internal/core"
	"monedero/internal/feedback"
)

type fakeCategoryGateway struct {
	mu         sync.Mutex
	items      []core.TravelCategory
	listErr    error
	updateErr  error
	listCalls  int
	lastPatch  *core.TravelCategoryPatch
	lastUpdate string
	deleted    []string
	permanent  []bool
	log        *callLog
}

func (g *fakeCategoryGateway) List(ctx context.Context) ([]core.TravelCategory, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	if g.log != nil {
		g.log.add("list")
	}
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]core.TravelCategory, len(g.items))
	copy(out, g.items)
	return out, nil
}

func (g *fakeCategoryGateway) Get(ctx context.Context, id string) (core.TravelCategory, error) {
	return core.TravelCategory{}, errors.New("not implemented")
}

func (g *fakeCategoryGateway) Create(ctx context.Context, cat core.TravelCategory) (core.TravelCategory, error) {
	cat.ID = "new"
	return cat, nil
}

func (g *fakeCategoryGateway) Update(ctx context.Context, id string, patch core.TravelCategoryPatch) (core.TravelCategory, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.log != nil {
		g.log.add("update")
	}
	if g.updateErr != nil {
		return core.TravelCategory{}, g.updateErr
	}
	g.lastUpdate = id
	p := patch
	g.lastPatch = &p
	return core.TravelCategory{ID: id}, nil
}

func (g *fakeCategoryGateway) Delete(ctx context.Context, id string, permanent bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.log != nil {
		g.log.add("delete")
	}
	g.deleted = append(g.deleted, id)
	g.permanent = append(g.permanent, permanent)
	return nil
}

type fakeBudgetGateway struct {
	mu        sync.Mutex
	items     []core.TravelBudget
	listErr   error
	listCalls int
	lastPlan  string
	deleted   []string
	permanent []bool
}

func (g *fakeBudgetGateway) List(ctx context.Context, planID string) ([]core.TravelBudget, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	g.lastPlan = planID
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]core.TravelBudget, len(g.items))
	copy(out, g.items)
	return out, nil
}

func (g *fakeBudgetGateway) Get(ctx context.Context, id string) (core.TravelBudget, error) {
	return core.TravelBudget{}, errors.New("not implemented")
}

func (g *fakeBudgetGateway) Create(ctx context.Context, b core.TravelBudget) (core.TravelBudget, error) {
	b.ID = "new"
	return b, nil
}

func (g *fakeBudgetGateway) Update(ctx context.Context, id string, patch core.TravelBudgetPatch) (core.TravelBudget, error) {
	return core.TravelBudget{}, errors.New("not implemented")
}

func (g *fakeBudgetGateway) Delete(ctx context.Context, id string, permanent bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, id)
	g.permanent = append(g.permanent, permanent)
	return nil
}

func sampleCategories() []core.TravelCategory {
	return []core.TravelCategory{
		{ID: "c1", Name: "Alojamiento", Mandatory: true, Active: true},
		{ID: "c2", Name: "Ocio", Active: true},
		{ID: "c3", Name: "Seguro", Active: false},
	}
}

func TestCategoryToggleSendsPatchAndRefreshes(t *testing.T) {
	gw := &fakeCategoryGateway{items: sampleCategories()}
	c := NewTravelCategoryController(gw, Config{Confirm: feedback.Static{Answer: true}})
	ctx := context.Background()

	if err := c.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.ToggleActive(ctx, sampleCategories()[0]); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if gw.lastUpdate != "c1" {
		t.Fatalf("updated wrong category: %q", gw.lastUpdate)
	}
	if gw.lastPatch == nil || gw.lastPatch.Active == nil {
		t.Fatalf("patch must carry the active flag")
	}
	if *gw.lastPatch.Active != false {
		t.Fatalf("active category must be deactivated, patch wanted %v", *gw.lastPatch.Active)
	}
	if gw.lastPatch.Name != nil || gw.lastPatch.Mandatory != nil {
		t.Fatalf("toggle must patch only the active flag: %+v", gw.lastPatch)
	}
	if gw.listCalls != 2 {
		t.Fatalf("expected load + refresh, got %d list calls", gw.listCalls)
	}
}

func TestCategoryToggleDeclinedDoesNothing(t *testing.T) {
	gw := &fakeCategoryGateway{items: sampleCategories()}
	confirm := &recordingConfirmer{answer: false}
	c := NewTravelCategoryController(gw, Config{Confirm: confirm})
	ctx := context.Background()

	if err := c.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.ToggleActive(ctx, sampleCategories()[2]); err != nil {
		t.Fatalf("declined toggle must not error: %v", err)
	}
	if gw.lastPatch != nil {
		t.Fatalf("no update may happen without confirmation")
	}
	if gw.listCalls != 1 {
		t.Fatalf("no refresh may happen without confirmation, got %d list calls", gw.listCalls)
	}
	// The confirmation prompt names the action to apply, not the current state.
	if confirm.last == nil {
		t.Fatalf("confirmation was never requested")
	}
	if got := confirm.last.Title; got != "¿Seguro que quieres activar \"Seguro\"?" {
		t.Fatalf("unexpected confirmation title: %q", got)
	}
}

func TestCategoryDeleteIsPermanent(t *testing.T) {
	gw := &fakeCategoryGateway{items: sampleCategories()}
	c := NewTravelCategoryController(gw, Config{Confirm: feedback.Static{Answer: true}})

	if err := c.Delete(context.Background(), "c2", "Ocio"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(gw.deleted) != 1 || gw.deleted[0] != "c2" {
		t.Fatalf("wrong deletion: %v", gw.deleted)
	}
	if !gw.permanent[0] {
		t.Fatalf("category deletion must be permanent")
	}
}

func TestBudgetLoadWithoutPlanSkipsGateway(t *testing.T) {
	gw := &fakeBudgetGateway{items: []core.TravelBudget{{ID: "b1", PlanID: "p1", CategoryID: "c1"}}}
	c := NewTravelBudgetController(gw, nil, Config{})

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load without plan must not error: %v", err)
	}
	if gw.listCalls != 0 {
		t.Fatalf("no gateway call may happen without a plan")
	}
	if got := len(c.Items()); got != 0 {
		t.Fatalf("expected empty result set, got %d", got)
	}
	if c.Loading() {
		t.Fatalf("loading must be false")
	}
	if c.ErrorMessage() != "" {
		t.Fatalf("missing plan is not an error state, got %q", c.ErrorMessage())
	}
}

func TestBudgetLoadResolvesCategoryNames(t *testing.T) {
	budgets := []core.TravelBudget{
		{ID: "b1", PlanID: "p1", CategoryID: "c1", Estimated: core.Money{Cents: 50000}},
		{ID: "b2", PlanID: "p1", CategoryID: "desconocida", Estimated: core.Money{Cents: 2000}},
	}
	gw := &fakeBudgetGateway{items: budgets}
	catGw := &fakeCategoryGateway{items: sampleCategories()}
	c := NewTravelBudgetController(gw, catGw, Config{})
	c.SetPlan("p1")

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	items := c.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(items))
	}
	if items[0].CategoryName != "Alojamiento" {
		t.Fatalf("category name not resolved: %q", items[0].CategoryName)
	}
	if items[1].CategoryName != "desconocida" {
		t.Fatalf("unresolved category must keep the raw id, got %q", items[1].CategoryName)
	}
	if gw.lastPlan != "p1" {
		t.Fatalf("gateway got wrong plan: %q", gw.lastPlan)
	}
}

func TestBudgetLoadSurvivesCategoryLookupFailure(t *testing.T) {
	gw := &fakeBudgetGateway{items: []core.TravelBudget{{ID: "b1", PlanID: "p1", CategoryID: "c1"}}}
	catGw := &fakeCategoryGateway{listErr: errors.New("boom")}
	c := NewTravelBudgetController(gw, catGw, Config{})
	c.SetPlan("p1")

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("budget load must not fail on a display-only lookup: %v", err)
	}
	if got := len(c.Items()); got != 1 {
		t.Fatalf("expected 1 budget, got %d", got)
	}
}

func TestBudgetDeleteIsSoft(t *testing.T) {
	gw := &fakeBudgetGateway{items: []core.TravelBudget{{ID: "b1", PlanID: "p1", CategoryID: "c1"}}}
	c := NewTravelBudgetController(gw, nil, Config{Confirm: feedback.Static{Answer: true}})
	c.SetPlan("p1")

	if err := c.Delete(context.Background(), "b1", "Alojamiento"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(gw.deleted) != 1 || gw.deleted[0] != "b1" {
		t.Fatalf("wrong deletion: %v", gw.deleted)
	}
	if gw.permanent[0] {
		t.Fatalf("budget deletion must not be permanent")
	}
}
