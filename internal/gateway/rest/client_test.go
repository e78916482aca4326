package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"monedero/internal/core"
	"monedero/internal/gateway"
)

func staticToken(tok string) TokenFunc {
	return func() string { return tok }
}

func TestListSendsCriteriaAndToken(t *testing.T) {
	var gotAuth string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transactions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		json.NewEncoder(w).Encode([]core.Transaction{{ID: "t1", Type: core.Expense}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok123"))
	f := core.TransactionFilter{Search: "café", Type: core.Expense}.Normalize(time.Now())
	items, err := c.Transactions().List(context.Background(), f)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != "t1" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("bearer token not attached, got %q", gotAuth)
	}
	if gotQuery["search"] != "café" || gotQuery["type"] != "expense" {
		t.Fatalf("criteria not sent: %v", gotQuery)
	}
	if gotQuery["page"] != "1" || gotQuery["sort"] != core.SortDateDesc {
		t.Fatalf("normalized defaults not sent: %v", gotQuery)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken(""))
	_, err := c.Transactions().List(context.Background(), core.TransactionFilter{})
	if !errors.Is(err, gateway.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestErrorEnvelopeBecomesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "El importe debe ser positivo"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	_, err := c.Transactions().Create(context.Background(), core.Transaction{})
	if err == nil || err.Error() != "El importe debe ser positivo" {
		t.Fatalf("expected envelope message, got %v", err)
	}
}

func TestDeletePermanentFlag(t *testing.T) {
	var gotPermanent string
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPermanent = r.URL.Query().Get("permanent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	if err := c.TravelCategories().Delete(context.Background(), "c1", true); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPermanent != "true" {
		t.Fatalf("got %s permanent=%q", gotMethod, gotPermanent)
	}
}

func TestBudgetListScopedToPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/travel/plans/p1/budgets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]core.TravelBudget{{ID: "b1", PlanID: "p1"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	items, err := c.TravelBudgets().List(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].PlanID != "p1" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestLoginReturnsIdentityAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != "ana@example.com" {
			t.Errorf("unexpected email %q", req["email"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user":  core.UserIdentity{ID: "u1", Name: "Ana", Email: "ana@example.com"},
			"token": "tok456",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	user, tok, err := c.Auth().Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "u1" || tok != "tok456" {
		t.Fatalf("unexpected login result: %+v %q", user, tok)
	}
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	_, err := c.Transactions().Get(context.Background(), "missing")
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
