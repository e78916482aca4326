package core

import (
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -10}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionTypeIsValid(t *testing.T) {
	for _, tt := range []TransactionType{Income, Expense, Transfer} {
		if !tt.IsValid() {
			t.Fatalf("%s should be valid", tt)
		}
	}
	if TransactionType("withdrawal").IsValid() {
		t.Fatalf("unknown type should be invalid")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:       Expense,
		Amount:     Money{Cents: 1500},
		Currency:   "EUR",
		CategoryID: "cat-1",
		AccountID:  "acc-1",
		OccurredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "x", Amount: Money{Cents: 1}, CategoryID: "c", AccountID: "a", OccurredAt: good.OccurredAt},
		{Type: Expense, Amount: Money{Cents: 0}, CategoryID: "c", AccountID: "a", OccurredAt: good.OccurredAt},
		{Type: Expense, Amount: Money{Cents: 1}, CategoryID: "", AccountID: "a", OccurredAt: good.OccurredAt},
		{Type: Expense, Amount: Money{Cents: 1}, CategoryID: "c", AccountID: "", OccurredAt: good.OccurredAt},
		{Type: Expense, Amount: Money{Cents: 1}, CategoryID: "c", AccountID: "a"},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTravelCategoryValidate(t *testing.T) {
	good := TravelCategory{Name: "Alojamiento", Icon: "bed", Color: "#0af", Active: true}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (TravelCategory{Name: "  "}).Validate(); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if err := (TravelCategory{Name: "x", DisplayOrder: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative order")
	}
}

func TestTravelBudgetValidate(t *testing.T) {
	good := TravelBudget{PlanID: "plan-1", CategoryID: "cat-1", Estimated: Money{Cents: 50000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []TravelBudget{
		{PlanID: "", CategoryID: "c", Estimated: Money{Cents: 1}},
		{PlanID: "p", CategoryID: "", Estimated: Money{Cents: 1}},
		{PlanID: "p", CategoryID: "c", Estimated: Money{Cents: 0}},
		{PlanID: "p", CategoryID: "c", Estimated: Money{Cents: 1}, Spent: Money{Cents: -1}},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestPatchIsEmpty(t *testing.T) {
	if !(TravelCategoryPatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
	active := false
	if (TravelCategoryPatch{Active: &active}).IsEmpty() {
		t.Fatalf("patch with active flag should not be empty")
	}
	if !(TransactionPatch{}).IsEmpty() || !(TravelBudgetPatch{}).IsEmpty() {
		t.Fatalf("zero patches should be empty")
	}
}
