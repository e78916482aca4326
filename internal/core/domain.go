package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// UserIdentity is the authenticated identity supplied by the session provider.
	UserIdentity struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	// Transaction is a read-mostly record owned by the remote backend.
	// Amounts are stored positive; the type tag carries the sign convention.
	Transaction struct {
		ID            string          `json:"id"`
		Type          TransactionType `json:"type"`
		Amount        Money           `json:"amountCents"`
		Currency      string          `json:"currency"`
		Description   string          `json:"description,omitempty"`
		CategoryID    string          `json:"categoryId"`
		CategoryName  string          `json:"categoryName"`
		CategoryIcon  string          `json:"categoryIcon,omitempty"`
		CategoryColor string          `json:"categoryColor,omitempty"`
		AccountID     string          `json:"accountId"`
		AccountName   string          `json:"accountName"`
		OccurredAt    time.Time       `json:"occurredAt"`
	}

	TravelCategory struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Description  string `json:"description,omitempty"`
		Icon         string `json:"icon"`
		Color        string `json:"color"`
		Mandatory    bool   `json:"esObligatoria"`
		DisplayOrder int    `json:"displayOrder"`
		Active       bool   `json:"estaActivo"`
	}

	// TravelBudget is scoped to a parent vacation plan. CategoryName is a
	// display field resolved client-side against the travel category list;
	// the backend only carries the raw CategoryID.
	TravelBudget struct {
		ID           string `json:"id"`
		PlanID       string `json:"planId"`
		CategoryID   string `json:"categoryId"`
		CategoryName string `json:"-"`
		Estimated    Money  `json:"estimatedCents"`
		Spent        Money  `json:"spentCents"`
		Notes        string `json:"notes,omitempty"`
	}
)

// Typed partial updates. A nil field is left untouched by the gateway.
type (
	TransactionPatch struct {
		Type        *TransactionType `json:"type,omitempty"`
		Amount      *Money           `json:"amountCents,omitempty"`
		Description *string          `json:"description,omitempty"`
		CategoryID  *string          `json:"categoryId,omitempty"`
		AccountID   *string          `json:"accountId,omitempty"`
		OccurredAt  *time.Time       `json:"occurredAt,omitempty"`
	}

	TravelCategoryPatch struct {
		Name         *string `json:"name,omitempty"`
		Description  *string `json:"description,omitempty"`
		Icon         *string `json:"icon,omitempty"`
		Color        *string `json:"color,omitempty"`
		Mandatory    *bool   `json:"esObligatoria,omitempty"`
		DisplayOrder *int    `json:"displayOrder,omitempty"`
		Active       *bool   `json:"estaActivo,omitempty"`
	}

	TravelBudgetPatch struct {
		CategoryID *string `json:"categoryId,omitempty"`
		Estimated  *Money  `json:"estimatedCents,omitempty"`
		Spent      *Money  `json:"spentCents,omitempty"`
		Notes      *string `json:"notes,omitempty"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyAccount     = errors.New("empty account")
	ErrEmptyPlan        = errors.New("empty plan")
	ErrZeroDate         = errors.New("date cannot be zero")
)

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccount
	}
	if t.OccurredAt.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (c TravelCategory) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if c.DisplayOrder < 0 {
		return errors.New("negative display order")
	}
	return nil
}

func (b TravelBudget) Validate() error {
	if strings.TrimSpace(b.PlanID) == "" {
		return ErrEmptyPlan
	}
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if err := b.Estimated.Validate(); err != nil {
		return err
	}
	// Spent may legitimately be zero before any expense lands on the budget.
	if b.Spent.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsEmpty reports whether the patch carries no field at all. Gateways reject
// empty patches instead of issuing a no-op update.
func (p TravelCategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Icon == nil &&
		p.Color == nil && p.Mandatory == nil && p.DisplayOrder == nil && p.Active == nil
}

func (p TransactionPatch) IsEmpty() bool {
	return p.Type == nil && p.Amount == nil && p.Description == nil &&
		p.CategoryID == nil && p.AccountID == nil && p.OccurredAt == nil
}

func (p TravelBudgetPatch) IsEmpty() bool {
	return p.CategoryID == nil && p.Estimated == nil && p.Spent == nil && p.Notes == nil
}
