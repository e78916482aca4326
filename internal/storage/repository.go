// Package storage is the SQLite-backed local backend used for development
// and single-user deployments. It implements every gateway port directly on
// database/sql.
package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"monedero/internal/core"
	"monedero/internal/gateway"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Transactions() gateway.TransactionGateway        { return sqlTxGateway{r} }
func (r *SQLiteRepository) TravelCategories() gateway.TravelCategoryGateway { return sqlCatGateway{r} }
func (r *SQLiteRepository) TravelBudgets() gateway.TravelBudgetGateway      { return sqlBudgetGateway{r} }
func (r *SQLiteRepository) Auth() gateway.AuthGateway                       { return sqlAuthGateway{r} }

func newID(prefix string) string {
	b := make([]byte, 8)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

const txColumns = "id, type, amount_cents, currency, description, category_id, category_name, account_id, account_name, occurred_at"

type sqlTxGateway struct{ r *SQLiteRepository }

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var cents int64
	err := row.Scan(&t.ID, &t.Type, &cents, &t.Currency, &t.Description,
		&t.CategoryID, &t.CategoryName, &t.AccountID, &t.AccountName, &t.OccurredAt)
	t.Amount = core.Money{Cents: cents}
	return t, err
}

func (g sqlTxGateway) List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	var (
		where = []string{"deleted_at IS NULL"}
		args  []any
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.Range.IsZero() {
		where = append(where, "occurred_at >= ? AND occurred_at < ?")
		args = append(args, f.Range.Start, f.Range.End)
	}
	if f.Search != "" {
		needle := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, "(LOWER(description) LIKE ? OR LOWER(category_name) LIKE ? OR LOWER(account_name) LIKE ?)")
		args = append(args, needle, needle, needle)
	}

	order := "occurred_at DESC"
	switch f.Sort {
	case core.SortDateAsc:
		order = "occurred_at ASC"
	case core.SortAmountDesc:
		order = "amount_cents DESC"
	case core.SortAmountAsc:
		order = "amount_cents ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM transactions WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		txColumns, strings.Join(where, " AND "), order)
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = core.DefaultPageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := g.r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (g sqlTxGateway) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := g.r.db.QueryRowContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE id = ? AND deleted_at IS NULL", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, gateway.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (g sqlTxGateway) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = newID("t")
	if t.Currency == "" {
		t.Currency = "EUR"
	}
	_, err := g.r.db.ExecContext(ctx,
		"INSERT INTO transactions ("+txColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, string(t.Type), t.Amount.Cents, t.Currency, t.Description,
		t.CategoryID, t.CategoryName, t.AccountID, t.AccountName, t.OccurredAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents)
	return t, nil
}

func (g sqlTxGateway) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if patch.IsEmpty() {
		return g.Get(ctx, id)
	}
	var (
		sets []string
		args []any
	)
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Amount != nil {
		sets = append(sets, "amount_cents = ?")
		args = append(args, patch.Amount.Cents)
	}
	if patch.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}
	if patch.AccountID != nil {
		sets = append(sets, "account_id = ?")
		args = append(args, *patch.AccountID)
	}
	if patch.OccurredAt != nil {
		sets = append(sets, "occurred_at = ?")
		args = append(args, *patch.OccurredAt)
	}
	args = append(args, id)

	res, err := g.r.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ? AND deleted_at IS NULL", args...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, gateway.ErrNotFound
	}
	return g.Get(ctx, id)
}

func (g sqlTxGateway) Delete(ctx context.Context, id string, permanent bool) error {
	var (
		res sql.Result
		err error
	)
	if permanent {
		res, err = g.r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	} else {
		res, err = g.r.db.ExecContext(ctx,
			"UPDATE transactions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now().UTC(), id)
	}
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

type sqlCatGateway struct{ r *SQLiteRepository }

func (g sqlCatGateway) List(ctx context.Context) ([]core.TravelCategory, error) {
	rows, err := g.r.db.QueryContext(ctx,
		"SELECT id, name, mandatory, active FROM travel_categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list travel categories: %w", err)
	}
	defer rows.Close()

	var out []core.TravelCategory
	for rows.Next() {
		var c core.TravelCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Mandatory, &c.Active); err != nil {
			return nil, fmt.Errorf("scan travel category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (g sqlCatGateway) Get(ctx context.Context, id string) (core.TravelCategory, error) {
	var c core.TravelCategory
	err := g.r.db.QueryRowContext(ctx,
		"SELECT id, name, mandatory, active FROM travel_categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Mandatory, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TravelCategory{}, gateway.ErrNotFound
	}
	if err != nil {
		return core.TravelCategory{}, fmt.Errorf("get travel category: %w", err)
	}
	return c, nil
}

func (g sqlCatGateway) Create(ctx context.Context, cat core.TravelCategory) (core.TravelCategory, error) {
	if err := cat.Validate(); err != nil {
		return core.TravelCategory{}, err
	}
	cat.ID = newID("c")
	_, err := g.r.db.ExecContext(ctx,
		"INSERT INTO travel_categories (id, name, mandatory, active) VALUES (?, ?, ?, ?)",
		cat.ID, cat.Name, cat.Mandatory, cat.Active)
	if err != nil {
		return core.TravelCategory{}, fmt.Errorf("create travel category: %w", err)
	}
	return cat, nil
}

func (g sqlCatGateway) Update(ctx context.Context, id string, patch core.TravelCategoryPatch) (core.TravelCategory, error) {
	if patch.IsEmpty() {
		return g.Get(ctx, id)
	}
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Mandatory != nil {
		sets = append(sets, "mandatory = ?")
		args = append(args, *patch.Mandatory)
	}
	if patch.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *patch.Active)
	}
	args = append(args, id)

	res, err := g.r.db.ExecContext(ctx,
		"UPDATE travel_categories SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return core.TravelCategory{}, fmt.Errorf("update travel category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.TravelCategory{}, gateway.ErrNotFound
	}
	return g.Get(ctx, id)
}

func (g sqlCatGateway) Delete(ctx context.Context, id string, _ bool) error {
	// Category deletion is always permanent.
	res, err := g.r.db.ExecContext(ctx, "DELETE FROM travel_categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete travel category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

type sqlBudgetGateway struct{ r *SQLiteRepository }

const budgetColumns = "id, plan_id, category_id, estimated_cents, spent_cents, notes"

func scanBudget(row interface{ Scan(...any) error }) (core.TravelBudget, error) {
	var b core.TravelBudget
	var estimated, spent int64
	err := row.Scan(&b.ID, &b.PlanID, &b.CategoryID, &estimated, &spent, &b.Notes)
	b.Estimated = core.Money{Cents: estimated}
	b.Spent = core.Money{Cents: spent}
	return b, err
}

func (g sqlBudgetGateway) List(ctx context.Context, planID string) ([]core.TravelBudget, error) {
	rows, err := g.r.db.QueryContext(ctx,
		"SELECT "+budgetColumns+" FROM travel_budgets WHERE plan_id = ? AND deleted_at IS NULL ORDER BY created_at", planID)
	if err != nil {
		return nil, fmt.Errorf("list travel budgets: %w", err)
	}
	defer rows.Close()

	var out []core.TravelBudget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan travel budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (g sqlBudgetGateway) Get(ctx context.Context, id string) (core.TravelBudget, error) {
	row := g.r.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM travel_budgets WHERE id = ? AND deleted_at IS NULL", id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TravelBudget{}, gateway.ErrNotFound
	}
	if err != nil {
		return core.TravelBudget{}, fmt.Errorf("get travel budget: %w", err)
	}
	return b, nil
}

func (g sqlBudgetGateway) Create(ctx context.Context, b core.TravelBudget) (core.TravelBudget, error) {
	if err := b.Validate(); err != nil {
		return core.TravelBudget{}, err
	}
	b.ID = newID("b")
	_, err := g.r.db.ExecContext(ctx,
		"INSERT INTO travel_budgets ("+budgetColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		b.ID, b.PlanID, b.CategoryID, b.Estimated.Cents, b.Spent.Cents, b.Notes)
	if err != nil {
		return core.TravelBudget{}, fmt.Errorf("create travel budget: %w", err)
	}
	return b, nil
}

func (g sqlBudgetGateway) Update(ctx context.Context, id string, patch core.TravelBudgetPatch) (core.TravelBudget, error) {
	if patch.IsEmpty() {
		return g.Get(ctx, id)
	}
	var (
		sets []string
		args []any
	)
	if patch.Estimated != nil {
		sets = append(sets, "estimated_cents = ?")
		args = append(args, patch.Estimated.Cents)
	}
	if patch.Spent != nil {
		sets = append(sets, "spent_cents = ?")
		args = append(args, patch.Spent.Cents)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	args = append(args, id)

	res, err := g.r.db.ExecContext(ctx,
		"UPDATE travel_budgets SET "+strings.Join(sets, ", ")+" WHERE id = ? AND deleted_at IS NULL", args...)
	if err != nil {
		return core.TravelBudget{}, fmt.Errorf("update travel budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.TravelBudget{}, gateway.ErrNotFound
	}
	return g.Get(ctx, id)
}

func (g sqlBudgetGateway) Delete(ctx context.Context, id string, permanent bool) error {
	var (
		res sql.Result
		err error
	)
	if permanent {
		res, err = g.r.db.ExecContext(ctx, "DELETE FROM travel_budgets WHERE id = ?", id)
	} else {
		res, err = g.r.db.ExecContext(ctx,
			"UPDATE travel_budgets SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now().UTC(), id)
	}
	if err != nil {
		return fmt.Errorf("delete travel budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

type sqlAuthGateway struct{ r *SQLiteRepository }

func (g sqlAuthGateway) Login(ctx context.Context, email, password string) (core.UserIdentity, string, error) {
	var u core.UserIdentity
	var stored string
	err := g.r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password FROM users WHERE email = ?", strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Name, &u.Email, &stored)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && stored != password) {
		return core.UserIdentity{}, "", gateway.ErrUnauthorized
	}
	if err != nil {
		return core.UserIdentity{}, "", fmt.Errorf("lookup user: %w", err)
	}
	return u, newID("tok"), nil
}
