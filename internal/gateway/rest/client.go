// Package rest talks to the monedero HTTP API. It implements every gateway
// port over JSON, attaching the session's bearer token to each request.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"monedero/internal/core"
	"monedero/internal/gateway"
)

const defaultTimeout = 15 * time.Second

// TokenFunc supplies the current session credential. An empty return means
// the request goes out unauthenticated and the API will answer 401.
type TokenFunc func() string

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
}

func NewClient(baseURL string, token TokenFunc) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		token:      token,
	}
}

// apiError is the error envelope the API uses for non-2xx answers.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return gateway.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return gateway.ErrNotFound
	case resp.StatusCode >= 400:
		var envelope apiError
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			return fmt.Errorf("%s", envelope.Error)
		}
		return fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Transactions returns the transaction gateway backed by this client.
func (c *Client) Transactions() gateway.TransactionGateway { return transactionAPI{c} }

// TravelCategories returns the travel category gateway backed by this client.
func (c *Client) TravelCategories() gateway.TravelCategoryGateway { return categoryAPI{c} }

// TravelBudgets returns the travel budget gateway backed by this client.
func (c *Client) TravelBudgets() gateway.TravelBudgetGateway { return budgetAPI{c} }

// Auth returns the authentication gateway backed by this client.
func (c *Client) Auth() gateway.AuthGateway { return authAPI{c} }

type transactionAPI struct{ c *Client }

func filterQuery(f core.TransactionFilter) url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if !f.Range.IsZero() {
		q.Set("from", f.Range.Start.Format(time.RFC3339))
		q.Set("to", f.Range.End.Format(time.RFC3339))
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("pageSize", strconv.Itoa(f.PageSize))
	q.Set("sort", f.Sort)
	return q
}

func (a transactionAPI) List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := a.c.do(ctx, http.MethodGet, "/api/transactions", filterQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a transactionAPI) Get(ctx context.Context, id string) (core.Transaction, error) {
	var out core.Transaction
	err := a.c.do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (a transactionAPI) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	err := a.c.do(ctx, http.MethodPost, "/api/transactions", nil, t, &out)
	return out, err
}

func (a transactionAPI) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	var out core.Transaction
	err := a.c.do(ctx, http.MethodPatch, "/api/transactions/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

func (a transactionAPI) Delete(ctx context.Context, id string, permanent bool) error {
	q := url.Values{}
	if permanent {
		q.Set("permanent", "true")
	}
	return a.c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), q, nil, nil)
}

type categoryAPI struct{ c *Client }

func (a categoryAPI) List(ctx context.Context) ([]core.TravelCategory, error) {
	var out []core.TravelCategory
	if err := a.c.do(ctx, http.MethodGet, "/api/travel/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a categoryAPI) Get(ctx context.Context, id string) (core.TravelCategory, error) {
	var out core.TravelCategory
	err := a.c.do(ctx, http.MethodGet, "/api/travel/categories/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (a categoryAPI) Create(ctx context.Context, cat core.TravelCategory) (core.TravelCategory, error) {
	var out core.TravelCategory
	err := a.c.do(ctx, http.MethodPost, "/api/travel/categories", nil, cat, &out)
	return out, err
}

func (a categoryAPI) Update(ctx context.Context, id string, patch core.TravelCategoryPatch) (core.TravelCategory, error) {
	var out core.TravelCategory
	err := a.c.do(ctx, http.MethodPatch, "/api/travel/categories/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

func (a categoryAPI) Delete(ctx context.Context, id string, permanent bool) error {
	q := url.Values{}
	if permanent {
		q.Set("permanent", "true")
	}
	return a.c.do(ctx, http.MethodDelete, "/api/travel/categories/"+url.PathEscape(id), q, nil, nil)
}

type budgetAPI struct{ c *Client }

func (a budgetAPI) List(ctx context.Context, planID string) ([]core.TravelBudget, error) {
	var out []core.TravelBudget
	path := "/api/travel/plans/" + url.PathEscape(planID) + "/budgets"
	if err := a.c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a budgetAPI) Get(ctx context.Context, id string) (core.TravelBudget, error) {
	var out core.TravelBudget
	err := a.c.do(ctx, http.MethodGet, "/api/travel/budgets/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (a budgetAPI) Create(ctx context.Context, b core.TravelBudget) (core.TravelBudget, error) {
	var out core.TravelBudget
	err := a.c.do(ctx, http.MethodPost, "/api/travel/budgets", nil, b, &out)
	return out, err
}

func (a budgetAPI) Update(ctx context.Context, id string, patch core.TravelBudgetPatch) (core.TravelBudget, error) {
	var out core.TravelBudget
	err := a.c.do(ctx, http.MethodPatch, "/api/travel/budgets/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

func (a budgetAPI) Delete(ctx context.Context, id string, permanent bool) error {
	q := url.Values{}
	if permanent {
		q.Set("permanent", "true")
	}
	return a.c.do(ctx, http.MethodDelete, "/api/travel/budgets/"+url.PathEscape(id), q, nil, nil)
}

type authAPI struct{ c *Client }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  core.UserIdentity `json:"user"`
	Token string            `json:"token"`
}

func (a authAPI) Login(ctx context.Context, email, password string) (core.UserIdentity, string, error) {
	var out loginResponse
	err := a.c.do(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return core.UserIdentity{}, "", err
	}
	return out.User, out.Token, nil
}
