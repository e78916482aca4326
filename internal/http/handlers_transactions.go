package http

import (
	"bytes"
	"errors"
	"net/http"

	"monedero/internal/core"
)

const txCachePrefix = "tx:"

type transactionsPageData struct {
	User     *core.UserIdentity
	Items    []core.Transaction
	Stats    core.Statistics
	Criteria core.TransactionFilter
	Periods  []string
	Error    string
	Success  string
}

func (s *Server) renderFragment(name string, data any) (string, error) {
	if s.templates == nil {
		return "", errors.New("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Server) transactionsData(r *http.Request, sc *sessionControllers) transactionsPageData {
	return transactionsPageData{
		User:     s.sessions.Get(r).CurrentUser(),
		Items:    sc.tx.Items(),
		Stats:    sc.tx.Statistics(),
		Criteria: sc.tx.Criteria(),
		Periods:  core.Periods(),
		Error:    sc.tx.ErrorMessage(),
		Success:  sc.tx.SuccessMessage(),
	}
}

func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	_ = sc.tx.Load(r.Context(), parseFilter(r))
	s.render(w, r, "transactions.html", s.transactionsData(r, sc))
}

// handleTransactionsList serves the HTMX list partial. Fragments render from a
// short-lived cache keyed by the raw query; mutations invalidate the prefix.
func (s *Server) handleTransactionsList(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)

	cacheKey := txCachePrefix + r.URL.RawQuery
	if fragment, ok := s.fragmentCache.Get(cacheKey); ok {
		NewHTMXResponse().BodyHTML(fragment).Write(w)
		return
	}

	_ = sc.tx.Load(r.Context(), parseFilter(r))
	data := s.transactionsData(r, sc)

	fragment, err := s.renderFragment("transactions_list.html", data)
	if err != nil {
		InternalServerError("No se pudo generar la lista").Write(w)
		return
	}
	if data.Error == "" && data.Success == "" {
		s.fragmentCache.Set(cacheKey, fragment)
	}
	NewHTMXResponse().BodyHTML(fragment).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formulario no válido").Write(w)
		return
	}

	amount, err := parseAmount(r.FormValue("amount"))
	if err != nil {
		UnprocessableEntityError("El importe no es válido").Write(w)
		return
	}
	occurredAt, err := parseDate(r.FormValue("date"))
	if err != nil {
		UnprocessableEntityError("La fecha no es válida").Write(w)
		return
	}

	category := sanitizeInput(r.FormValue("category"))
	account := sanitizeInput(r.FormValue("account"))
	t := core.Transaction{
		Type:         core.TransactionType(sanitizeInput(r.FormValue("type"))),
		Amount:       amount,
		Currency:     "EUR",
		Description:  sanitizeInput(r.FormValue("description")),
		CategoryID:   category,
		CategoryName: category,
		AccountID:    account,
		AccountName:  account,
		OccurredAt:   occurredAt,
	}

	rec := newNoticeRecorder()
	err = sc.withFeedback(formConfirmer{confirmed: true}, rec, func() error {
		return sc.tx.Create(r.Context(), t)
	})

	s.writeMutationResult(w, rec, err, txCachePrefix, "transactions")
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formulario no válido").Write(w)
		return
	}

	id := r.PathValue("id")
	label := sanitizeInput(r.FormValue("label"))
	if label == "" {
		label = id
	}

	rec := newNoticeRecorder()
	err := sc.withFeedback(formConfirmer{confirmed: r.FormValue("confirmed") == "true"}, rec, func() error {
		return sc.tx.Delete(r.Context(), id, label)
	})

	s.writeMutationResult(w, rec, err, txCachePrefix, "transactions")
}
