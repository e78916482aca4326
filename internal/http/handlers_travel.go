package http

import (
	"errors"
	"net/http"
	"strings"

	"monedero/internal/controller"
	"monedero/internal/core"
)

const (
	catCachePrefix    = "cat:"
	budgetCachePrefix = "budget:"
)

type categoriesPageData struct {
	User    *core.UserIdentity
	Items   []core.TravelCategory
	Error   string
	Success string
}

type budgetsPageData struct {
	User    *core.UserIdentity
	Items   []core.TravelBudget
	PlanID  string
	Error   string
	Success string
}

func (s *Server) categoriesData(r *http.Request, sc *sessionControllers) categoriesPageData {
	return categoriesPageData{
		User:    s.sessions.Get(r).CurrentUser(),
		Items:   sc.cats.Items(),
		Error:   sc.cats.ErrorMessage(),
		Success: sc.cats.SuccessMessage(),
	}
}

func (s *Server) budgetsData(r *http.Request, sc *sessionControllers) budgetsPageData {
	return budgetsPageData{
		User:    s.sessions.Get(r).CurrentUser(),
		Items:   sc.budgets.Items(),
		PlanID:  sc.budgets.Plan(),
		Error:   sc.budgets.ErrorMessage(),
		Success: sc.budgets.SuccessMessage(),
	}
}

func (s *Server) handleCategoriesPage(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	_ = sc.cats.Load(r.Context())
	s.render(w, r, "travel_categories.html", s.categoriesData(r, sc))
}

func (s *Server) handleCategoriesList(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)

	cacheKey := catCachePrefix + "list"
	if fragment, ok := s.fragmentCache.Get(cacheKey); ok {
		NewHTMXResponse().BodyHTML(fragment).Write(w)
		return
	}

	_ = sc.cats.Load(r.Context())
	data := s.categoriesData(r, sc)

	fragment, err := s.renderFragment("travel_categories_list.html", data)
	if err != nil {
		InternalServerError("No se pudo generar la lista").Write(w)
		return
	}
	if data.Error == "" && data.Success == "" {
		s.fragmentCache.Set(cacheKey, fragment)
	}
	NewHTMXResponse().BodyHTML(fragment).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formulario no válido").Write(w)
		return
	}

	cat := core.TravelCategory{
		Name:        sanitizeInput(r.FormValue("name")),
		Description: sanitizeInput(r.FormValue("description")),
		Icon:        sanitizeInput(r.FormValue("icon")),
		Color:       sanitizeInput(r.FormValue("color")),
		Mandatory:   r.FormValue("mandatory") == "true",
		Active:      true,
	}

	rec := newNoticeRecorder()
	err := sc.withFeedback(formConfirmer{confirmed: true}, rec, func() error {
		return sc.cats.Create(r.Context(), cat)
	})

	s.writeMutationResult(w, rec, err, catCachePrefix, "travel-categories")
}

func (s *Server) handleToggleCategory(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formulario no válido").Write(w)
		return
	}

	id := r.PathValue("id")
	var target *core.TravelCategory
	for _, cat := range sc.cats.Items() {
		if cat.ID == id {
			c := cat
			target = &c
			break
		}
	}
	if target == nil {
		BadRequestError("Categoría desconocida").Write(w)
		return
	}

	rec := newNoticeRecorder()
	err := sc.withFeedback(formConfirmer{confirmed: r.FormValue("confirmed") == "true"}, rec, func() error {
		return sc.cats.ToggleActive(r.Context(), *target)
	})

	s.writeMutationResult(w, rec, err, catCachePrefix, "travel-categories")
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formulario no válido").Write(w)
		return
	}

	id := r.PathValue("id")
	name := sanitizeInput(r.FormValue("name"))
	if name == "" {
		name = id
	}

	rec := newNoticeRecorder()
	err := sc.withFeedback(formConfirmer{confirmed: r.FormValue("confirmed") == "true"}, rec, func() error {
		return sc.cats.Delete(r.Context(), id, name)
	})

	s.writeMutationResult(w, rec, err, catCachePrefix, "travel-categories")
}

func (s *Server) handleBudgetsPage(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	sc.budgets.SetPlan(sanitizeInput(r.URL.Query().Get("plan")))
	_ = sc.budgets.Load(r.Context())
	s.render(w, r, "travel_budgets.html", s.budgetsData(r, sc))
}

func (s *Server) handleBudgetsList(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	plan := sanitizeInput(r.URL.Query().Get("plan"))
	sc.budgets.SetPlan(plan)

	cacheKey := budgetCachePrefix + plan
	if fragment, ok := s.fragmentCache.Get(cacheKey); ok {
		NewHTMXResponse().BodyHTML(fragment).Write(w)
		return
	}

	_ = sc.budgets.Load(r.Context())
	data := s.budgetsData(r, sc)

	fragment, err := s.renderFragment("travel_budgets_list.html", data)
	if err != nil {
		InternalServerError("No se pudo generar la lista").Write(w)
		return
	}
	if data.Error == "" && data.Success == "" {
		s.fragmentCache.Set(cacheKey, fragment)
	}
	NewHTMXResponse().BodyHTML(fragment).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	sc := s.controllers(r)
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formulario no válido").Write(w)
		return
	}

	estimated, err := parseAmount(r.FormValue("estimated"))
	if err != nil {
		UnprocessableEntityError("El importe no es válido").Write(w)
		return
	}

	b := core.TravelBudget{
		PlanID:     sanitizeInput(r.FormValue("plan")),
		CategoryID: sanitizeInput(r.FormValue("category")),
		Estimated:  estimated,
		Notes:      sanitizeInput(r.FormValue("notes")),
	}
	if b.PlanID == "" {
		b.PlanID = sc.budgets.Plan()
	}

	rec := newNoticeRecorder()
	err = sc.withFeedback(formConfirmer{confirmed: true}, rec, func() error {
		return sc.budgets.Create(r.Context(), b)
	})

	s.writeMutationResult(w, rec, err, budgetCachePrefix, "travel-budgets")
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
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
		return sc.budgets.Delete(r.Context(), id, label)
	})

	s.writeMutationResult(w, rec, err, budgetCachePrefix, "travel-budgets")
}

// writeMutationResult turns a controller mutation outcome into the standard
// HTMX response: recorded notices as triggers, a list refresh only when the
// mutation actually went through.
func (s *Server) writeMutationResult(w http.ResponseWriter, rec *noticeRecorder, err error, cachePrefix, resource string) {
	b := NewHTMXResponse()
	rec.apply(b)
	switch {
	case errors.Is(err, controller.ErrBusy):
		b.Status(http.StatusConflict).TriggerErrorNotification("Hay otra operación en curso")
	case err != nil:
		b.Status(http.StatusUnprocessableEntity)
		if len(rec.notices) == 0 {
			msg := strings.TrimSpace(err.Error())
			if msg == "" {
				msg = "No se pudo completar la operación"
			}
			b.TriggerErrorNotification(msg)
		}
	default:
		if len(rec.notices) > 0 {
			s.fragmentCache.DeletePrefix(cachePrefix)
			b.TriggerListRefresh(resource)
		}
	}
	b.Write(w)
}
