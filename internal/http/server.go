package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"monedero/internal/backend"
	"monedero/internal/cache"
	"monedero/internal/controller"
	"monedero/internal/feedback"
	"monedero/internal/session"
	appweb "monedero/web"
)

type Server struct {
	http.Server
	templates *template.Template
	backend   backend.Backend
	sessions  *session.Manager

	rateLimiter *rateLimiter

	// OnLogin, when set, receives each successful login's credential. The
	// REST backend reads it back through its token func.
	OnLogin func(token string)

	// Cached rendered list fragments, invalidated on mutation.
	fragmentCache *cache.LRUCache[string]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// sessionControllers bundles the per-session controllers together with the
// feedback shim handlers bind request-scoped confirmers/notifiers into.
type sessionControllers struct {
	mu      sync.Mutex
	fb      *swappableFeedback
	tx      *controller.TransactionController
	cats    *controller.TravelCategoryController
	budgets *controller.TravelBudgetController
}

// withFeedback runs one controller mutation with the request's confirmer and
// notifier bound. The mutex covers the whole bind-call-unbind span: two
// requests on the same session can never interleave, so a confirmation
// answer is always read from the request that asked the question.
func (sc *sessionControllers) withFeedback(c feedback.Confirmer, n feedback.Notifier, fn func() error) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.fb.bind(c, n)
	defer sc.fb.unbind()
	return fn()
}

const controllersKey = "controllers"

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, b backend.Backend, sessions *session.Manager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		backend:          b,
		sessions:         sessions,
		rateLimiter:      newRateLimiter(),
		fragmentCache:    cache.NewLRUCache[string](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	t, err := template.New("").Funcs(template.FuncMap{
		"amount": formatAmount,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /login", s.withSecurityHeaders(s.handleLoginPage))
	mux.HandleFunc("POST /login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("POST /logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("GET /{$}", s.withSecurityHeaders(s.requireSession(s.handleDashboard)))

	mux.HandleFunc("GET /transactions", s.withSecurityHeaders(s.requireSession(s.handleTransactionsPage)))
	mux.HandleFunc("GET /ui/transactions", s.withSecurityHeaders(s.requireSession(s.handleTransactionsList)))
	mux.HandleFunc("POST /transactions", s.withSecurityHeaders(s.requireSession(s.handleCreateTransaction)))
	mux.HandleFunc("POST /transactions/{id}/delete", s.withSecurityHeaders(s.requireSession(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /travel/categories", s.withSecurityHeaders(s.requireSession(s.handleCategoriesPage)))
	mux.HandleFunc("GET /ui/travel/categories", s.withSecurityHeaders(s.requireSession(s.handleCategoriesList)))
	mux.HandleFunc("POST /travel/categories", s.withSecurityHeaders(s.requireSession(s.handleCreateCategory)))
	mux.HandleFunc("POST /travel/categories/{id}/toggle", s.withSecurityHeaders(s.requireSession(s.handleToggleCategory)))
	mux.HandleFunc("POST /travel/categories/{id}/delete", s.withSecurityHeaders(s.requireSession(s.handleDeleteCategory)))

	mux.HandleFunc("GET /travel/budgets", s.withSecurityHeaders(s.requireSession(s.handleBudgetsPage)))
	mux.HandleFunc("GET /ui/travel/budgets", s.withSecurityHeaders(s.requireSession(s.handleBudgetsList)))
	mux.HandleFunc("POST /travel/budgets", s.withSecurityHeaders(s.requireSession(s.handleCreateBudget)))
	mux.HandleFunc("POST /travel/budgets/{id}/delete", s.withSecurityHeaders(s.requireSession(s.handleDeleteBudget)))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.fragmentCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops background routines before shutting down the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting on mutating
// requests, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientIPFromRequest(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type ctxKeyRequestID struct{}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requireSession redirects anonymous requests to the login page and attaches
// the session's controller bundle.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := s.sessions.Get(r)
		if store == nil || store.CurrentUser() == nil {
			if r.Header.Get("HX-Request") == "true" {
				NewHTMXResponse().Status(http.StatusUnauthorized).TriggerRedirect("/login").Write(w)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// controllers returns (creating on first use) the request session's
// controller bundle.
func (s *Server) controllers(r *http.Request) *sessionControllers {
	if v := s.sessions.Value(r, controllersKey); v != nil {
		if sc, ok := v.(*sessionControllers); ok {
			return sc
		}
	}

	store := s.sessions.Get(r)
	if store == nil {
		return nil
	}

	fb := newSwappableFeedback()
	cfg := controller.Config{Confirm: fb, Notify: fb}
	sc := &sessionControllers{
		fb:      fb,
		tx:      controller.NewTransactionController(s.backend.Transactions(), store, cfg),
		cats:    controller.NewTravelCategoryController(s.backend.TravelCategories(), cfg),
		budgets: controller.NewTravelBudgetController(s.backend.TravelBudgets(), s.backend.TravelCategories(), cfg),
	}
	s.sessions.SetValue(r, controllersKey, sc)
	return sc
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
