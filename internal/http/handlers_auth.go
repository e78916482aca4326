package http

import (
	"log/slog"
	"net/http"
)

type loginPageData struct {
	Error string
	Email string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if store := s.sessions.Get(r); store != nil && store.CurrentUser() != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, "login.html", loginPageData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError("Formulario no válido").Write(w)
		return
	}

	email := sanitizeInput(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		s.render(w, r, "login.html", loginPageData{Error: "Introduce correo y contraseña", Email: email})
		return
	}

	user, token, err := s.backend.Auth().Login(r.Context(), email, password)
	if err != nil {
		slog.WarnContext(r.Context(), "Login failed", "email", email, "error", err)
		s.render(w, r, "login.html", loginPageData{Error: "Credenciales no válidas", Email: email})
		return
	}

	store := s.sessions.Start(w)
	store.Login(user, token)
	if s.OnLogin != nil {
		s.OnLogin(token)
	}
	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if v := s.sessions.Value(r, controllersKey); v != nil {
		if sc, ok := v.(*sessionControllers); ok {
			sc.tx.Close()
			sc.cats.Close()
			sc.budgets.Close()
		}
	}
	s.sessions.Destroy(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
