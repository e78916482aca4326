// Package session holds the authenticated identity for one browser session.
// Controllers receive a Provider explicitly at construction; there is no
// ambient current-user global anywhere in the codebase.
package session

import (
	"sync"

	"monedero/internal/core"
)

// Provider supplies the current identity and opaque credential to controllers
// and gateways.
type Provider interface {
	CurrentUser() *core.UserIdentity
	Token() string
	Logout()
}

// Store is the canonical Provider implementation: a small mutex-guarded
// holder for one session's identity and token.
type Store struct {
	mu    sync.Mutex
	user  *core.UserIdentity
	token string
}

func NewStore() *Store {
	return &Store{}
}

// Login records the identity and credential for this session.
func (s *Store) Login(user core.UserIdentity, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	s.token = token
}

func (s *Store) CurrentUser() *core.UserIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Logout clears identity and token. Safe to call repeatedly.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}
