package session

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const CookieName = "monedero_session"

// Manager maps session cookies to per-session state. Each session owns its
// Store plus whatever the web layer registers against it (controllers).
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
}

type entry struct {
	store     *Store
	data      map[string]any
	expiresAt time.Time
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Get returns the Store for the request's session cookie, or nil when there
// is no live session.
func (m *Manager) Get(r *http.Request) *Store {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[c.Value]
	if !ok {
		return nil
	}
	if time.Now().After(e.expiresAt) {
		delete(m.entries, c.Value)
		return nil
	}
	e.expiresAt = time.Now().Add(m.ttl)
	return e.store
}

// Start creates a fresh session and sets its cookie on the response.
func (m *Manager) Start(w http.ResponseWriter) *Store {
	id := newSessionID()
	store := NewStore()

	m.mu.Lock()
	m.entries[id] = &entry{
		store:     store,
		data:      make(map[string]any),
		expiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Destroy drops the request's session and expires its cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(CookieName)
	if err == nil {
		m.mu.Lock()
		delete(m.entries, c.Value)
		m.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Value returns a per-session value set via SetValue, or nil.
func (m *Manager) Value(r *http.Request, key string) any {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[c.Value]; ok {
		return e.data[key]
	}
	return nil
}

// SetValue attaches a value to the request's session. Returns false when the
// request carries no live session.
func (m *Manager) SetValue(r *http.Request, key string, v any) bool {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[c.Value]
	if !ok {
		return false
	}
	e.data[key] = v
	return true
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
