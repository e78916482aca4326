// Package controller implements the list-view lifecycle shared by every
// resource page: load with criteria, refresh after mutation, and
// confirmation-gated destructive actions. Controllers hold disposable copies
// of backend-owned records; nothing is mutated locally ahead of a re-fetch.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"monedero/internal/feedback"
)

const (
	// DefaultNoticeTTL is how long a transient error/success message stays
	// set before it clears itself.
	DefaultNoticeTTL = 5 * time.Second

	// DefaultRedirectDelay is the pause between detecting an expired
	// credential and sending the user to the login entry point.
	DefaultRedirectDelay = 2 * time.Second

	successDismiss = 3 * time.Second
)

// ErrBusy is returned when a mutation is triggered while another confirmation
// or mutation is still outstanding on the same controller.
var ErrBusy = errors.New("operation already in progress")

// Config carries the collaborators every controller needs. Zero fields get
// safe defaults.
type Config struct {
	Confirm       feedback.Confirmer
	Notify        feedback.Notifier
	NoticeTTL     time.Duration
	RedirectDelay time.Duration
	Now           func() time.Time
	OnAuthExpired func()
}

func (c Config) withDefaults() Config {
	if c.Confirm == nil {
		c.Confirm = feedback.Static{Answer: false}
	}
	if c.Notify == nil {
		c.Notify = feedback.NopNotifier{}
	}
	if c.NoticeTTL <= 0 {
		c.NoticeTTL = DefaultNoticeTTL
	}
	if c.RedirectDelay <= 0 {
		c.RedirectDelay = DefaultRedirectDelay
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// listState is the state block common to all resource controllers: the result
// set, loading flag, transient messages with self-clearing timers, and the
// in-flight guard for mutations.
type listState[T any] struct {
	mu           sync.Mutex
	items        []T
	loading      bool
	errMsg       string
	successMsg   string
	inFlight     bool
	noticeTTL    time.Duration
	errTimer     *time.Timer
	successTimer *time.Timer

	confirm feedback.Confirmer
	notify  feedback.Notifier
}

func (s *listState[T]) init(cfg Config) {
	s.confirm = cfg.Confirm
	s.notify = cfg.Notify
	s.noticeTTL = cfg.NoticeTTL
}

// Items returns a copy of the current result set, server order preserved.
func (s *listState[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *listState[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *listState[T]) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *listState[T]) SuccessMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successMsg
}

// Close stops any pending notice timers. Call on teardown.
func (s *listState[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimersLocked()
}

func (s *listState[T]) stopTimersLocked() {
	if s.errTimer != nil {
		s.errTimer.Stop()
		s.errTimer = nil
	}
	if s.successTimer != nil {
		s.successTimer.Stop()
		s.successTimer = nil
	}
}

// beginLoad flips the loading flag and, when clearNotices is set, wipes prior
// error/success messages. Post-mutation refreshes keep the success notice the
// mutation just set.
func (s *listState[T]) beginLoad(clearNotices bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	if clearNotices {
		s.stopTimersLocked()
		s.errMsg = ""
		s.successMsg = ""
	}
}

// finishLoadOK replaces the whole result set; no merging ever happens.
func (s *listState[T]) finishLoadOK(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.items = items
}

// finishLoadErr leaves the previous result set untouched and records a
// display message derived from the error.
func (s *listState[T]) finishLoadErr(err error, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.setErrorLocked(displayMessage(err, fallback))
}

func (s *listState[T]) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(msg)
}

func (s *listState[T]) setErrorLocked(msg string) {
	if s.errTimer != nil {
		s.errTimer.Stop()
	}
	s.errMsg = msg
	s.errTimer = time.AfterFunc(s.noticeTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.errMsg == msg {
			s.errMsg = ""
		}
	})
}

func (s *listState[T]) setSuccess(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.successTimer != nil {
		s.successTimer.Stop()
	}
	s.successMsg = msg
	s.successTimer = time.AfterFunc(s.noticeTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.successMsg == msg {
			s.successMsg = ""
		}
	})
}

// tryBegin claims the in-flight slot for a mutation. The caller must release
// it with endOp. A false return means another mutation (or its confirmation
// dialog) is still outstanding.
func (s *listState[T]) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *listState[T]) endOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// mutate runs the confirm-then-operate protocol every mutation shares:
// claim the in-flight slot, ask for confirmation, show progress, run the
// operation, and on success show the notice before triggering the refresh.
// A declined confirmation changes nothing and calls no gateway.
func (s *listState[T]) mutate(ctx context.Context, req feedback.ConfirmRequest, progress, success, fallback string, op func(context.Context) error, refresh func(context.Context)) error {
	if !s.tryBegin() {
		return ErrBusy
	}
	defer s.endOp()

	if !s.confirm.Confirm(ctx, req) {
		return nil
	}

	s.notify.Progress(progress, "")
	if err := op(ctx); err != nil {
		msg := displayMessage(err, fallback)
		s.notify.Error("Error", msg)
		s.setError(msg)
		return err
	}

	s.notify.Success("Listo", success, successDismiss)
	s.setSuccess(success)
	if refresh != nil {
		refresh(ctx)
	}
	return nil
}

// displayMessage converts an error into user-facing text: the error's own
// message when it has one, otherwise the generic fallback.
func displayMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
