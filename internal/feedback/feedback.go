// Package feedback defines the confirmation and notification contract between
// controllers and whatever dialog surface the presentation layer provides.
// Controllers never run a destructive operation unless Confirm answers true.
package feedback

import (
	"context"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// ConfirmRequest describes a yes/no question put to the user.
type ConfirmRequest struct {
	Title        string
	Body         string
	ConfirmLabel string
	CancelLabel  string
	Severity     Severity
}

// Confirmer suspends the caller until the user answers. Implementations never
// fail; an aborted dialog counts as false.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) bool
}

// Notifier shows transient status to the user. Progress stays visible until
// the next notification replaces it.
type Notifier interface {
	Progress(title, body string)
	Success(title, body string, autoDismiss time.Duration)
	Error(title, body string)
}

// Static is a Confirmer with a fixed answer, used where the dialog already
// happened client-side (the web layer) and in tests.
type Static struct {
	Answer bool
}

func (s Static) Confirm(ctx context.Context, req ConfirmRequest) bool {
	return s.Answer
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Progress(title, body string)                         {}
func (NopNotifier) Success(title, body string, autoDismiss time.Duration) {}
func (NopNotifier) Error(title, body string)                            {}
