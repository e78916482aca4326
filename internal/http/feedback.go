package http

import (
	"context"
	"sync"
	"time"

	"monedero/internal/feedback"
)

// formConfirmer answers the confirmation protocol from the submitted form:
// the UI shows the dialog client-side and posts confirmed=true only when the
// user accepted it. A missing or false value counts as declined.
type formConfirmer struct {
	confirmed bool
}

func (c formConfirmer) Confirm(_ context.Context, _ feedback.ConfirmRequest) bool {
	return c.confirmed
}

// noticeRecorder collects the notices a controller emits during one request
// so the handler can turn them into HX-Trigger notifications afterwards.
type noticeRecorder struct {
	mu      sync.Mutex
	notices []recordedNotice
}

type recordedNotice struct {
	kind     NotificationType
	message  string
	duration time.Duration
}

func newNoticeRecorder() *noticeRecorder {
	return &noticeRecorder{}
}

func (n *noticeRecorder) Progress(title, _ string) {
	n.add(NotificationProgress, title, 0)
}

func (n *noticeRecorder) Success(_, body string, autoDismiss time.Duration) {
	n.add(NotificationSuccess, body, autoDismiss)
}

func (n *noticeRecorder) Error(_, body string) {
	n.add(NotificationError, body, 5*time.Second)
}

func (n *noticeRecorder) add(kind NotificationType, message string, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, recordedNotice{kind: kind, message: message, duration: duration})
}

// apply writes every recorded notice onto the response builder.
func (n *noticeRecorder) apply(b *HTMXResponseBuilder) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, notice := range n.notices {
		ms := int(notice.duration / time.Millisecond)
		if ms <= 0 {
			ms = 3000
		}
		b.TriggerNotification(notice.kind, notice.message, ms)
	}
}

// swappableFeedback is the Confirmer/Notifier the session's controllers are
// constructed with. Handlers bind request-scoped implementations around each
// controller call; outside a binding it declines confirmations and drops
// notices.
type swappableFeedback struct {
	mu      sync.Mutex
	confirm feedback.Confirmer
	notify  feedback.Notifier
}

func newSwappableFeedback() *swappableFeedback {
	return &swappableFeedback{
		confirm: feedback.Static{Answer: false},
		notify:  feedback.NopNotifier{},
	}
}

func (f *swappableFeedback) bind(c feedback.Confirmer, n feedback.Notifier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirm = c
	f.notify = n
}

func (f *swappableFeedback) unbind() {
	f.bind(feedback.Static{Answer: false}, feedback.NopNotifier{})
}

func (f *swappableFeedback) Confirm(ctx context.Context, req feedback.ConfirmRequest) bool {
	f.mu.Lock()
	c := f.confirm
	f.mu.Unlock()
	return c.Confirm(ctx, req)
}

func (f *swappableFeedback) Progress(title, body string) {
	f.mu.Lock()
	n := f.notify
	f.mu.Unlock()
	n.Progress(title, body)
}

func (f *swappableFeedback) Success(title, body string, autoDismiss time.Duration) {
	f.mu.Lock()
	n := f.notify
	f.mu.Unlock()
	n.Success(title, body, autoDismiss)
}

func (f *swappableFeedback) Error(title, body string) {
	f.mu.Lock()
	n := f.notify
	f.mu.Unlock()
	n.Error(title, body)
}
