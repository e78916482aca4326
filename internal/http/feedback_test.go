package http

import (
	"context"
	"testing"
	"time"

	"monedero/internal/feedback"
)

func TestFormConfirmer(t *testing.T) {
	ctx := context.Background()
	if (formConfirmer{confirmed: false}).Confirm(ctx, feedback.ConfirmRequest{}) {
		t.Fatal("missing confirmed flag must count as declined")
	}
	if !(formConfirmer{confirmed: true}).Confirm(ctx, feedback.ConfirmRequest{}) {
		t.Fatal("confirmed flag must count as accepted")
	}
}

func TestUnboundFeedbackDeclinesAndDropsNotices(t *testing.T) {
	fb := newSwappableFeedback()
	if fb.Confirm(context.Background(), feedback.ConfirmRequest{}) {
		t.Fatal("unbound shim must decline")
	}
	// Must not panic without a bound notifier.
	fb.Progress("x", "")
	fb.Success("x", "y", time.Second)
	fb.Error("x", "y")
}

// A declining request's confirmation answer must not be overridden by a
// concurrent confirming request on the same session: the binding span is
// serialized, so the second mutation waits until the first finishes.
func TestConcurrentMutationsDoNotCrossConfirmers(t *testing.T) {
	sc := &sessionControllers{fb: newSwappableFeedback()}

	release := make(chan struct{})
	firstAnswer := make(chan bool, 1)
	secondRan := make(chan struct{})

	go func() {
		_ = sc.withFeedback(formConfirmer{confirmed: false}, feedback.NopNotifier{}, func() error {
			<-release
			firstAnswer <- sc.fb.Confirm(context.Background(), feedback.ConfirmRequest{})
			return nil
		})
	}()

	// Give the declining request time to enter its binding span, then race a
	// confirming request against it.
	time.Sleep(20 * time.Millisecond)
	go func() {
		_ = sc.withFeedback(formConfirmer{confirmed: true}, feedback.NopNotifier{}, func() error {
			close(secondRan)
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-secondRan:
		t.Fatal("second mutation ran while the first still held its binding")
	default:
	}

	close(release)
	if answer := <-firstAnswer; answer {
		t.Fatal("declined confirmation was overridden by a concurrent request")
	}

	select {
	case <-secondRan:
	case <-time.After(time.Second):
		t.Fatal("second mutation never ran after the first released the binding")
	}
}
