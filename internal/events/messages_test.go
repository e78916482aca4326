package events

import (
	"testing"
	"time"
)

func TestMutationMessageRoundTrip(t *testing.T) {
	msg := NewMutationMessage(ResourceTransaction, "t-42", ActionDeleted)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := MutationMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Resource != ResourceTransaction || got.ID != "t-42" || got.Action != ActionDeleted {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Timestamp.IsZero() || time.Since(got.Timestamp) > time.Minute {
		t.Fatalf("timestamp not carried: %v", got.Timestamp)
	}
}

func TestMutationMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := MutationMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
