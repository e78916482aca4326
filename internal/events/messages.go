package events

import (
	"encoding/json"
	"time"
)

// Mutation actions carried on the queue.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Resource names carried on the queue.
const (
	ResourceTransaction    = "transaction"
	ResourceTravelCategory = "travel_category"
	ResourceTravelBudget   = "travel_budget"
)

// MutationMessage is a lightweight notification that a resource changed.
// It carries only the identity of the change; consumers fetch the full
// record from the backend when they need it.
type MutationMessage struct {
	Resource  string    `json:"resource"`
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMutationMessage(resource, id, action string) *MutationMessage {
	return &MutationMessage{
		Resource:  resource,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
