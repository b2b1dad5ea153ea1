package amqp

import (
	"encoding/json"
	"time"

	"finbot/internal/core"
)

// ChangeMessage announces a committed create, update or delete. It carries
// only the identity of the row; consumers fetch the current state from the
// API.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage builds the wire message for a change event
func NewChangeMessage(event core.ChangeEvent) *ChangeMessage {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &ChangeMessage{
		Entity:    event.Entity,
		Action:    event.Action,
		ID:        event.ID,
		Timestamp: ts,
	}
}

// RoutingKey returns the topic routing key, e.g. "expense.created"
func (m *ChangeMessage) RoutingKey() string {
	return m.Entity + "." + m.Action
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
