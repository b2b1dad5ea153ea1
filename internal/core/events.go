package core

import "time"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is published after a mutation has been committed.
type ChangeEvent struct {
	Entity    string
	Action    string
	ID        int64
	Timestamp time.Time
}

func NewChangeEvent(entity, action string, id int64) ChangeEvent {
	return ChangeEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}
