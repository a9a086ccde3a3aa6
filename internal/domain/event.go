package domain

// TodoEventType - kind of change pushed to subscribers
type TodoEventType string

const (
	TodoCreated TodoEventType = "todo_created"
	TodoUpdated TodoEventType = "todo_updated"
	TodoToggled TodoEventType = "todo_toggled"
	TodoDeleted TodoEventType = "todo_deleted"
)

// TodoEvent describes one successful mutation. Todo is nil for deletes.
type TodoEvent struct {
	Type TodoEventType `json:"type"`
	ID   int64         `json:"id"`
	Todo *Todo         `json:"todo,omitempty"`
}
