package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityTask    = "task"
	EntityProject = "project"
	EntityArea    = "area"

	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Priority orders replay: lower values drain first.
const (
	PriorityUpdate  = 2
	PriorityDelete  = 3
	defaultPriority = 3
)

// Item is a plain edit parked while Postgres is unreachable.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		switch i.Operation {
		case OperationUpdate:
			i.Priority = PriorityUpdate
		case OperationDelete:
			i.Priority = PriorityDelete
		default:
			i.Priority = defaultPriority
		}
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
