package event

import "time"

// Lifecycle event types.
const (
	TypeRunStarted     = "run.started"
	TypeUnitDispatched = "unit.dispatched"
	TypeUnitSucceeded  = "unit.succeeded"
	TypeUnitFailed     = "unit.failed"
	TypeRunSucceeded   = "run.succeeded"
	TypeRunFailed      = "run.failed"
)

// Context identifies the run and unit an event refers to.
type Context struct {
	RunID       string `json:"runID"`
	Unit        int    `json:"unit"`
	EventType   string `json:"eventType"`
	Iterations  int    `json:"iterations,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

// Event wraps typed payload data with its context.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
