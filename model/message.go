package model

import "errors"

// Unit message types.
const (
	MessageStart   = "start"
	MessageSuccess = "success"
	MessageError   = "error"
)

// Dispatch is sent by the orchestrator to an execution unit.
type Dispatch struct {
	Type       string     `json:"type"`
	Config     *SimConfig `json:"config"`
	Iterations int        `json:"iterations"`
}

// NewDispatch creates a start message.
func NewDispatch(config *SimConfig, iterations int) *Dispatch {
	return &Dispatch{Type: MessageStart, Config: config, Iterations: iterations}
}

// Reply is sent by an execution unit once its shard terminates.
type Reply struct {
	Type   string   `json:"type"`
	Unit   int      `json:"unit"`
	Result *Summary `json:"result,omitempty"`
	// Message carries the error text for error replies.
	Message string `json:"message,omitempty"`
	cause   error
}

// NewSuccess creates a success reply.
func NewSuccess(unit int, result *Summary) *Reply {
	return &Reply{Type: MessageSuccess, Unit: unit, Result: result}
}

// NewFailure creates an error reply preserving the cause.
func NewFailure(unit int, err error) *Reply {
	if err == nil {
		err = errors.New("unknown unit failure")
	}
	return &Reply{Type: MessageError, Unit: unit, Message: err.Error(), cause: err}
}

// Err returns the reply failure cause, or nil for success.
func (r *Reply) Err() error {
	if r.Type != MessageError {
		return nil
	}
	if r.cause != nil {
		return r.cause
	}
	return errors.New(r.Message)
}
