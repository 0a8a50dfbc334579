package model

import (
	"fmt"

	"github.com/viant/toolbox"
)

// Request represents a single simulation run request.
type Request struct {
	// PoolSize is the number of execution units the iterations are spread across.
	PoolSize int `json:"poolSize" yaml:"poolSize"`
	// Iterations is the total number of trials to run.
	Iterations int        `json:"iterations" yaml:"iterations"`
	Config     *SimConfig `json:"config,omitempty" yaml:"config,omitempty"`
}

// NewRequest builds a request from loosely typed pool size and iteration
// values, as received from flags, documents or query strings.
func NewRequest(poolSize, iterations interface{}, config *SimConfig) (*Request, error) {
	pool, err := asCount(poolSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoolSize, err)
	}
	total, err := asCount(iterations)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIterations, err)
	}
	ret := &Request{PoolSize: pool, Iterations: total, Config: config}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Validate checks request invariants.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("request was nil")
	}
	if r.PoolSize < 1 {
		return fmt.Errorf("%w: %d, expected >= 1", ErrInvalidPoolSize, r.PoolSize)
	}
	if r.Iterations < 1 {
		return fmt.Errorf("%w: %d, expected >= 1", ErrInvalidIterations, r.Iterations)
	}
	return nil
}

func asCount(value interface{}) (int, error) {
	if value == nil {
		return 0, fmt.Errorf("value was missing")
	}
	switch actual := value.(type) {
	case float32:
		if float32(int(actual)) != actual {
			return 0, fmt.Errorf("%v is not a whole number", actual)
		}
	case float64:
		if float64(int(actual)) != actual {
			return 0, fmt.Errorf("%v is not a whole number", actual)
		}
	case bool:
		return 0, fmt.Errorf("%v is not a number", actual)
	}
	return toolbox.ToInt(value)
}
