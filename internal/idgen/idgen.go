package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier. Tests may replace it.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier.
func New() string { return NewFunc() }

// NewRunID returns a run identifier scoped by a prefix, e.g. "sim_<uuid>".
// The result is safe to use as a URL path segment.
func NewRunID(prefix string) string {
	if prefix == "" {
		return New()
	}
	return prefix + "_" + New()
}
