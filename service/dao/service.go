// Package dao defines the generic data access contract used to persist run
// records, with sentinel errors shared by implementations.
package dao

import (
	"context"
)

// Service represents a keyed store of T.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
