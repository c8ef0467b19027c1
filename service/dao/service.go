// Package dao defines the generic keyed store used for approval requests and
// decisions.
package dao

import (
	"context"
)

type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, filters ...Filter[T]) ([]*T, error)
}

// Filter selects records in List; all filters must match.
type Filter[T any] func(t *T) bool
