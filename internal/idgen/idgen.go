package idgen

import "github.com/google/uuid"

var NewFunc = func() string { return uuid.New().String() }

// New returns a new unique identifier.
func New() string { return NewFunc() }

// NewWithPrefix returns prefix + "-" + New().
func NewWithPrefix(prefix string) string {
	if prefix == "" {
		return New()
	}
	return prefix + "-" + New()
}
