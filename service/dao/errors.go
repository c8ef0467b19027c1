package dao

import "errors"

var (
	// ErrNotFound is returned by Load when no record has the key.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates an empty key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when saving a nil pointer.
	ErrNilEntity = errors.New("dao: nil entity")
)
