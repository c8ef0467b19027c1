// Package messaging defines the generic queue used to fan approval events out
// to prompt surfaces.
package messaging

import (
	"context"
)

// Queue is an abstract message queue for any payload type.
type Queue[T any] interface {
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a message is available or ctx is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a delivered payload awaiting acknowledgement.
type Message[T any] interface {
	T() *T

	Ack() error

	// Nack returns the message for redelivery.
	Nack(err error) error
}
