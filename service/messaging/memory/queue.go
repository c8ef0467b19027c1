package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/qgate/internal/idgen"
	"github.com/viant/qgate/service/messaging"
)

// Config for the in-memory queue.
type Config struct {
	MaxRedeliveries int
	RedeliveryDelay time.Duration
	Buffer          int
	// DropWhenFull makes Publish fail fast with ErrFull instead of blocking.
	DropWhenFull bool
}

// ErrFull is returned by Publish when the buffer is full and DropWhenFull is set.
var ErrFull = errors.New("queue is full")

// DefaultConfig returns the queue defaults.
func DefaultConfig() Config {
	return Config{
		MaxRedeliveries: 3,
		RedeliveryDelay: 50 * time.Millisecond,
		Buffer:          128,
	}
}

// Message is an in-memory delivery.
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	deliveries int
	mu         sync.Mutex
	settled    bool
}

func (m *Message[T]) T() *T {
	return &m.payload
}

// ID returns the delivery id.
func (m *Message[T]) ID() string {
	return m.id
}

func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settled {
		return fmt.Errorf("message %s already settled", m.id)
	}
	m.settled = true
	return nil
}

func (m *Message[T]) Nack(_ error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settled {
		return fmt.Errorf("message %s already settled", m.id)
	}
	m.settled = true
	if m.deliveries > m.queue.config.MaxRedeliveries {
		return nil
	}
	redelivery := &Message[T]{id: m.id, payload: m.payload, queue: m.queue, deliveries: m.deliveries}
	go func() {
		time.Sleep(m.queue.config.RedeliveryDelay)
		m.queue.enqueue(redelivery)
	}()
	return nil
}

// Queue is a buffered in-memory messaging.Queue.
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
}

// NewQueue creates an in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Buffer),
		config:   config,
	}
}

func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{id: idgen.New(), payload: *t, queue: q}
	if q.config.DropWhenFull {
		select {
		case q.messages <- msg:
			return nil
		default:
			return ErrFull
		}
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) enqueue(msg *Message[T]) {
	q.messages <- msg
}

func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		msg.deliveries++
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of queued messages.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
