package memory

import (
	"github.com/viant/qgate/service/approval"
	"github.com/viant/qgate/service/messaging"
)

type Option func(*service)

// WithQueue replaces the default in-memory event queue.
func WithQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = queue }
}
