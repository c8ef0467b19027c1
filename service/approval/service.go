package approval

import (
	"context"
	"errors"

	"github.com/viant/qgate/service/messaging"
)

var (
	// ErrNotFound is returned for unknown request ids.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyDecided is returned when deciding a request twice.
	ErrAlreadyDecided = errors.New("already decided")
)

// Service stores pending requests and their decisions.
type Service interface {
	RequestApproval(ctx context.Context, r *Request) error
	ListPending(ctx context.Context) ([]*Request, error)
	Decide(ctx context.Context, id string, approved bool, reason string, options ...DecisionOption) (*Decision, error)
	// Wait blocks until id is decided, then releases the request.
	Wait(ctx context.Context, id string) (*Decision, error)
	// Withdraw drops an undecided request.
	Withdraw(ctx context.Context, id string) error
	Queue() messaging.Queue[Event]
}

// DecisionOption customises a decision.
type DecisionOption func(d *Decision)

// WithAuxiliary attaches auxiliary choices to a decision.
func WithAuxiliary(auxiliary map[string]interface{}) DecisionOption {
	return func(d *Decision) {
		if len(auxiliary) == 0 {
			return
		}
		if d.Auxiliary == nil {
			d.Auxiliary = map[string]interface{}{}
		}
		for k, v := range auxiliary {
			d.Auxiliary[k] = v
		}
	}
}
