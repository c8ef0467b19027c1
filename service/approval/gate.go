package approval

import (
	"context"
	"errors"

	"github.com/viant/qgate/internal/clock"
	"github.com/viant/qgate/internal/idgen"
	"github.com/viant/qgate/model/action"
	"github.com/viant/qgate/policy"
)

// Prompt describes what a pipeline asks the human.
type Prompt struct {
	Kind    action.Kind
	Summary map[string]interface{}
	Choices []Choice
}

// Gate suspends a pipeline until the human accepts or rejects its prompt.
// Each Ask owns exactly one request; concurrent Asks are independent.
type Gate struct {
	service Service
}

// NewGate creates a gate backed by service.
func NewGate(service Service) *Gate {
	return &Gate{service: service}
}

// Service returns the backing approval service.
func (g *Gate) Service() Service {
	return g.service
}

// Ask resolves the prompt. The policy carried by ctx may deny the kind
// outright or, for kinds that allow it, approve without prompting. There is
// no timeout; a cancelled ctx, or a done caller of a detached ctx, withdraws
// the request and counts as dismissal.
func (g *Gate) Ask(ctx context.Context, prompt *Prompt) (*Outcome, error) {
	switch policy.FromContext(ctx).Evaluate(prompt.Kind) {
	case policy.ModeDeny:
		return &Outcome{Accepted: false}, nil
	case policy.ModeAuto:
		return &Outcome{Accepted: true, Auxiliary: defaults(&Request{Choices: prompt.Choices})}, nil
	}

	request := &Request{
		ID:        idgen.NewWithPrefix(string(prompt.Kind)),
		Action:    prompt.Kind,
		Summary:   prompt.Summary,
		Choices:   prompt.Choices,
		CreatedAt: clock.Now(),
	}
	if err := g.service.RequestApproval(ctx, request); err != nil {
		return nil, err
	}
	waitCtx, cancel := waitContext(ctx)
	defer cancel()
	decision, err := g.service.Wait(waitCtx, request.ID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = g.service.Withdraw(context.Background(), request.ID)
			return &Outcome{Accepted: false}, nil
		}
		return nil, err
	}
	outcome := &Outcome{Accepted: decision.Approved, Auxiliary: defaults(request)}
	for k, v := range decision.Auxiliary {
		if outcome.Auxiliary == nil {
			outcome.Auxiliary = map[string]interface{}{}
		}
		outcome.Auxiliary[k] = v
	}
	return outcome, nil
}
