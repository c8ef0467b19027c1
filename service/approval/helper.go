package approval

import (
	"context"
	"time"
)

const defaultPollInterval = 10 * time.Millisecond

// DecisionFunc decides a pending request: (true, "") approves,
// (false, reason) rejects.
type DecisionFunc func(r *Request) (approved bool, reason string)

// AutoDecider decides every pending request with fn until ctx is done or
// stop is called. Auxiliary choices take their defaults. It is meant for
// headless runs and tests.
func AutoDecider(ctx context.Context, svc Service, fn DecisionFunc, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ctx, stop = context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				decidePending(ctx, svc, fn)
			}
		}
	}()
	return stop
}

func decidePending(ctx context.Context, svc Service, fn DecisionFunc) {
	pending, err := svc.ListPending(ctx)
	if err != nil {
		return
	}
	for _, request := range pending {
		approved, reason := fn(request)
		_, _ = svc.Decide(ctx, request.ID, approved, reason, WithAuxiliary(defaults(request)))
	}
}

// AutoApprove approves every pending request.
func AutoApprove(ctx context.Context, svc Service, interval time.Duration) (stop func()) {
	return AutoDecider(ctx, svc, func(*Request) (bool, string) { return true, "" }, interval)
}

// AutoReject rejects every pending request with reason.
func AutoReject(ctx context.Context, svc Service, reason string, interval time.Duration) (stop func()) {
	return AutoDecider(ctx, svc, func(*Request) (bool, string) { return false, reason }, interval)
}

func defaults(r *Request) map[string]interface{} {
	if len(r.Choices) == 0 {
		return nil
	}
	ret := make(map[string]interface{}, len(r.Choices))
	for _, choice := range r.Choices {
		ret[choice.Name] = choice.Default
	}
	return ret
}
