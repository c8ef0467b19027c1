package approval

import "context"

type callerKey struct{}

// Detach returns a context carrying ctx's values without its cancellation,
// so work that follows an approval runs to completion. A prompt asked under
// the returned context is still withdrawn once ctx is done.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(context.WithoutCancel(ctx), callerKey{}, ctx)
}

// waitContext is cancelled when ctx or the caller behind a detached ctx is
// done.
func waitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	caller, ok := ctx.Value(callerKey{}).(context.Context)
	if !ok {
		return ctx, func() {}
	}
	ret, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(caller, cancel)
	return ret, func() {
		stop()
		cancel()
	}
}
