// Package pow offloads proof-of-work and other heavy computations to a
// worker scoped to a single call.
package pow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ChatDifficulty is the difficulty required for chat transactions.
const ChatDifficulty = 8

// ArbitraryDifficulty marks feeless data publishes; the node picks the
// effective difficulty from the payload size.
const ArbitraryDifficulty = 1

// Solver embeds a nonce satisfying difficulty into unsigned transaction
// bytes and returns the updated bytes. Implementations must return when ctx
// is done.
type Solver interface {
	Solve(ctx context.Context, data []byte, difficulty int) ([]byte, error)
}

// SolverFunc adapts a function to Solver.
type SolverFunc func(ctx context.Context, data []byte, difficulty int) ([]byte, error)

// Solve calls fn.
func (fn SolverFunc) Solve(ctx context.Context, data []byte, difficulty int) ([]byte, error) {
	return fn(ctx, data, difficulty)
}

// Result is a solved proof-of-work.
type Result struct {
	Difficulty int
	Data       []byte
}

// Offload runs work on dedicated workers. A worker lives exactly as long as
// the call that created it.
type Offload struct {
	solver Solver
	active int64
	seq    int64
}

// New creates an offload using solver.
func New(solver Solver) *Offload {
	return &Offload{solver: solver}
}

type worker struct {
	id       int64
	ctx      context.Context
	cancelFn context.CancelFunc
	wg       sync.WaitGroup
	err      error
	done     chan struct{}
}

func (w *worker) run(fn func(ctx context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(w.done)
		defer func() {
			if r := recover(); r != nil {
				w.err = fmt.Errorf("worker %d panic: %v", w.id, r)
			}
		}()
		w.err = fn(w.ctx)
	}()
}

// terminate cancels the worker and waits for it to exit.
func (w *worker) terminate() {
	w.cancelFn()
	w.wg.Wait()
}

// Do runs fn on a new worker and waits for it or for ctx. The worker is
// terminated before Do returns on every path.
func (o *Offload) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	workerCtx, cancel := context.WithCancel(ctx)
	w := &worker{
		id:       atomic.AddInt64(&o.seq, 1),
		ctx:      workerCtx,
		cancelFn: cancel,
		done:     make(chan struct{}),
	}
	atomic.AddInt64(&o.active, 1)
	defer atomic.AddInt64(&o.active, -1)
	w.run(fn)
	defer w.terminate()

	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run solves proof-of-work for data on a scoped worker.
func (o *Offload) Run(ctx context.Context, data []byte, difficulty int) (*Result, error) {
	if o.solver == nil {
		return nil, errors.New("proof-of-work solver was not configured")
	}
	result := &Result{Difficulty: difficulty}
	err := o.Do(ctx, func(ctx context.Context) error {
		solved, err := o.solver.Solve(ctx, data, difficulty)
		result.Data = solved
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute proof-of-work: %w", err)
	}
	return result, nil
}

// Active returns the number of live workers.
func (o *Offload) Active() int {
	return int(atomic.LoadInt64(&o.active))
}
