package node

import (
	"context"

	"github.com/viant/qgate/service/pow"
)

// NewSolver returns a proof-of-work solver delegating to a node compute path.
// The node picks the difficulty for the transaction type itself.
func NewSolver(client *Client, path string) pow.Solver {
	return pow.SolverFunc(func(ctx context.Context, data []byte, difficulty int) ([]byte, error) {
		return client.Compute(ctx, path, data)
	})
}
