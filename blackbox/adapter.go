package blackbox

import (
	"context"
	"fmt"
)

// Single adapts a Batch evaluator to mads.Objectiver for callers (like
// algo.Driver) that evaluate one point at a time; it submits a
// single-row batch per call.
type Single struct {
	Batch *Batch
}

// Objective implements mads.Objectiver by running a one-row batch.
func (s Single) Objective(ctx context.Context, pos []float64) ([]float64, error) {
	rows, err := s.Batch.Eval(ctx, [][]float64{pos})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || !rows[0].Ok {
		return nil, fmt.Errorf("blackbox: evaluation failed for input %v", pos)
	}
	return rows[0].Output, nil
}
