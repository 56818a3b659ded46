package mads

import "context"

// Objectiver evaluates the opaque black box at a single position,
// returning its raw, undifferentiated output vector in BB_OUTPUT_TYPE
// order (spec DATA MODEL, "Output-type vector"). It is the same shape
// as Baaaaam-optim's optim.Objectiver, generalized from a scalar return
// to a vector since a single black-box call yields objectives and
// constraints together.
type Objectiver interface {
	Objective(ctx context.Context, pos []float64) (out []float64, err error)
}

// ObjectiverFunc adapts a plain function to Objectiver, mirroring
// Baaaaam-optim's optim.SimpleObjectiver function-to-interface idiom.
type ObjectiverFunc func(ctx context.Context, pos []float64) ([]float64, error)

func (f ObjectiverFunc) Objective(ctx context.Context, pos []float64) ([]float64, error) {
	return f(ctx, pos)
}
