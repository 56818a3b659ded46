package algo

import (
	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/barrier"
)

// Callbacks are the user hook points (spec component C10). Every field
// is optional; a nil field is simply skipped. Following the same
// functional-options idiom as pattern.Option/swarm.Option, callers
// build a Callbacks value and wire it through Option funcs rather than
// subclassing anything.
type Callbacks struct {
	// PreEval runs before a point is submitted to the queue; returning
	// false vetoes the submission (treated as though it were never
	// generated).
	PreEval func(p mads.Point) bool

	// PostEval runs after an evaluation completes, in completion order
	// (spec 5: "post-eval callbacks fire in completion order, not
	// submission order").
	PostEval func(p mads.Point, out []float64, err error)

	// OpportunisticCheck overrides the default opportunism predicate
	// (barrier classification == FullSuccess); return true to cut the
	// remainder of the current block.
	OpportunisticCheck func(c barrier.Classification) bool

	// FailCheck runs when the evaluator reports failure; returning
	// (out, true) rewrites the point's output as if the evaluator had
	// produced it, per spec 4.4's "user fail-check callback may rewrite
	// the output": PostEval and the barrier update see the rewritten
	// output, while the cache keeps the evaluation recorded as Failed.
	FailCheck func(p mads.Point, err error) (out []float64, ok bool)

	// MegaIterationEnd runs once per Mega-Iteration with its aggregated
	// success classification; returning true requests the algorithm
	// stop slot be set (spec 4.7).
	MegaIterationEnd func(success bool) (stop bool)

	// UserPollDirections lets the caller inject additional directions
	// alongside the poll's own set (spec component C10 hook point).
	UserPollDirections func(center mads.Point) [][]float64

	// UserSearchPoints lets the caller inject trial points alongside
	// the search step's own proposals. The points are snapped to the
	// mesh and dispatched together with the poll's trial points.
	UserSearchPoints func(center mads.Point) []mads.Point
}

func (c *Callbacks) preEval(p mads.Point) bool {
	if c == nil || c.PreEval == nil {
		return true
	}
	return c.PreEval(p)
}

func (c *Callbacks) postEval(p mads.Point, out []float64, err error) {
	if c == nil || c.PostEval == nil {
		return
	}
	c.PostEval(p, out, err)
}

func (c *Callbacks) opportunisticCheck(cl barrier.Classification) bool {
	if c == nil || c.OpportunisticCheck == nil {
		return cl == barrier.FullSuccess
	}
	return c.OpportunisticCheck(cl)
}

func (c *Callbacks) failCheck(p mads.Point, err error) ([]float64, bool) {
	if c == nil || c.FailCheck == nil {
		return nil, false
	}
	return c.FailCheck(p, err)
}

func (c *Callbacks) megaIterationEnd(success bool) bool {
	if c == nil || c.MegaIterationEnd == nil {
		return false
	}
	return c.MegaIterationEnd(success)
}
