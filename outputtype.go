package mads

import "math"

// OutputType classifies one slot of a black-box's raw output vector
// (spec DATA MODEL, "Output-type vector").
type OutputType int

const (
	// Objective marks an output the search is minimizing.
	Objective OutputType = iota
	// Progressive marks a progressive-barrier constraint output c;
	// violation contributes max(0,c)^2 to h.
	Progressive
	// Extreme marks an extreme-barrier constraint output; c > 0 makes
	// the point permanently unusable (h = +Inf).
	Extreme
	// Extra marks an output that is recorded but never counted toward
	// f or h.
	Extra
)

// ComputeFH derives the objective value and aggregated constraint
// violation from a raw black-box output vector and its declared output
// types (spec DATA MODEL, "Output-type vector"):
//
//	h = sum over progressive outputs of max(0, c)^2
//	h = +Inf if any extreme output is positive (point is unusable)
//	f = the (first) objective output
//
// Multiple objective slots are summed, matching single-objective usage
// where callers declare exactly one; nothing here special-cases that,
// so a caller may legally declare more than one and get their sum.
func ComputeFH(out []float64, types []OutputType) (f Float, h float64) {
	haveF := false
	for i, t := range types {
		if i >= len(out) {
			break
		}
		v := out[i]
		switch t {
		case Objective:
			if !haveF {
				f = Def(v)
				haveF = true
			} else {
				f = Def(f.Value() + v)
			}
		case Progressive:
			if v > 0 {
				h += v * v
			}
		case Extreme:
			if v > 0 {
				h = math.Inf(1)
			}
		case Extra:
			// recorded on the Eval but never contributes to f or h.
		}
	}
	return f, h
}
