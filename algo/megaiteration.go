package algo

import (
	"context"

	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/barrier"
	"github.com/rwcarlsen/mads/mesh"
)

// MegaIteration owns the barrier and mesh and runs one Iteration per
// frame center chosen from the barrier - typically one for x* and one
// for x deg (spec 4.7). Outcomes are merged into the barrier
// deterministically regardless of evaluation completion order, since
// Barrier.Update itself is what serializes concurrent arrivals (spec
// 5).
type MegaIteration struct {
	Barrier *barrier.Barrier
	Mesh    *mesh.State
}

// run drives Search+Poll for each live frame center and folds the
// mesh enlarge/refine transition from the aggregated classification
// (spec 4.7's state machine). It returns whether any center achieved
// at least a partial success.
func (mi *MegaIteration) run(ctx context.Context, d *Driver) (success bool, err error) {
	centers := mi.frameCenters()
	if len(centers) == 0 {
		return false, nil
	}

	aggregate := barrier.Unsuccessful
	var successDir []float64
	for _, center := range centers {
		it := &Iteration{Center: center, Mesh: mi.Mesh}
		oc, err := it.run(ctx, d, d.EarlyStop)
		if err != nil {
			return false, err
		}
		if oc.classification > aggregate {
			aggregate = oc.classification
			successDir = oc.direction
		}
	}

	switch aggregate {
	case barrier.FullSuccess:
		mi.Mesh.Enlarge(successDir)
		mi.Barrier.PromoteOnFeasibility()
	case barrier.PartialSuccess:
		// mesh unchanged (spec 4.7)
	default:
		mi.Mesh.Refine()
	}

	return aggregate != barrier.Unsuccessful, nil
}

// frameCenters selects the current incumbents to poll/search around:
// x* and x deg when both exist, or whichever single incumbent is
// available at start-up.
func (mi *MegaIteration) frameCenters() []mads.Point {
	var centers []mads.Point
	if xs := mi.Barrier.XStar(); xs != nil {
		centers = append(centers, xs.Pos)
	}
	if xz := mi.Barrier.XZero(); xz != nil {
		centers = append(centers, xz.Pos)
	}
	return centers
}
