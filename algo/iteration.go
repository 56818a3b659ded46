package algo

import (
	"context"

	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/barrier"
	"github.com/rwcarlsen/mads/mesh"
	"github.com/rwcarlsen/mads/poll"
	"github.com/rwcarlsen/mads/queue"
)

// Iteration bundles a frame center and the mesh it polls/searches
// against, and runs Search then Poll under the driver's shared Queue
// (spec 4.7: "An Iteration bundles (frame center, mesh) and runs
// Search then Poll under the shared Queue").
type Iteration struct {
	Center mads.Point
	Mesh   *mesh.State
}

// outcome is what one Iteration hands back to its owning MegaIteration.
type outcome struct {
	classification barrier.Classification
	best           mads.Point
	direction      []float64
	nEval          int
}

// run executes Search (in order, stopping early at the first full
// success if earlyStop is set) followed by Poll, dispatching every
// trial point through d's shared evaluation pipeline (spec 4.6: "the
// core dispatches them in that order and stops at the first that
// achieves a full success").
func (it *Iteration) run(ctx context.Context, d *Driver, earlyStop bool) (outcome, error) {
	curF, curH := d.incumbentFH()

	obj := func(ctx context.Context, p mads.Point) (mads.Float, float64, error) {
		f, h, _, err := d.evaluate(ctx, p)
		return f, h, err
	}

	for _, m := range d.SearchMethods {
		success, best, n, err := m.Search(ctx, obj, it.Mesh, it.Center, curF, curH)
		if err != nil {
			return outcome{}, err
		}
		if success {
			cl := d.Barrier.Update(barrier.Candidate{Pos: best, F: mustF(d, best), H: mustH(d, best)})
			if earlyStop && cl == barrier.FullSuccess {
				return outcome{classification: cl, best: best, nEval: n}, nil
			}
			curF, curH = d.incumbentFH()
		}
	}

	trialPts := poll.TrialPoints(it.Center, it.Mesh, d.DirectionType)
	if d.Callbacks != nil && d.Callbacks.UserPollDirections != nil {
		extra := d.Callbacks.UserPollDirections(it.Center)
		for _, dir := range extra {
			pos := make([]float64, it.Center.Len())
			frame := it.Mesh.FrameSize()
			for i := range pos {
				pos[i] = it.Center.At(i).Value() + dir[i]*frame[i]
			}
			trialPts = append(trialPts, mads.NewPoint(it.Mesh.Nearest(pos)))
		}
	}
	if d.Callbacks != nil && d.Callbacks.UserSearchPoints != nil {
		for _, p := range d.Callbacks.UserSearchPoints(it.Center) {
			trialPts = append(trialPts, mads.NewPoint(it.Mesh.Nearest(p.Values())))
		}
	}

	for i, p := range trialPts {
		trialPts[i] = mads.Clamp(p, d.Problem.Lb, d.Problem.Ub)
	}

	return it.dispatchPoll(ctx, d, trialPts)
}

// dispatchPoll runs trialPts through the driver's shared evaluator
// queue (spec component C5), sorting by d.SortKey and fanning out
// across d.Workers concurrent evaluations. Post-eval callbacks and the
// barrier update happen in completion order, not submission order
// (spec 5), since they run from the queue's single result-draining
// loop via StopIf - which doubles as both the opportunistic-
// cancellation predicate and the mid-dispatch budget gate (spec
// 4.4/12, dispatch step 6): once either reports true the queue cancels
// whatever hasn't been dispatched yet, and OnCancel records each
// dropped point as a Cancelled cache entry rather than silently
// overshooting MAX_BB_EVAL by a full block.
func (it *Iteration) dispatchPoll(ctx context.Context, d *Driver, trialPts []mads.Point) (outcome, error) {
	bestCl := barrier.Unsuccessful
	var bestPt mads.Point
	var bestDir []float64
	nEval := 0

	if d.budgetExceeded() {
		for _, p := range trialPts {
			d.cancelPoint(p)
		}
		return outcome{classification: bestCl, best: bestPt, direction: bestDir, nEval: nEval}, nil
	}

	q := queue.New(d.workers(), d.SortKey)
	for _, p := range trialPts {
		if !d.Callbacks.preEval(p) {
			continue
		}
		q.Submit(queue.Task{Point: p, Eval: func(ctx context.Context, p mads.Point) ([]float64, error) {
			_, _, out, err := d.evaluate(ctx, p)
			return out, err
		}})
	}

	frame := it.Mesh.FrameSize()

	q.StopIf = func(r queue.Result) bool {
		nEval++
		out, err := r.Output, r.Err
		f, h := mustF(d, r.Task.Point), mustH(d, r.Task.Point)
		if err != nil {
			if rewritten, ok := d.Callbacks.failCheck(r.Task.Point, err); ok {
				out, err = rewritten, nil
				f, h = mads.ComputeFH(rewritten, d.Problem.OutputTypes)
			}
		}
		d.Callbacks.postEval(r.Task.Point, out, err)
		if err != nil {
			return false
		}
		cl := d.Barrier.Update(barrier.Candidate{Pos: r.Task.Point, F: f, H: h})
		if cl > bestCl {
			bestCl, bestPt = cl, r.Task.Point
			bestDir = directionBetween(it.Center, r.Task.Point, frame)
		}
		return (d.Opportunistic && d.Callbacks.opportunisticCheck(cl)) || d.budgetExceeded()
	}
	q.OnCancel = func(t queue.Task) {
		d.cancelPoint(t.Point)
	}

	q.Run(ctx)
	if err := ctx.Err(); err != nil {
		return outcome{classification: bestCl, best: bestPt, direction: bestDir, nEval: nEval}, err
	}
	return outcome{classification: bestCl, best: bestPt, direction: bestDir, nEval: nEval}, nil
}

func directionBetween(center, p mads.Point, frame []float64) []float64 {
	d := make([]float64, center.Len())
	for i := range d {
		if frame[i] == 0 {
			continue
		}
		d[i] = (p.At(i).Value() - center.At(i).Value()) / frame[i]
	}
	return d
}

func mustF(d *Driver, p mads.Point) mads.Float {
	e, ok := d.Cache.Find(p)
	if !ok {
		return mads.Undefined
	}
	ev := e.Latest(d.EvalKind)
	if ev == nil {
		return mads.Undefined
	}
	return ev.F
}

func mustH(d *Driver, p mads.Point) float64 {
	e, ok := d.Cache.Find(p)
	if !ok {
		return 0
	}
	ev := e.Latest(d.EvalKind)
	if ev == nil {
		return 0
	}
	return ev.H
}
