// Package algo implements the algorithm driver and stop-reason tree
// (spec components C8/C9/C10): Initialization -> loop(MegaIteration)
// -> Termination, driven by a shared Driver that owns the mesh,
// barrier, cache and evaluation pipeline.
//
// Driver generalizes Baaaaam-optim/project/project.go's
// optim.Solver{Iter, MaxIter, MaxEval, Mesh, Obj, Stop} shape (its usage of
// Solver.Next()/Best()/Niter()/Neval()) from a single best-point
// tracker to the full mesh/barrier/cache/queue pipeline this spec
// requires, and its functional-options constructor follows the same
// Option pattern as pattern.Option/swarm.Option.
package algo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/barrier"
	"github.com/rwcarlsen/mads/cache"
	"github.com/rwcarlsen/mads/mesh"
	"github.com/rwcarlsen/mads/poll"
	"github.com/rwcarlsen/mads/queue"
	"github.com/rwcarlsen/mads/search"
)

// Problem is the subset of a problem declaration (spec 6's "Problem
// declaration") that the core algorithm itself consumes; parsing a
// parameter file into this shape is the param package's job.
type Problem struct {
	Dim         int
	X0          []float64
	Lb, Ub      []mads.Float
	Granularity []float64
	OutputTypes []mads.OutputType
}

// Driver runs Initialization -> loop(MegaIteration) -> Termination
// (spec 4.8) over a Problem using a pluggable black-box Objectiver.
type Driver struct {
	Problem Problem
	Mesh    *mesh.State
	Barrier *barrier.Barrier
	Cache   *cache.Cache

	Eval     mads.Objectiver
	EvalKind cache.EvaluatorKind

	Workers       int
	SortKey       queue.SortKey
	DirectionType poll.Directions
	SearchMethods []search.Method
	EarlyStop     bool
	Opportunistic bool

	MaxBBEval int
	MaxEval   int
	MaxTime   time.Duration
	MaxIter   int

	Callbacks *Callbacks

	niter      int
	nbbeval    int
	neval      int
	startTime  time.Time
	started    bool
	globalStop slot
	lastSuccDir []float64
}

// Option configures a Driver at construction time, matching the same
// functional-options idiom as pattern.Option/swarm.Option.
type Option func(*Driver)

func MaxBBEvalOpt(n int) Option      { return func(d *Driver) { d.MaxBBEval = n } }
func MaxEvalOpt(n int) Option        { return func(d *Driver) { d.MaxEval = n } }
func MaxTimeOpt(t time.Duration) Option { return func(d *Driver) { d.MaxTime = t } }
func MaxIterOpt(n int) Option        { return func(d *Driver) { d.MaxIter = n } }
func WorkersOpt(n int) Option        { return func(d *Driver) { d.Workers = n } }
func SortKeyOpt(k queue.SortKey) Option { return func(d *Driver) { d.SortKey = k } }
func DirectionTypeOpt(s poll.Directions) Option { return func(d *Driver) { d.DirectionType = s } }
func SearchMethodsOpt(m ...search.Method) Option { return func(d *Driver) { d.SearchMethods = m } }
func EarlyStopOpt(b bool) Option     { return func(d *Driver) { d.EarlyStop = b } }
func OpportunisticOpt(b bool) Option { return func(d *Driver) { d.Opportunistic = b } }
func CallbacksOpt(c *Callbacks) Option { return func(d *Driver) { d.Callbacks = c } }
func HmaxOpt(h float64) Option       { return func(d *Driver) { d.Barrier = barrier.New(h) } }

// New builds a Driver over p, evaluated by eval, with sane defaults
// (Ortho-2n polling, no search, serial evaluation, unbounded budgets),
// overridden by opts.
func New(p Problem, eval mads.Objectiver, opts ...Option) *Driver {
	d := &Driver{
		Problem:       p,
		Mesh:          mesh.New(p.Dim, p.Granularity, nil),
		Barrier:       barrier.New(mathInf()),
		Cache:         cache.New(0),
		Eval:          eval,
		EvalKind:      cache.BlackBox,
		Workers:       1,
		DirectionType: poll.Orthogonal2N,
		Opportunistic: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func mathInf() float64 { return math.Inf(1) }

// workers returns the configured concurrency, defaulting to serial
// evaluation when unset.
func (d *Driver) workers() int {
	if d.Workers < 1 {
		return 1
	}
	return d.Workers
}

// Niter returns the number of completed Mega-Iterations.
func (d *Driver) Niter() int { return d.niter }

// Neval returns the number of completed black-box evaluations that
// counted against the budget (spec TESTABLE PROPERTIES #3).
func (d *Driver) Neval() int { return d.nbbeval }

// Best returns the current best feasible and best infeasible
// incumbents, as tracked by the barrier.
func (d *Driver) Best() (xStar, xZero *barrier.Candidate) {
	return d.Barrier.XStar(), d.Barrier.XZero()
}

func (d *Driver) incumbentFH() (mads.Float, float64) {
	if xs := d.Barrier.XStar(); xs != nil {
		return xs.F, 0
	}
	if xz := d.Barrier.XZero(); xz != nil {
		return xz.F, xz.H
	}
	return mads.Undefined, mathInf()
}

// evaluate runs the black box on p through the cache's at-most-one-
// evaluation guarantee (spec 4.3). Every consultation - cache hit or
// real black-box call - counts against MAX_EVAL (neval); only a real
// call that actually ran the black box (status OK or Failed) counts
// against MAX_BB_EVAL (nbbeval), since that is the narrower budget a
// Failed call still consumes (spec TESTABLE PROPERTIES #3).
func (d *Driver) evaluate(ctx context.Context, p mads.Point) (f mads.Float, h float64, out []float64, err error) {
	entry, needsEval := d.Cache.SmartInsert(p, d.EvalKind, 1)
	if !needsEval {
		d.neval++
		ev := entry.Latest(d.EvalKind)
		if ev != nil {
			return ev.F, ev.H, ev.Output, nil
		}
		return mads.Undefined, mathInf(), nil, nil
	}

	out, err = d.Eval.Objective(ctx, p.Values())
	status := cache.OK
	counted := true
	if err != nil {
		status = cache.Failed
	}
	ev := d.Cache.Complete(p, d.EvalKind, out, d.Problem.OutputTypes, status, counted)
	if status == cache.OK || status == cache.Failed {
		d.nbbeval++
	}
	d.neval++
	if ev == nil {
		return mads.Undefined, mathInf(), out, err
	}
	return ev.F, ev.H, out, err
}

// cancelPoint records a trial point that was queued for evaluation but
// dropped before it ran - either because the global budget was
// exhausted mid-dispatch or an opportunistic stop fired first (spec
// 4.4 dispatch step 6: "drain the queue"). It leaves a Cancelled cache
// entry rather than letting the point vanish untracked, and counts
// against neither budget.
func (d *Driver) cancelPoint(p mads.Point) {
	if _, needsEval := d.Cache.SmartInsert(p, d.EvalKind, 1); !needsEval {
		return
	}
	d.Cache.Complete(p, d.EvalKind, nil, d.Problem.OutputTypes, cache.Cancelled, false)
}

// Run executes Initialization -> loop(MegaIteration) -> Termination
// (spec 4.8) until a stop reason fires, and returns it. A fatal stop
// reason (spec 7) is additionally returned as an error.
func (d *Driver) Run(ctx context.Context) (StopReason, error) {
	if err := d.initialize(ctx); err != nil {
		d.globalStop.set(ParamError)
		return ParamError, err
	}

	for {
		stop, reason := Terminate(d.globalStop.get(), Started, d.niter, d.MaxIter)
		if !stop {
			stop, reason = d.checkBudget()
		}
		if stop {
			d.terminate()
			if reason.Fatal() {
				return reason, fmt.Errorf("mads: %s", reason)
			}
			return reason, nil
		}

		mi := &MegaIteration{Barrier: d.Barrier, Mesh: d.Mesh}
		success, err := mi.run(ctx, d)
		d.niter++
		if err != nil {
			d.globalStop.set(InternalError)
			d.terminate()
			return InternalError, err
		}
		if d.Callbacks.megaIterationEnd(success) {
			d.globalStop.set(UserCallbackStop)
		}
	}
}

func (d *Driver) initialize(ctx context.Context) error {
	if d.started {
		return nil
	}
	d.started = true
	d.startTime = time.Now()
	if len(d.Problem.X0) != d.Problem.Dim {
		return fmt.Errorf("mads: X0 length %d does not match dimension %d", len(d.Problem.X0), d.Problem.Dim)
	}
	x0 := mads.NewPoint(d.Problem.X0)
	f, h, _, err := d.evaluate(ctx, x0)
	if err != nil {
		return err
	}
	d.Barrier.Update(barrier.Candidate{Pos: x0, F: f, H: h})
	d.Mesh.SetOrigin(d.Problem.X0)
	return nil
}

func (d *Driver) checkBudget() (bool, StopReason) {
	if d.MaxBBEval > 0 && d.nbbeval >= d.MaxBBEval {
		return true, MaxBBEval
	}
	if d.MaxEval > 0 && d.neval >= d.MaxEval {
		return true, MaxEval
	}
	if d.MaxTime > 0 && time.Since(d.startTime) >= d.MaxTime {
		return true, MaxTime
	}
	if d.Mesh.MinMeshReached() {
		return true, MeshMinReached
	}
	return false, Started
}

// budgetExceeded reports whether MAX_BB_EVAL, MAX_EVAL or MAX_TIME has
// already been consumed. Unlike checkBudget it excludes the mesh-size
// stop condition, since that one cannot change mid-dispatch and isn't
// something a queue drain needs to react to. Callers use this to cut a
// dispatch block short instead of waiting for the next Mega-Iteration
// boundary (spec 4.4 dispatch step 6).
func (d *Driver) budgetExceeded() bool {
	stop, reason := d.checkBudget()
	return stop && reason != MeshMinReached
}

// terminate marks the end of a run (spec 4.8's "drain queue, flush
// outputs, export cache"). The in-process Driver has no standing queue
// between Mega-Iterations and nothing of its own to flush, so it does
// nothing; cmd/madsopt writes its cache and restart data after Run
// returns.
func (d *Driver) terminate() {}
