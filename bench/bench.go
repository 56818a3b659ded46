// Package bench provides test problems for exercising an algo.Driver
// end to end, adapted from Baaaaam-optim's benchmark
// functions (test functions for optimization, see
// http://en.wikipedia.org/wiki/Test_functions_for_optimization) into
// mads.Objectiver black boxes. A few problems additionally emit
// progressive or extreme constraint outputs so the constrained scenarios
// (barrier promotion, extreme infeasibility) have something concrete to
// run against.
package bench

import (
	"context"
	"fmt"
	"math"

	"github.com/rwcarlsen/mads"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

// AllFuncs lists every unconstrained test problem.
var AllFuncs = []Func{
	Ackley{},
	CrossTray{},
	Eggholder{},
	HolderTable{},
	Schaffer2{},
	Styblinski{NDim: 1},
	Styblinski{NDim: 10},
	Styblinski{NDim: 100},
	Styblinski{NDim: 500},
	Rosenbrock{NDim: 2},
	Rosenbrock{NDim: 10},
	Rosenbrock{NDim: 100},
	Rosenbrock{NDim: 500},
}

// AllConstrained lists the constrained test problems, exercising both
// barrier types.
var AllConstrained = []Func{
	DiskConstrained{},
	RingExtreme{},
}

// Func is a benchmark problem: bounds, a known optimum, and a black-box
// evaluation that returns a raw output vector in OutputTypes() order -
// the same shape algo.Driver expects from any mads.Objectiver.
type Func interface {
	// Eval returns the raw black-box output vector for v (objective
	// first, followed by any constraint outputs, per OutputTypes).
	Eval(v []float64) []float64
	OutputTypes() []mads.OutputType
	Bounds() (low, up []float64)
	// Optimum is the known best feasible point and its objective value.
	Optimum() (pos []float64, f float64)
	// Tol is the objective value below which the problem is considered
	// solved.
	Tol() float64
	Name() string
}

// Objectiver adapts a Func into a mads.Objectiver. An out-of-bounds
// query is not evaluated: it gets an objective of +Inf and every
// constraint output set to 1.
func Objectiver(fn Func) mads.Objectiver {
	return mads.ObjectiverFunc(func(ctx context.Context, pos []float64) ([]float64, error) {
		if !InsideBounds(pos, fn) {
			out := make([]float64, len(fn.OutputTypes()))
			for i, t := range fn.OutputTypes() {
				if t == mads.Objective {
					out[i] = math.Inf(1)
				} else {
					out[i] = 1 // any positive value trips progressive/extreme
				}
			}
			return out, nil
		}
		return fn.Eval(pos), nil
	})
}

func InsideBounds(p []float64, fn Func) bool {
	low, up := fn.Bounds()
	for i := range p {
		if p[i] < low[i] || p[i] > up[i] {
			return false
		}
	}
	return true
}

var scalarOutput = []mads.OutputType{mads.Objective}

type Ackley struct{}

func (fn Ackley) Name() string               { return "Ackley" }
func (fn Ackley) OutputTypes() []mads.OutputType { return scalarOutput }

func (fn Ackley) Eval(v []float64) []float64 {
	x, y := v[0], v[1]
	f := -20*math.Exp(-0.2*math.Sqrt(0.5*(x*x+y*y))) -
		math.Exp(0.5*(math.Cos(2*math.Pi*x)+math.Cos(2*math.Pi*y))) +
		20 + math.E
	return []float64{f}
}

func (fn Ackley) Tol() float64 { return .01 }

func (fn Ackley) Bounds() (low, up []float64) {
	return []float64{-5, -5}, []float64{5, 5}
}

func (fn Ackley) Optimum() (pos []float64, f float64) {
	return []float64{0, 0}, 0
}

type CrossTray struct{}

func (fn CrossTray) Name() string               { return "CrossTray" }
func (fn CrossTray) OutputTypes() []mads.OutputType { return scalarOutput }

func (fn CrossTray) Tol() float64 {
	_, f := fn.Optimum()
	return f + math.Abs(f*.01)
}

func (fn CrossTray) Eval(v []float64) []float64 {
	x, y := v[0], v[1]
	f := -.0001 * math.Pow(abs(sin(x)*sin(y)*exp(abs(100-sqrt(x*x+y*y)/math.Pi)))+1, 0.1)
	return []float64{f}
}

func (fn CrossTray) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn CrossTray) Optimum() (pos []float64, f float64) {
	return []float64{1.34941, -1.34941}, -2.06261
}

type Eggholder struct{}

func (fn Eggholder) Name() string               { return "Eggholder" }
func (fn Eggholder) OutputTypes() []mads.OutputType { return scalarOutput }

func (fn Eggholder) Tol() float64 {
	_, f := fn.Optimum()
	return f + math.Abs(f*.01)
}

func (fn Eggholder) Eval(v []float64) []float64 {
	x, y := v[0], v[1]
	f := -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
	return []float64{f}
}

func (fn Eggholder) Bounds() (low, up []float64) {
	return []float64{-512, -512}, []float64{512, 512}
}

func (fn Eggholder) Optimum() (pos []float64, f float64) {
	return []float64{512, 404.2319}, -959.6407
}

type HolderTable struct{}

func (fn HolderTable) Name() string               { return "HolderTable" }
func (fn HolderTable) OutputTypes() []mads.OutputType { return scalarOutput }

func (fn HolderTable) Tol() float64 {
	_, f := fn.Optimum()
	return f + math.Abs(f*.01)
}

func (fn HolderTable) Eval(v []float64) []float64 {
	x, y := v[0], v[1]
	f := -abs(sin(x) * cos(y) * exp(abs(1-sqrt(x*x+y*y)/math.Pi)))
	return []float64{f}
}

func (fn HolderTable) Bounds() (low, up []float64) {
	return []float64{-10, -10}, []float64{10, 10}
}

func (fn HolderTable) Optimum() (pos []float64, f float64) {
	return []float64{8.05502, 9.66459}, -19.2085
}

type Schaffer2 struct{}

func (fn Schaffer2) Tol() float64                { return .01 }
func (fn Schaffer2) Name() string               { return "Schaffer2" }
func (fn Schaffer2) OutputTypes() []mads.OutputType { return scalarOutput }

func (fn Schaffer2) Eval(v []float64) []float64 {
	x, y := v[0], v[1]
	f := 0.5 + (math.Pow(sin(x*x-y*y), 2)-0.5)/math.Pow(1+.0001*(x*x+y*y), 2)
	return []float64{f}
}

func (fn Schaffer2) Bounds() (low, up []float64) {
	return []float64{-100, -100}, []float64{100, 100}
}

func (fn Schaffer2) Optimum() (pos []float64, f float64) {
	return []float64{0, 0}, 0
}

type Styblinski struct {
	NDim int
}

func (fn Styblinski) Name() string               { return fmt.Sprintf("Styblinski_%vD", fn.NDim) }
func (fn Styblinski) OutputTypes() []mads.OutputType { return scalarOutput }

func (fn Styblinski) Tol() float64 {
	_, f := fn.Optimum()
	return f + math.Abs(f*.01)
}

func (fn Styblinski) Eval(x []float64) []float64 {
	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return []float64{tot / 2}
}

func (fn Styblinski) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -5
		up[i] = 5
	}
	return low, up
}

func (fn Styblinski) Optimum() (pos []float64, f float64) {
	pos = make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = -2.903534
	}
	return pos, -39.16617 * float64(fn.NDim)
}

type Rosenbrock struct {
	NDim int
}

func (fn Rosenbrock) Name() string               { return fmt.Sprintf("Rosenbrock_%vD", fn.NDim) }
func (fn Rosenbrock) OutputTypes() []mads.OutputType { return scalarOutput }
func (fn Rosenbrock) Tol() float64               { return float64(fn.NDim) }

func (fn Rosenbrock) Eval(x []float64) []float64 {
	tot1, tot2 := 0.0, 0.0
	for i := 0; i < fn.NDim-1; i++ {
		tot1 += math.Pow(x[i+1]-x[i]*x[i], 2)
		tot2 += math.Pow(x[i]-1, 2)
	}
	return []float64{100*tot1 + tot2}
}

func (fn Rosenbrock) Bounds() (low, up []float64) {
	low = make([]float64, fn.NDim)
	up = make([]float64, fn.NDim)
	for i := range low {
		low[i] = -30
		up[i] = 30
	}
	return low, up
}

func (fn Rosenbrock) Optimum() (pos []float64, f float64) {
	pos = make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = 1
	}
	return pos, 0
}

// DiskConstrained minimizes x+y over the square [-1,1]^2 subject to a
// progressive-barrier disk constraint x^2+y^2-1 <= 0: the unconstrained
// minimum at the corner (-1,-1) is infeasible, forcing the barrier to
// drive the search onto the disk boundary.
type DiskConstrained struct{}

func (fn DiskConstrained) Name() string { return "DiskConstrained" }

func (fn DiskConstrained) OutputTypes() []mads.OutputType {
	return []mads.OutputType{mads.Objective, mads.Progressive}
}

func (fn DiskConstrained) Eval(v []float64) []float64 {
	x, y := v[0], v[1]
	return []float64{x + y, x*x + y*y - 1}
}

func (fn DiskConstrained) Bounds() (low, up []float64) {
	return []float64{-1, -1}, []float64{1, 1}
}

func (fn DiskConstrained) Optimum() (pos []float64, f float64) {
	return []float64{-math.Sqrt2 / 2, -math.Sqrt2 / 2}, -math.Sqrt2
}

func (fn DiskConstrained) Tol() float64 {
	_, f := fn.Optimum()
	return f + math.Abs(f*.05)
}

// RingExtreme minimizes the distance to the origin subject to an
// extreme-barrier annulus constraint 1-(x^2+y^2) <= 0: any point inside
// the unit disk is permanently unusable, so the best feasible point
// lies exactly on the unit circle.
type RingExtreme struct{}

func (fn RingExtreme) Name() string { return "RingExtreme" }

func (fn RingExtreme) OutputTypes() []mads.OutputType {
	return []mads.OutputType{mads.Objective, mads.Extreme}
}

func (fn RingExtreme) Eval(v []float64) []float64 {
	x, y := v[0], v[1]
	r2 := x*x + y*y
	return []float64{math.Sqrt(r2), 1 - r2}
}

func (fn RingExtreme) Bounds() (low, up []float64) {
	return []float64{-3, -3}, []float64{3, 3}
}

func (fn RingExtreme) Optimum() (pos []float64, f float64) {
	return []float64{1, 0}, 1
}

func (fn RingExtreme) Tol() float64 { return 1.05 }
