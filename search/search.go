// Package search implements the search step (spec component C7): a
// pluggable Method tried before poll each iteration, plus a handful of
// concrete strategies.
//
// Method generalizes Baaaaam-optim/pattern/pattern.go's Searcher
// interface (Searcher/NullSearcher/
// WrapSearcher) from optim.Point/optim.Mesh to mads.Point/mesh.State.
package search

import (
	"context"
	"math"

	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/mesh"
	"gonum.org/v1/gonum/stat/distuv"
)

// Objective evaluates a single candidate point, returning its f and h
// as already folded by cache/barrier bookkeeping - search strategies
// only need to compare these, not the raw black-box output.
type Objective func(ctx context.Context, p mads.Point) (f mads.Float, h float64, err error)

// Method is one pluggable search strategy (spec 4.6). Search proposes
// trial points around center and reports whether any improved on
// (curF, curH); on success it returns the improving point.
type Method interface {
	Search(ctx context.Context, obj Objective, m *mesh.State, center mads.Point, curF mads.Float, curH float64) (success bool, best mads.Point, nEval int, err error)
}

// Null never proposes any points - the generalized NullSearcher,
// used when SEARCH is disabled (spec's Non-goal default).
type Null struct{}

func (Null) Search(ctx context.Context, obj Objective, m *mesh.State, center mads.Point, curF mads.Float, curH float64) (bool, mads.Point, int, error) {
	return false, center, 0, nil
}

func better(f mads.Float, h float64, curF mads.Float, curH float64) bool {
	if h > curH {
		return false
	}
	if h < curH {
		return true
	}
	return f.Or(math.Inf(1)) < curF.Or(math.Inf(1))
}

// Speculative tries one extra trial point beyond the most recent poll
// success, doubling the last successful step along the same direction
// (spec 4.6's speculative search, triggered by a successful poll).
type Speculative struct {
	LastDirection []float64
}

func (s *Speculative) Search(ctx context.Context, obj Objective, m *mesh.State, center mads.Point, curF mads.Float, curH float64) (bool, mads.Point, int, error) {
	if len(s.LastDirection) == 0 {
		return false, center, 0, nil
	}
	frame := m.FrameSize()
	pos := make([]float64, center.Len())
	for i := range pos {
		pos[i] = center.At(i).Value() + 2*s.LastDirection[i]*frame[i]
	}
	p := mads.NewPoint(m.Nearest(pos))
	f, h, err := obj(ctx, p)
	if err != nil {
		return false, center, 1, err
	}
	if better(f, h, curF, curH) {
		return true, p, 1, nil
	}
	return false, center, 1, nil
}

// LatinHypercube samples Samples stratified points within [Lb, Ub]
// each call, independent of the current frame, and snaps them to the
// mesh (spec 4.6's global-exploration
// search option). Stratification follows the same stats-driven
// sampling idiom used elsewhere in the
// pack for distribution sampling, e.g. swarm velocity jitter).
type LatinHypercube struct {
	Samples int
	Lb, Ub  []float64
}

func (l *LatinHypercube) Search(ctx context.Context, obj Objective, m *mesh.State, center mads.Point, curF mads.Float, curH float64) (bool, mads.Point, int, error) {
	n := center.Len()
	if l.Samples <= 0 || len(l.Lb) != n || len(l.Ub) != n {
		return false, center, 0, nil
	}
	unif := distuv.Uniform{Min: 0, Max: 1, Src: mads.Rand}
	cols := make([][]float64, n)
	for d := 0; d < n; d++ {
		perm := mads.Rand.Perm(l.Samples)
		col := make([]float64, l.Samples)
		for i, bucket := range perm {
			col[i] = (float64(bucket) + unif.Rand()) / float64(l.Samples)
		}
		cols[d] = col
	}

	neval := 0
	bestF, bestH := curF, curH
	bestPt := center
	improved := false
	for s := 0; s < l.Samples; s++ {
		pos := make([]float64, n)
		for d := 0; d < n; d++ {
			pos[d] = l.Lb[d] + cols[d][s]*(l.Ub[d]-l.Lb[d])
		}
		p := mads.NewPoint(m.Nearest(pos))
		f, h, err := obj(ctx, p)
		neval++
		if err != nil {
			return improved, bestPt, neval, err
		}
		if better(f, h, bestF, bestH) {
			bestF, bestH, bestPt, improved = f, h, p, true
		}
	}
	return improved, bestPt, neval, nil
}

// ModelSearch proposes the minimizer of a quadratic surrogate fit over
// recently cached points (spec 4.6's quadratic-model search hook). The
// coefficient fit itself is supplied by Fit so this type stays
// agnostic to which cache entries feed it; there is no built-in
// trust-region model manager. The candidate Fit returns is snapped to
// the mesh and evaluated once.
type ModelSearch struct {
	Fit func(center mads.Point) (mads.Point, bool)
}

func (m2 *ModelSearch) Search(ctx context.Context, obj Objective, m *mesh.State, center mads.Point, curF mads.Float, curH float64) (bool, mads.Point, int, error) {
	if m2.Fit == nil {
		return false, center, 0, nil
	}
	cand, ok := m2.Fit(center)
	if !ok {
		return false, center, 0, nil
	}
	snapped := mads.NewPoint(m.Nearest(cand.Values()))
	f, h, err := obj(ctx, snapped)
	if err != nil {
		return false, center, 1, err
	}
	if better(f, h, curF, curH) {
		return true, snapped, 1, nil
	}
	return false, center, 1, nil
}
