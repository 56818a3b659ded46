// Package barrier implements the progressive barrier (spec component
// C4): the pair of incumbents (best feasible x star, best infeasible
// x zero) and the hmax threshold that separates "in play" infeasible
// points from ones the barrier has ruled out.
//
// It generalizes Baaaaam-optim/pattern/pattern.go's single best-point
// tracking (Method.Curr/AddPoint, which only ever compares objective
// values) into the two-incumbent structure a progressive barrier
// needs, following the feasible/infeasible split of
// original_source/src/Algos/DMultiMads/DMultiMadsBarrier.cpp.
package barrier

import (
	"math"
	"sync"

	"github.com/rwcarlsen/mads"
)

// Classification is the outcome of folding one evaluated point into
// the barrier (spec 4.2).
type Classification int

const (
	// Unsuccessful means the point improved neither incumbent.
	Unsuccessful Classification = iota
	// PartialSuccess means the point replaced the infeasible incumbent
	// with a strictly lower h at the cost of a higher f; hmax is unchanged.
	PartialSuccess
	// FullSuccess means the point is feasible and strictly improves the
	// feasible incumbent's objective, or is infeasible and either
	// dominates the infeasible incumbent or is the first infeasible point.
	FullSuccess
)

func (c Classification) String() string {
	switch c {
	case FullSuccess:
		return "full-success"
	case PartialSuccess:
		return "partial-success"
	default:
		return "unsuccessful"
	}
}

// Candidate is the minimal evaluated-point view the barrier needs: a
// position, its objective value and constraint violation measure.
// cache.Eval/cache.Entry pairs satisfy this via the Point/F/H fields.
type Candidate struct {
	Pos mads.Point
	F   mads.Float
	H   float64
}

// Barrier holds the progressive-barrier state for one run (spec 4.2):
// the best feasible incumbent x star, the best infeasible incumbent
// x zero, and the monotonically non-increasing hmax threshold.
type Barrier struct {
	mu sync.RWMutex

	xStar   *Candidate
	xZero   *Candidate
	hmax    float64
	hmaxSet bool
}

// New builds a Barrier. initHmax is the initial hmax (spec's H_MAX_0
// parameter); use math.Inf(1) to start with every infeasible point in
// play.
func New(initHmax float64) *Barrier {
	return &Barrier{hmax: initHmax, hmaxSet: true}
}

// Hmax returns the current threshold.
func (b *Barrier) Hmax() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hmax
}

// XStar returns the best feasible incumbent, or nil if none exists yet.
func (b *Barrier) XStar() *Candidate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.xStar
}

// XZero returns the best infeasible (but within hmax) incumbent, or
// nil if none exists yet.
func (b *Barrier) XZero() *Candidate {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.xZero
}

// Update folds one evaluated candidate into the barrier and returns
// its classification (spec 4.2). Points with h > hmax, and points with
// h = +Inf (an extreme-barrier violation) regardless of hmax, are
// rejected outright (Unsuccessful) and never become an incumbent -
// this is what keeps hmax monotone non-increasing and keeps permanently
// unusable points out of the barrier entirely.
//
// Among infeasible candidates, one that dominates x zero (f <= f(x
// zero) and h <= h(x zero), at least one strict) is a full success: it
// replaces x zero and hmax shrinks to the prior incumbent's h, per the
// progressive barrier's central narrowing invariant. One that only
// trades a lower h for a worse f is a partial success: it replaces x
// zero but hmax is untouched. The first infeasible point ever seen
// trivially becomes x zero as a full success, since there is no prior
// incumbent to shrink hmax against. Anything that improves neither
// measure is Unsuccessful.
func (b *Barrier) Update(c Candidate) Classification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if math.IsInf(c.H, 1) || c.H > b.hmax {
		return Unsuccessful
	}

	if c.H == 0 {
		if b.xStar == nil || c.F.Value() < b.xStar.F.Value() {
			cc := c
			b.xStar = &cc
			return FullSuccess
		}
		return Unsuccessful
	}

	if b.xZero == nil {
		cc := c
		b.xZero = &cc
		return FullSuccess
	}

	// Dominates x zero (f <= f(x zero) and h <= h(x zero), one strict):
	// full success, and hmax shrinks to the violation the dominated
	// incumbent carried (spec 4.2's "hmax shrinks to the previous
	// h(x zero)").
	dominates := c.H <= b.xZero.H && c.F.Value() <= b.xZero.F.Value() &&
		(c.H < b.xZero.H || c.F.Value() < b.xZero.F.Value())
	// Improves h at the cost of f: partial success, hmax unchanged.
	improves := c.H < b.xZero.H && c.F.Value() > b.xZero.F.Value()

	if dominates {
		prevH := b.xZero.H
		cc := c
		b.xZero = &cc
		if prevH < b.hmax {
			b.hmax = prevH
		}
		return FullSuccess
	}
	if improves {
		cc := c
		b.xZero = &cc
		return PartialSuccess
	}
	return Unsuccessful
}

// PromoteOnFeasibility tightens hmax down to the best infeasible
// incumbent's violation, shrinking the set of infeasible points still
// in play (spec 4.2's progressive narrowing). It does not look for a
// feasible point itself; the Mega-Iteration calls it after any full
// success. It is a no-op when x zero is nil or h(x zero) >= hmax.
func (b *Barrier) PromoteOnFeasibility() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.xZero != nil && b.xZero.H < b.hmax {
		b.hmax = b.xZero.H
	}
}

// SetHmax forcibly sets the threshold, e.g. when restoring a snapshot
// (package persist) or reacting to a REDESIGN FLAG's reset-on-restart
// rule. It never allows hmax to increase, preserving the monotone
// invariant.
func (b *Barrier) SetHmax(h float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h < b.hmax {
		b.hmax = h
	}
}

// Reset clears both incumbents and widens hmax back to +Inf, leaving
// the Barrier as New(math.Inf(1)) builds it.
func (b *Barrier) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.xStar = nil
	b.xZero = nil
	b.hmax = math.Inf(1)
}
