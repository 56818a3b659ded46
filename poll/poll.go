// Package poll generates MADS polling direction sets (spec component
// C6): frame-centered trial points along a positive spanning set of
// directions scaled by the current mesh/frame sizes.
//
// It generalizes Baaaaam-optim/pattern/pattern.go's integer compass
// directions (Compass2N/CompassNp1/RandomN SpanFuncs, which only ever
// return unit coordinate vectors) to real,
// Delta-scaled directions built from an orthonormal basis (spec 4.5's
// "2n positive basis" and "n+1 minimal basis" construction), using
// mads.OrthonormalBasis/mads.RandDirectionOnSphere in place of integer
// coordinate perturbation.
package poll

import (
	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/mesh"
)

// Directions returns a set of poll directions (unscaled;
// callers scale by frame size before adding to the center). The
// generalized equivalent of pattern.go's SpanFunc.
type Directions func(ndim int) [][]float64

// Orthogonal2N returns 2n directions forming an orthogonal positive
// basis: +/- each column of a random orthonormal basis (spec 4.5's
// "2n" poll set; generalizes Compass2N from axis-aligned compass
// directions to an arbitrary orthonormal frame).
func Orthogonal2N(ndim int) [][]float64 {
	seed := make([]float64, ndim)
	seed[0] = 1
	if ndim > 0 {
		seed = mads.RandDirectionOnSphere(ndim)
	}
	basis := mads.OrthonormalBasis(seed)
	dirs := make([][]float64, 0, 2*ndim)
	for _, col := range basis {
		dirs = append(dirs, col)
		neg := make([]float64, ndim)
		for i, v := range col {
			neg[i] = -v
		}
		dirs = append(dirs, neg)
	}
	perm := mads.Rand.Perm(len(dirs))
	out := make([][]float64, len(dirs))
	for i, p := range perm {
		out[p] = dirs[i]
	}
	return out
}

// OrthogonalNp1 returns a minimal positive basis of n+1 directions:
// n directions from a random orthonormal basis (signs randomized per
// direction) plus their negated sum, so every row sums to zero
// (spec 4.5's "n+1" poll set; generalizes CompassNp1, which builds
// the same shape from +/-1 integer coordinates).
func OrthogonalNp1(ndim int) [][]float64 {
	seed := mads.RandDirectionOnSphere(ndim)
	basis := mads.OrthonormalBasis(seed)
	dirs := make([][]float64, 0, ndim+1)
	sum := make([]float64, ndim)
	for i := 0; i < ndim; i++ {
		d := make([]float64, ndim)
		sign := 1.0
		if mads.Rand.Intn(2) == 0 {
			sign = -1.0
		}
		for j := range d {
			d[j] = sign * basis[i][j]
			sum[j] += d[j]
		}
		dirs = append(dirs, d)
	}
	final := make([]float64, ndim)
	for j := range final {
		final[j] = -sum[j]
	}
	dirs = append(dirs, final)
	// poll the diagonal (sum) direction first, the same way CompassNp1
	// swaps it to index 0.
	dirs[0], dirs[len(dirs)-1] = dirs[len(dirs)-1], dirs[0]
	return dirs
}

// RandomExtra returns n additional directions outside the compass set
// (spec 4.5's optional extra exploratory directions; generalizes
// RandomN from integer to real unit directions).
func RandomExtra(n int) Directions {
	return func(ndim int) [][]float64 {
		if ndim <= 1 {
			return nil
		}
		dirs := make([][]float64, 0, n)
		for len(dirs) < n {
			dirs = append(dirs, mads.RandDirectionOnSphere(ndim))
		}
		return dirs
	}
}

// TrialPoints evaluates span at the given dimension and converts each
// direction into a concrete trial point: center + (frame size) * dir,
// snapped to the mesh (spec 4.5: "poll points lie on the mesh").
func TrialPoints(center mads.Point, m *mesh.State, span Directions) []mads.Point {
	ndim := center.Len()
	dirs := span(ndim)
	pts := make([]mads.Point, 0, len(dirs))
	frame := m.FrameSize()
	pos := make([]float64, ndim)
	for _, d := range dirs {
		for i := 0; i < ndim; i++ {
			pos[i] = center.At(i).Value() + d[i]*frame[i]
		}
		snapped := m.Nearest(pos)
		pts = append(pts, mads.NewPoint(snapped))
	}
	return pts
}
