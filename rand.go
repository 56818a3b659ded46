package mads

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Rand is the package-wide deterministic random source. Replacing it
// (e.g. rand.New(rand.NewSource(seed))) is how SEED reproducibility
// (spec TESTABLE PROPERTIES #7) is obtained - the same idiom as the
// Baaaaam-optim/pop/pop.go's pop.Rand.
var Rand = rand.New(rand.NewSource(1))

// Seed reseeds the package-wide random source, as the SEED option does
// (spec EXTERNAL INTERFACES).
func Seed(seed int64) { Rand = rand.New(rand.NewSource(seed)) }

// RandFloat returns a uniform random value in [0, 1) from Rand.
func RandFloat() float64 { return Rand.Float64() }

// RandDirectionOnSphere draws a direction vector uniformly distributed
// on the unit sphere in n dimensions, used to seed the orthogonal poll
// basis (spec 4.5 Poll, Orthogonal-2n).
func RandDirectionOnSphere(n int) []float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: Rand}
	v := make([]float64, n)
	sumsq := 0.0
	for i := range v {
		v[i] = norm.Rand()
		sumsq += v[i] * v[i]
	}
	mag := math.Sqrt(sumsq)
	if mag == 0 {
		v[0] = 1
		return v
	}
	for i := range v {
		v[i] /= mag
	}
	return v
}
