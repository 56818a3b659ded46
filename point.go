package mads

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Point is an ordered tuple of n extended reals. Points are small
// value objects, passed and compared by value the same way
// Baaaaam-optim/pattern/pattern.go's optim.Point is.
type Point struct {
	coords []Float
}

// NewPoint builds a fully-defined Point from plain float64 coordinates.
func NewPoint(pos []float64) Point {
	coords := make([]Float, len(pos))
	for i, v := range pos {
		coords[i] = Def(v)
	}
	return Point{coords: coords}
}

// NewPointFrom builds a Point from a slice of extended reals, some of
// which may be Undefined (fixed-out-of-subproblem coordinates).
func NewPointFrom(coords []Float) Point {
	cp := make([]Float, len(coords))
	copy(cp, coords)
	return Point{coords: cp}
}

// Len returns the number of coordinates.
func (p Point) Len() int { return len(p.coords) }

// At returns the extended real at dimension i.
func (p Point) At(i int) Float { return p.coords[i] }

// Values returns the defined coordinates as a plain float64 slice.
// Panics if any coordinate is undefined - callers operating in full
// dimension must not carry fixed variables through to evaluation.
func (p Point) Values() []float64 {
	out := make([]float64, len(p.coords))
	for i, c := range p.coords {
		out[i] = c.Value()
	}
	return out
}

// With returns a copy of p with dimension i set to v.
func (p Point) With(i int, v Float) Point {
	cp := make([]Float, len(p.coords))
	copy(cp, p.coords)
	cp[i] = v
	return Point{coords: cp}
}

// Equal reports coordinate-wise exact equality on defined entries, per
// spec DATA MODEL "Point". Points of different length are never equal.
func (p Point) Equal(o Point) bool {
	if len(p.coords) != len(o.coords) {
		return false
	}
	for i := range p.coords {
		a, b := p.coords[i], o.coords[i]
		if a.IsDefined() != b.IsDefined() {
			return false
		}
		if a.IsDefined() && !a.Equal(b) {
			return false
		}
	}
	return true
}

// Hash returns a content-addressed digest suitable for cache keys. It
// is exact (not a statistical approximation) - two equal points always
// hash the same and the cache never collapses distinct points, since
// the cache's at-most-one-evaluation guarantee (spec C3) depends on it.
func (p Point) Hash() [sha1.Size]byte {
	h := sha1.New()
	buf := make([]byte, 9)
	for _, c := range p.coords {
		if c.IsDefined() {
			buf[0] = 1
			binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(c.Value()))
		} else {
			buf[0] = 0
			for i := 1; i < 9; i++ {
				buf[i] = 0
			}
		}
		h.Write(buf)
	}
	var out [sha1.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (p Point) String() string {
	parts := make([]string, len(p.coords))
	for i, c := range p.coords {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Clamp returns a copy of p with every defined coordinate clipped into
// [lb[i], ub[i]]. An undefined bound entry means unbounded in that
// direction (spec DATA MODEL "Bounds").
func Clamp(p Point, lb, ub []Float) Point {
	cp := make([]Float, p.Len())
	for i, c := range p.coords {
		if !c.IsDefined() {
			cp[i] = c
			continue
		}
		v := c.Value()
		if lb != nil && lb[i].IsDefined() && v < lb[i].Value() {
			v = lb[i].Value()
		}
		if ub != nil && ub[i].IsDefined() && v > ub[i].Value() {
			v = ub[i].Value()
		}
		cp[i] = Def(v)
	}
	return Point{coords: cp}
}

// L2Dist returns the Euclidean distance between a and b over the
// coordinates defined in both. Dimensions fixed out of the subproblem
// on either side are skipped rather than treated as a mismatch.
func L2Dist(a, b Point) float64 {
	if a.Len() != b.Len() {
		panic(fmt.Sprintf("mads: L2Dist dimension mismatch %d != %d", a.Len(), b.Len()))
	}
	tot := 0.0
	for i := range a.coords {
		ca, cb := a.coords[i], b.coords[i]
		if !ca.IsDefined() || !cb.IsDefined() {
			continue
		}
		d := ca.Value() - cb.Value()
		tot += d * d
	}
	return math.Sqrt(tot)
}

// Add returns the coordinate-wise sum a+b over defined dimensions.
func Add(a, b Point) Point {
	cp := make([]Float, a.Len())
	for i := range a.coords {
		if a.coords[i].IsDefined() && b.coords[i].IsDefined() {
			cp[i] = Def(a.coords[i].Value() + b.coords[i].Value())
		}
	}
	return Point{coords: cp}
}

// Scale returns a copy of p with every defined coordinate multiplied by k.
func Scale(p Point, k float64) Point {
	cp := make([]Float, p.Len())
	for i, c := range p.coords {
		if c.IsDefined() {
			cp[i] = Def(c.Value() * k)
		}
	}
	return Point{coords: cp}
}
