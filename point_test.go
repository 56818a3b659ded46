package mads

import (
	"math"
	"testing"
)

func TestPointEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Point
		want bool
	}{
		{"equal", NewPoint([]float64{1, 2, 3}), NewPoint([]float64{1, 2, 3}), true},
		{"differ", NewPoint([]float64{1, 2, 3}), NewPoint([]float64{1, 2, 4}), false},
		{"diff-len", NewPoint([]float64{1, 2}), NewPoint([]float64{1, 2, 3}), false},
		{
			"matching-undefined-equal",
			NewPointFrom([]Float{Undefined, Def(2)}),
			NewPointFrom([]Float{Undefined, Def(2)}),
			true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Equal(c.b); got != c.want {
				t.Errorf("Equal() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestPointHashStable(t *testing.T) {
	a := NewPoint([]float64{1, 2, 3})
	b := NewPoint([]float64{1, 2, 3})
	c := NewPoint([]float64{1, 2, 3.0000001})

	if a.Hash() != b.Hash() {
		t.Error("equal points hashed differently")
	}
	if a.Hash() == c.Hash() {
		t.Error("distinct points hashed the same")
	}
}

func TestL2Dist(t *testing.T) {
	a := NewPoint([]float64{0, 0})
	b := NewPoint([]float64{3, 4})
	if got := L2Dist(a, b); got != 5 {
		t.Errorf("L2Dist = %v, want 5", got)
	}
}

func TestL2DistSkipsUndefined(t *testing.T) {
	a := NewPointFrom([]Float{Def(0), Undefined})
	b := NewPointFrom([]Float{Def(3), Def(100)})
	if got := L2Dist(a, b); got != 3 {
		t.Errorf("L2Dist = %v, want 3", got)
	}
}

func TestClamp(t *testing.T) {
	p := NewPoint([]float64{-5, 5, 0})
	lb := []Float{Def(0), Undefined, Def(-1)}
	ub := []Float{Def(10), Def(1), Undefined}
	got := Clamp(p, lb, ub)
	want := []float64{0, 1, 0}
	for i, w := range want {
		if got.At(i).Value() != w {
			t.Errorf("Clamp()[%d] = %v, want %v", i, got.At(i).Value(), w)
		}
	}
}

func TestRandDirectionOnSphereUnitNorm(t *testing.T) {
	Seed(42)
	for i := 0; i < 20; i++ {
		d := RandDirectionOnSphere(5)
		sumsq := 0.0
		for _, v := range d {
			sumsq += v * v
		}
		if math.Abs(sumsq-1) > 1e-9 {
			t.Errorf("direction not unit norm: sum of squares = %v", sumsq)
		}
	}
}

func TestOrthonormalBasisOrthogonal(t *testing.T) {
	dir := []float64{1, 0, 0}
	cols := OrthonormalBasis(dir)
	if len(cols) != 3 {
		t.Fatalf("expected 3 basis columns, got %d", len(cols))
	}
	for i := range cols {
		for j := i + 1; j < len(cols); j++ {
			if d := dot(cols[i], cols[j]); math.Abs(d) > 1e-9 {
				t.Errorf("columns %d,%d not orthogonal: dot=%v", i, j, d)
			}
		}
	}
}
