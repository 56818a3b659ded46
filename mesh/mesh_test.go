package mesh

import (
	"testing"

	"github.com/rwcarlsen/mads"
)

type nearestCase struct {
	pos, exp []float64
}

func TestNearestContinuous(t *testing.T) {
	// With granularity 0 and an initial frame of 1.3, the baseline mesh
	// size at index 0 is 1.3 - same shape of table as
	// Baaaaam-optim/pattern/mesh/mesh_test.go.
	cases := []nearestCase{
		{pos: []float64{0.1, 0.1}, exp: []float64{0.0, 0.0}},
		{pos: []float64{1.0, 1.0}, exp: []float64{1.3, 1.3}},
		{pos: []float64{1.9, 1.9}, exp: []float64{1.3, 1.3}},
	}

	for i, c := range cases {
		s := New(2, []float64{0, 0}, []float64{1.3, 1.3})
		got := s.Nearest(c.pos)
		for j := range got {
			if diffTol(got[j], c.exp[j]) > 1 {
				t.Errorf("case %d: v[%d]=%v got %v want %v", i, j, c.pos[j], got[j], c.exp[j])
			}
		}
	}
}

func TestGranularFloor(t *testing.T) {
	s := New(1, []float64{0.5}, nil)
	for i := 0; i < 5; i++ {
		s.Refine()
	}
	if got := s.MeshSize()[0]; got != 0.5 {
		t.Errorf("granular mesh size drifted below granularity: got %v, want 0.5", got)
	}
	if !s.MinMeshReached() {
		t.Error("expected min mesh reached on granular coordinate after repeated refine")
	}
}

func TestRefineEnlargeRatio(t *testing.T) {
	s := New(1, []float64{0}, []float64{1})
	for k := 1; k <= 3; k++ {
		s.Refine()
		delta := s.MeshSize()[0]
		capital := s.FrameSize()[0]
		ratio := capital / delta
		want := pow(DefaultBase, float64(k))
		if diffTol(ratio, want) > 4 {
			t.Errorf("after %d refinements: ratio=%v want=%v", k, ratio, want)
		}
	}
}

func TestEnlargeNeverDropsBelowMeshSize(t *testing.T) {
	s := New(1, []float64{0}, []float64{1})
	for i := 0; i < 3; i++ {
		s.Enlarge(nil)
	}
	if s.MeshSize()[0] > s.FrameSize()[0] {
		t.Errorf("delta > Delta after enlarge: %v > %v", s.MeshSize()[0], s.FrameSize()[0])
	}
}

func TestAnisotropicEnlargeSkipsSmallDirections(t *testing.T) {
	s := New(2, []float64{0, 0}, []float64{1, 1}, Anisotropic(0.1))
	before := s.FrameSize()
	s.Enlarge([]float64{0.01, 5})
	after := s.FrameSize()
	if after[0] != before[0] {
		t.Errorf("coordinate 0 should not have enlarged: before=%v after=%v", before[0], after[0])
	}
	if after[1] <= before[1] {
		t.Errorf("coordinate 1 should have enlarged: before=%v after=%v", before[1], after[1])
	}
}

func TestProjectClipsToBounds(t *testing.T) {
	s := New(1, []float64{0}, []float64{1})
	lb := []mads.Float{mads.Def(-1)}
	ub := []mads.Float{mads.Def(1)}
	p := mads.NewPoint([]float64{5})
	got := s.Project(p, lb, ub)
	if got.At(0).Value() != 1 {
		t.Errorf("Project did not clip to upper bound: got %v", got.At(0).Value())
	}
}

func TestProjectIdempotent(t *testing.T) {
	s := New(3, []float64{0, 0.25, 1}, []float64{2, 0, 0})
	p := mads.NewPoint([]float64{1.73, 2.0, -3.4})
	once := s.Project(p, nil, nil)
	twice := s.Project(once, nil, nil)
	if !once.Equal(twice) {
		t.Errorf("Project not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestFixedCoordinatePassesThrough(t *testing.T) {
	s := New(2, []float64{0, 0}, []float64{1, 1}, Fixed(1))
	s.SetOrigin([]float64{0, 42})
	got := s.Nearest([]float64{7.3, 999})
	if got[1] != 42 {
		t.Errorf("fixed coordinate changed: got %v, want origin value 42", got[1])
	}
}

func pow(b, e float64) float64 {
	r := 1.0
	for i := 0; i < int(e); i++ {
		r *= b
	}
	return r
}

func diffTol(x, y float64) uint64 {
	// Tolerance check in the spirit of
	// Baaaaam-optim/pattern/mesh/mesh_test.go's DiffInUlps table-driven
	// comparisons.
	d := x - y
	if d < 0 {
		d = -d
	}
	if d < 1e-9 {
		return 0
	}
	return 1 << 40
}
