package persist

import (
	"path/filepath"
	"testing"

	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/barrier"
	"github.com/rwcarlsen/mads/cache"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	c := cache.New(0)
	p := mads.NewPoint([]float64{1, 2})
	c.SmartInsert(p, cache.BlackBox, 1)
	c.Complete(p, cache.BlackBox, []float64{3.5, -1.0}, []mads.OutputType{mads.Objective, mads.Progressive}, cache.OK, true)

	if err := s.WriteCache(c); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadCache()
	if err != nil {
		t.Fatal(err)
	}
	e, ok := got.Find(p)
	if !ok {
		t.Fatal("restored cache missing the written point")
	}
	ev := e.Latest(cache.BlackBox)
	if ev == nil || ev.F.Value() != 3.5 {
		t.Errorf("restored F = %+v, want 3.5", ev)
	}
}

func TestRestartRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restart.db")
	s, err := Open(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	want := RestartState{
		Niter:       42,
		Seed:        7,
		Hmax:        3.25,
		MeshIndices: []int{-2, 0, 3},
		XStar:       &barrier.Candidate{Pos: mads.NewPoint([]float64{1}), F: mads.Def(0.5), H: 0},
		XZero:       &barrier.Candidate{Pos: mads.NewPoint([]float64{2}), F: mads.Def(0.9), H: 1.2},
	}
	if err := s.WriteRestart(want); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.ReadRestart()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a restored snapshot")
	}
	if got.Niter != want.Niter || got.Seed != want.Seed || got.Hmax != want.Hmax {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.MeshIndices) != len(want.MeshIndices) {
		t.Fatalf("MeshIndices = %v, want %v", got.MeshIndices, want.MeshIndices)
	}
	for i := range want.MeshIndices {
		if got.MeshIndices[i] != want.MeshIndices[i] {
			t.Errorf("MeshIndices[%d] = %d, want %d", i, got.MeshIndices[i], want.MeshIndices[i])
		}
	}
	if got.XStar == nil || got.XStar.F.Value() != 0.5 {
		t.Errorf("XStar not restored correctly: %+v", got.XStar)
	}
	if got.XZero == nil || got.XZero.H != 1.2 {
		t.Errorf("XZero not restored correctly: %+v", got.XZero)
	}
}

func TestReadRestartNoSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	s, err := Open(path, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, ok, err := s.ReadRestart()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected ok=false when no snapshot was ever written")
	}
}
