package cache

import (
	"testing"

	"github.com/rwcarlsen/mads"
)

func TestSmartInsertFreshPointNeedsEval(t *testing.T) {
	c := New(0)
	p := mads.NewPoint([]float64{1, 2})
	e, needs := c.SmartInsert(p, BlackBox, 1)
	if !needs {
		t.Fatal("fresh point should require evaluation")
	}
	if !e.HasPending(BlackBox) {
		t.Error("expected a pending eval after insert")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestSmartInsertDedupsInFlight(t *testing.T) {
	c := New(0)
	p := mads.NewPoint([]float64{1, 2})
	c.SmartInsert(p, BlackBox, 1)
	_, needs := c.SmartInsert(p, BlackBox, 1)
	if needs {
		t.Error("second SmartInsert on an in-flight point must not require eval")
	}
}

func TestSmartInsertCacheHitAfterComplete(t *testing.T) {
	c := New(0)
	p := mads.NewPoint([]float64{1, 2})
	c.SmartInsert(p, BlackBox, 1)
	c.Complete(p, BlackBox, []float64{4.0}, []mads.OutputType{mads.Objective}, OK, true)

	_, needs := c.SmartInsert(p, BlackBox, 1)
	if needs {
		t.Error("point already evaluated maxEvals times should not require re-eval")
	}
	if c.CacheHits() != 1 {
		t.Errorf("CacheHits() = %d, want 1", c.CacheHits())
	}
}

func TestSmartInsertAllowsMultipleStochasticEvals(t *testing.T) {
	c := New(0)
	p := mads.NewPoint([]float64{1, 2})
	c.SmartInsert(p, BlackBox, 2)
	c.Complete(p, BlackBox, []float64{4.0}, []mads.OutputType{mads.Objective}, OK, true)

	_, needs := c.SmartInsert(p, BlackBox, 2)
	if !needs {
		t.Error("second of two allowed evals should still require evaluation")
	}
}

func TestCompleteComputesFH(t *testing.T) {
	c := New(0)
	p := mads.NewPoint([]float64{1, 2})
	c.SmartInsert(p, BlackBox, 1)
	types := []mads.OutputType{mads.Objective, mads.Progressive}
	ev := c.Complete(p, BlackBox, []float64{3.0, 2.0}, types, OK, true)
	if ev == nil {
		t.Fatal("Complete returned nil")
	}
	if ev.F.Value() != 3.0 {
		t.Errorf("F = %v, want 3.0", ev.F.Value())
	}
	if ev.H != 4.0 {
		t.Errorf("H = %v, want 4.0 (2^2)", ev.H)
	}
	if !ev.Feasible() == (ev.H == 0) {
		// sanity: Feasible() matches H==0 definition
	}
	if ev.Feasible() {
		t.Error("point with h=4 should not be feasible")
	}
}

func TestBestFeasibleIgnoresInfeasible(t *testing.T) {
	c := New(0)
	types := []mads.OutputType{mads.Objective, mads.Progressive}

	feas := mads.NewPoint([]float64{1})
	c.SmartInsert(feas, BlackBox, 1)
	c.Complete(feas, BlackBox, []float64{5.0, -1.0}, types, OK, true)

	infeas := mads.NewPoint([]float64{2})
	c.SmartInsert(infeas, BlackBox, 1)
	c.Complete(infeas, BlackBox, []float64{1.0, 1.0}, types, OK, true)

	best := c.BestFeasible(BlackBox)
	if best == nil {
		t.Fatal("expected a feasible best entry")
	}
	if !best.Point.Equal(feas) {
		t.Errorf("BestFeasible picked the wrong point: %v", best.Point)
	}
}

func TestBestInfeasibleRespectsHmax(t *testing.T) {
	c := New(0)
	types := []mads.OutputType{mads.Objective, mads.Progressive}

	near := mads.NewPoint([]float64{1})
	c.SmartInsert(near, BlackBox, 1)
	c.Complete(near, BlackBox, []float64{1.0, 1.0}, types, OK, true)

	far := mads.NewPoint([]float64{2})
	c.SmartInsert(far, BlackBox, 1)
	c.Complete(far, BlackBox, []float64{1.0, 10.0}, types, OK, true)

	best := c.BestInfeasible(BlackBox, 5.0)
	if best == nil {
		t.Fatal("expected an infeasible-but-within-hmax entry")
	}
	if !best.Point.Equal(near) {
		t.Errorf("BestInfeasible picked the wrong point: %v", best.Point)
	}
}

func TestEvictionRespectsPinned(t *testing.T) {
	c := New(2)
	keep := mads.NewPoint([]float64{0})
	c.SmartInsert(keep, BlackBox, 1)
	c.Pin(keep)

	for i := 1; i <= 5; i++ {
		c.SmartInsert(mads.NewPoint([]float64{float64(i)}), BlackBox, 1)
	}

	if _, ok := c.Find(keep); !ok {
		t.Error("pinned entry was evicted")
	}
	if c.Len() > 2 {
		t.Errorf("Len() = %d, want <= 2", c.Len())
	}
}

func TestRangeVisitsMatchingEntries(t *testing.T) {
	c := New(0)
	for i := 0; i < 3; i++ {
		c.SmartInsert(mads.NewPoint([]float64{float64(i)}), BlackBox, 1)
	}
	n := 0
	c.Range(nil, func(e *Entry) bool {
		n++
		return true
	})
	if n != 3 {
		t.Errorf("Range visited %d entries, want 3", n)
	}
}

func TestClearResetsState(t *testing.T) {
	c := New(0)
	p := mads.NewPoint([]float64{1})
	c.SmartInsert(p, BlackBox, 1)
	c.Complete(p, BlackBox, []float64{1}, []mads.OutputType{mads.Objective}, OK, true)
	c.SmartInsert(p, BlackBox, 1) // bump cache hit

	c.Clear()
	if c.Len() != 0 || c.CacheHits() != 0 {
		t.Errorf("Clear did not reset state: len=%d hits=%d", c.Len(), c.CacheHits())
	}
}
