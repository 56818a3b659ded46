package barrier

import (
	"math"
	"testing"

	"github.com/rwcarlsen/mads"
)

func cand(x, f, h float64) Candidate {
	return Candidate{Pos: mads.NewPoint([]float64{x}), F: mads.Def(f), H: h}
}

func TestUpdateFullSuccessOnFirstFeasible(t *testing.T) {
	b := New(math.Inf(1))
	cl := b.Update(cand(1, 3.0, 0))
	if cl != FullSuccess {
		t.Errorf("got %v, want FullSuccess", cl)
	}
	if b.XStar() == nil || b.XStar().F.Value() != 3.0 {
		t.Errorf("xStar not set correctly: %+v", b.XStar())
	}
}

func TestUpdateRejectsWorseFeasible(t *testing.T) {
	b := New(math.Inf(1))
	b.Update(cand(1, 3.0, 0))
	cl := b.Update(cand(2, 5.0, 0))
	if cl != Unsuccessful {
		t.Errorf("got %v, want Unsuccessful", cl)
	}
	if b.XStar().F.Value() != 3.0 {
		t.Error("xStar should not have regressed")
	}
}

func TestUpdateFullSuccessOnFirstInfeasible(t *testing.T) {
	b := New(math.Inf(1))
	cl := b.Update(cand(1, 3.0, 2.0))
	if cl != FullSuccess {
		t.Errorf("got %v, want FullSuccess for the first infeasible incumbent", cl)
	}
	if b.XZero() == nil || b.XZero().H != 2.0 {
		t.Errorf("xZero not set correctly: %+v", b.XZero())
	}
}

func TestUpdatePartialSuccessWhenHImprovesButFWorsens(t *testing.T) {
	b := New(math.Inf(1))
	b.Update(cand(1, 3.0, 2.0))
	cl := b.Update(cand(2, 10.0, 1.0))
	if cl != PartialSuccess {
		t.Errorf("got %v, want PartialSuccess for lower h but worse f", cl)
	}
	if b.XZero().H != 1.0 {
		t.Errorf("xZero.H = %v, want 1.0", b.XZero().H)
	}
	if b.Hmax() != math.Inf(1) {
		t.Errorf("Hmax() = %v, partial success must not shrink hmax", b.Hmax())
	}
}

func TestUpdateFullSuccessWhenInfeasibleDominates(t *testing.T) {
	b := New(math.Inf(1))
	b.Update(cand(1, 3.0, 2.0))
	cl := b.Update(cand(2, 2.0, 1.0))
	if cl != FullSuccess {
		t.Errorf("got %v, want FullSuccess for a dominating infeasible point (lower f and lower h)", cl)
	}
	if b.XZero().H != 1.0 || b.XZero().F.Value() != 2.0 {
		t.Errorf("xZero not updated to the dominating point: %+v", b.XZero())
	}
	if b.Hmax() != 2.0 {
		t.Errorf("Hmax() = %v, want 2.0 (the dominated incumbent's prior h)", b.Hmax())
	}
}

func TestUpdateUnsuccessfulWhenNeitherDominatesNorImproves(t *testing.T) {
	b := New(math.Inf(1))
	b.Update(cand(1, 3.0, 1.0))
	cl := b.Update(cand(2, 2.0, 2.0))
	if cl != Unsuccessful {
		t.Errorf("got %v, want Unsuccessful for a point with worse h and better f (neither dominates nor improves)", cl)
	}
	if b.XZero().H != 1.0 || b.XZero().F.Value() != 3.0 {
		t.Error("xZero should be unchanged")
	}
}

func TestUpdateRejectsAboveHmax(t *testing.T) {
	b := New(1.0)
	cl := b.Update(cand(1, 3.0, 2.0))
	if cl != Unsuccessful {
		t.Errorf("got %v, want Unsuccessful (h > hmax)", cl)
	}
	if b.XZero() != nil {
		t.Error("xZero should remain nil when all candidates exceed hmax")
	}
}

func TestUpdateRejectsInfiniteViolationEvenAtInfiniteHmax(t *testing.T) {
	b := New(math.Inf(1))
	cl := b.Update(cand(1, 3.0, math.Inf(1)))
	if cl != Unsuccessful {
		t.Errorf("got %v, want Unsuccessful for an extreme-barrier violation", cl)
	}
	if b.XZero() != nil {
		t.Error("an infinite-violation point must never become xZero, even with hmax = +Inf")
	}
}

func TestPromoteOnFeasibilityTightensHmax(t *testing.T) {
	b := New(math.Inf(1))
	b.Update(cand(1, 3.0, 0.5))
	b.PromoteOnFeasibility()
	if b.Hmax() != 0.5 {
		t.Errorf("Hmax() = %v, want 0.5", b.Hmax())
	}
}

func TestSetHmaxNeverIncreases(t *testing.T) {
	b := New(2.0)
	b.SetHmax(5.0)
	if b.Hmax() != 2.0 {
		t.Errorf("Hmax increased: got %v, want 2.0", b.Hmax())
	}
	b.SetHmax(1.0)
	if b.Hmax() != 1.0 {
		t.Errorf("Hmax() = %v, want 1.0", b.Hmax())
	}
}

func TestResetClearsIncumbents(t *testing.T) {
	b := New(1.0)
	b.Update(cand(1, 3.0, 0))
	b.Reset()
	if b.XStar() != nil || b.XZero() != nil {
		t.Error("Reset did not clear incumbents")
	}
	if !math.IsInf(b.Hmax(), 1) {
		t.Errorf("Hmax() = %v, want +Inf after reset", b.Hmax())
	}
}
