package cache

import (
	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/mesh"
)

// Eval is one evaluation attempt against a point for a given evaluator
// kind (spec DATA MODEL, "Eval record").
type Eval struct {
	Output  []float64
	Status  Status
	F       mads.Float
	H       float64
	Tag     uint64
	Counted bool // whether this attempt consumes the MAX_BB_EVAL/MAX_EVAL budget
}

// Feasible reports whether this eval is a zero-violation, usable result.
func (e *Eval) Feasible() bool {
	return e.Status == OK && e.H == 0
}

// Usable reports whether this eval can participate in barrier updates
// at all (h finite).
func (e *Eval) Usable() bool {
	return e.Status == OK && !isInf(e.H)
}

func isInf(h float64) bool { return h > maxFiniteH }

// maxFiniteH is effectively +Inf for violation-measure purposes; kept
// as a named constant rather than importing math.IsInf at every call
// site in this file.
const maxFiniteH = 1e300

// Entry is a Point-keyed cache record holding every Eval recorded
// against that point, across all evaluator kinds (spec DATA MODEL,
// "Cache entry").
type Entry struct {
	Point     mads.Point
	Mesh      *mesh.State // optional, non-owning: the mesh the point was generated under
	Direction []float64   // optional: the Delta-scaled direction used to reach it
	Center    *Entry      // optional weak back-reference to the frame center

	Tag   uint64 // first-insertion tag; used for eviction order and replay
	Evals map[EvaluatorKind][]*Eval
}

func newEntry(p mads.Point, tag uint64) *Entry {
	return &Entry{
		Point: p,
		Tag:   tag,
		Evals: make(map[EvaluatorKind][]*Eval),
	}
}

// Latest returns the most recent eval recorded for kind, or nil.
func (e *Entry) Latest(kind EvaluatorKind) *Eval {
	evs := e.Evals[kind]
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

// CountCompleted returns how many terminal (non-pending) evals have
// been recorded for kind. Cancelled attempts never ran and are not
// counted, so a cancelled point is evaluated when it comes up again.
func (e *Entry) CountCompleted(kind EvaluatorKind) int {
	n := 0
	for _, ev := range e.Evals[kind] {
		if ev.Status.Terminal() && ev.Status != Cancelled {
			n++
		}
	}
	return n
}

// HasPending reports whether an evaluation of kind is currently
// in-flight for this entry - this is what gives SmartInsert its
// at-most-one-evaluation guarantee (spec 4.3).
func (e *Entry) HasPending(kind EvaluatorKind) bool {
	for _, ev := range e.Evals[kind] {
		if ev.Status == Pending {
			return true
		}
	}
	return false
}
