package algo

import (
	"fmt"
	"runtime"
)

// StopReason is a small tagged enumeration of why a run (or a
// sub-algorithm within it) stopped (spec 4.9's stop-reason tree).
// The zero value, Started, is the "not stopped yet" sentinel.
type StopReason int

const (
	// Started means no stop condition has fired.
	Started StopReason = iota
	MeshMinReached
	MaxBBEval
	MaxEval
	MaxTime
	UserInterrupt
	UserCallbackStop
	AllPointsEvaluated
	FeasibilityTargetReached
	// ParamError and InternalError are fatal arms (spec 7): the driver
	// stops and propagates an error rather than returning normally.
	ParamError
	InternalError
)

func (r StopReason) String() string {
	switch r {
	case Started:
		return "started"
	case MeshMinReached:
		return "reached min mesh"
	case MaxBBEval:
		return "max black-box evaluations"
	case MaxEval:
		return "max evaluations"
	case MaxTime:
		return "max time"
	case UserInterrupt:
		return "user interrupt"
	case UserCallbackStop:
		return "user callback requested stop"
	case AllPointsEvaluated:
		return "all points evaluated"
	case FeasibilityTargetReached:
		return "feasibility target reached"
	case ParamError:
		return "parameter error"
	case InternalError:
		return "internal consistency violation"
	default:
		return "unknown stop reason"
	}
}

// IsStop reports whether r represents an actual stop condition, as
// opposed to the Started sentinel.
func (r StopReason) IsStop() bool { return r != Started }

// Fatal reports whether r is one of the fatal arms that must propagate
// out of Driver.Run as an error rather than a clean termination (spec
// 7's "Internal consistency violation" / "Parameter error").
func (r StopReason) Fatal() bool { return r == ParamError || r == InternalError }

// slot holds one sub-algorithm's stop-reason value. Every component
// that can terminate independently (Driver-global, a MegaIteration, a
// nested Mads run) carries one of these (spec 4.9: "every sub-algorithm
// carries its own stop-reason slot plus inherits a shared global slot").
type slot struct {
	reason StopReason
}

func (s *slot) set(r StopReason) {
	if s.reason == Started {
		s.reason = r
	}
}

func (s *slot) get() StopReason { return s.reason }

// Terminate implements terminate(k) = global.isSet() v local.isSet() v
// k >= maxIter (spec 4.9).
func Terminate(global, local StopReason, k, maxIter int) (bool, StopReason) {
	if global.IsStop() {
		return true, global
	}
	if local.IsStop() {
		return true, local
	}
	if maxIter > 0 && k >= maxIter {
		return true, MaxEval
	}
	return false, Started
}

// InvariantError reports a violated core invariant (spec 7's "Internal
// consistency violation"), e.g. a trial point off the mesh after
// projection. It always maps to the InternalError stop reason.
type InvariantError struct {
	Invariant string
	Detail    string
	File      string
	Line      int
}

// NewInvariantError captures the caller's file+line, per spec 7's
// "surfaced with file+line context".
func NewInvariantError(invariant, detail string) *InvariantError {
	_, file, line, _ := runtime.Caller(1)
	return &InvariantError{Invariant: invariant, Detail: detail, File: file, Line: line}
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s:%d: invariant violated (%s): %s", e.File, e.Line, e.Invariant, e.Detail)
}
