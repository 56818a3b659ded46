package mads

import (
	"fmt"
	"math"
)

// Float is an extended real: either a finite value or Undefined.
// Undefined models "not yet set" and variables fixed out of the
// current subproblem (spec DATA MODEL, "Point").
type Float struct {
	v   float64
	def bool
}

// Undefined is the zero value of Float and represents an unset coordinate.
var Undefined = Float{}

// Def wraps v as a defined extended real.
func Def(v float64) Float { return Float{v: v, def: true} }

// IsDefined reports whether f holds a finite value.
func (f Float) IsDefined() bool { return f.def }

// Value returns the underlying float64. It panics if f is undefined;
// callers must check IsDefined first, the same way Baaaaam-optim's
// code assumes a populated Pos slice.
func (f Float) Value() float64 {
	if !f.def {
		panic("mads: Value() called on an undefined Float")
	}
	return f.v
}

// Or returns f's value if defined, otherwise dflt.
func (f Float) Or(dflt float64) float64 {
	if f.def {
		return f.v
	}
	return dflt
}

// Equal reports exact equality. Two undefined values are never equal
// to each other or to anything else (per spec: equality is
// coordinate-wise exact equality "on defined entries").
func (f Float) Equal(o Float) bool {
	if !f.def || !o.def {
		return false
	}
	return f.v == o.v
}

func (f Float) String() string {
	if !f.def {
		return "undefined"
	}
	return floatStr(f.v)
}

func floatStr(v float64) string {
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	return fmt.Sprintf("%g", v)
}
