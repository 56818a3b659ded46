// Package mesh implements the granular mesh/frame state machine (spec
// component C2): the coupled per-coordinate mesh size delta and frame
// size Delta that every trial point must respect, their enlarge/refine
// transitions, and projection of arbitrary points onto the mesh.
//
// It generalizes Baaaaam-optim/mesh/mesh.go's single-scalar-step mesh
// (Infinite/Bounded) and Baaaaam-optim/pattern/mesh/mesh.go's
// SimpleMesh from one shared step size to a per-coordinate,
// granularity-aware index scheme.
package mesh

import (
	"math"

	"github.com/rwcarlsen/mads"
)

// Default base for the delta/Delta ratio growth (spec 4.1: "base in
// {4, 10}"). NOMAD's own default granular-mesh update ratio is 4.
const DefaultBase = 4.0

// DefaultAnisotropicRatio is the threshold a direction's relative
// magnitude must exceed for its coordinate to enlarge under anisotropic
// meshing (spec 4.1 enlarge: "default 0.1").
const DefaultAnisotropicRatio = 0.1

// State is the mesh/frame for an n-dimensional problem. A State is
// owned by the Iteration that produced it (spec DATA MODEL, "Ownership
// summary"); it is never shared across worker goroutines.
type State struct {
	n      int
	base   float64
	g      []float64 // granularity per coordinate; 0 means continuous
	gStep  []float64 // baseline scale at mesh index 0 (g[i] if granular, else initial frame size)
	r      []int     // signed mesh index per coordinate
	fixed  []bool
	minIdx []int // floor mesh index per coordinate (0 for granular coords)
	maxIdx int

	origin []float64

	Anisotropic    bool
	AnisotropyTol  float64
	enlargeCounter int
}

// Option configures a new State.
type Option func(*State)

// Base overrides the default delta/Delta ratio growth base (must be 4 or 10).
func Base(b float64) Option {
	return func(s *State) {
		if b != 4 && b != 10 {
			panic("mesh: base must be 4 or 10")
		}
		s.base = b
	}
}

// Anisotropic enables selective per-direction enlarge (spec 4.1).
func Anisotropic(tol float64) Option {
	return func(s *State) {
		s.Anisotropic = true
		if tol <= 0 {
			tol = DefaultAnisotropicRatio
		}
		s.AnisotropyTol = tol
	}
}

// Fixed marks coordinate i as fixed: Enlarge/Refine never touch it and
// Project passes it through unchanged (spec 4.1, "Fixed coordinates
// pass through unchanged").
func Fixed(i int) Option {
	return func(s *State) { s.fixed[i] = true }
}

// MaxIndex caps the mesh index an Enlarge can reach, preventing
// unbounded frame growth.
func MaxIndex(m int) Option {
	return func(s *State) { s.maxIdx = m }
}

// New builds a mesh State for n coordinates. granularity[i] == 0 means
// coordinate i is continuous; a positive value quantizes it to
// multiples of granularity[i] (spec DATA MODEL, "Granularity vector
// g"). initFrame[i] seeds the baseline scale for continuous
// coordinates (INITIAL_FRAME_SIZE); it is ignored for granular
// coordinates, whose baseline is always their granularity.
func New(n int, granularity, initFrame []float64, opts ...Option) *State {
	s := &State{
		n:      n,
		base:   DefaultBase,
		g:      append([]float64(nil), granularity...),
		gStep:  make([]float64, n),
		r:      make([]int, n),
		fixed:  make([]bool, n),
		minIdx: make([]int, n),
		maxIdx: 1 << 20,
		origin: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		g := 0.0
		if granularity != nil {
			g = granularity[i]
		}
		if g > 0 {
			s.gStep[i] = g
			s.minIdx[i] = 0 // granular coordinates cannot refine past their own granularity
		} else {
			f := 1.0
			if initFrame != nil && initFrame[i] > 0 {
				f = initFrame[i]
			}
			s.gStep[i] = f
			s.minIdx[i] = math.MinInt32 // continuous coordinates have no intrinsic floor
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dim returns the problem dimension.
func (s *State) Dim() int { return s.n }

// MeshSize returns the current per-coordinate mesh size delta.
func (s *State) MeshSize() []float64 {
	out := make([]float64, s.n)
	for i := range out {
		out[i] = s.delta(i)
	}
	return out
}

// FrameSize returns the current per-coordinate frame size Delta.
func (s *State) FrameSize() []float64 {
	out := make([]float64, s.n)
	for i := range out {
		out[i] = s.capital(i)
	}
	return out
}

func (s *State) delta(i int) float64 {
	return s.gStep[i] * math.Pow(s.base, math.Min(float64(s.r[i]), 0))
}

func (s *State) capital(i int) float64 {
	return s.gStep[i] * math.Pow(s.base, math.Max(float64(s.r[i]), 0))
}

// Origin returns the current mesh origin (frame center).
func (s *State) Origin() []float64 { return append([]float64(nil), s.origin...) }

// Indices returns the current per-coordinate signed mesh index r
// (spec DATA MODEL, "mesh index r"), the only mesh state a hot-restart
// snapshot needs to reproduce delta/Delta exactly (spec 6(b)).
func (s *State) Indices() []int { return append([]int(nil), s.r...) }

// SetIndices restores a previously-snapshotted per-coordinate mesh
// index, e.g. when reloading a hot-restart file (spec 6(b), S6).
func (s *State) SetIndices(r []int) { copy(s.r, r) }

// SetOrigin moves the lattice origin to pos; Nearest and Project snap
// relative to it. The driver sets it once, to X0, during
// initialization.
func (s *State) SetOrigin(pos []float64) {
	copy(s.origin, pos)
}

// Enlarge grows the frame after a successful iteration (spec 4.1).
// When d is non-nil and anisotropic meshing is enabled, only
// coordinates whose |d[i]|/Delta[i] exceeds the anisotropy tolerance
// are enlarged - this stops one dominant direction from widening the
// whole frame.
func (s *State) Enlarge(d []float64) {
	s.enlargeCounter++
	for i := 0; i < s.n; i++ {
		if s.fixed[i] {
			continue
		}
		if d != nil && s.Anisotropic {
			ratio := math.Abs(d[i]) / s.capital(i)
			if ratio <= s.AnisotropyTol {
				continue
			}
		}
		if s.r[i] < s.maxIdx {
			s.r[i]++
		}
	}
}

// Refine shrinks the mesh after an unsuccessful iteration, floored by
// each coordinate's granularity. It returns every non-fixed coordinate
// that sits at its floor after the call, including ones already there
// before it; the driver's stop check reads the same condition through
// MinMeshReached (spec 4.1, 4.9).
func (s *State) Refine() (hitFloor []int) {
	for i := 0; i < s.n; i++ {
		if s.fixed[i] {
			continue
		}
		if s.r[i] > s.minIdx[i] {
			s.r[i]--
		}
		if s.r[i] <= s.minIdx[i] {
			hitFloor = append(hitFloor, i)
		}
	}
	return hitFloor
}

// MinMeshReached reports whether any non-fixed coordinate is at its
// refinement floor (spec 4.1, check_termination).
func (s *State) MinMeshReached() bool {
	for i := 0; i < s.n; i++ {
		if s.fixed[i] {
			continue
		}
		if s.r[i] <= s.minIdx[i] {
			return true
		}
	}
	return false
}

// Nearest snaps pos onto the mesh grid relative to the current origin,
// without bounds clipping. Fixed coordinates pass through unchanged.
func (s *State) Nearest(pos []float64) []float64 {
	out := make([]float64, s.n)
	for i, v := range pos {
		if s.fixed[i] {
			out[i] = s.origin[i]
			continue
		}
		step := s.delta(i)
		n := math.Round((v - s.origin[i]) / step)
		out[i] = s.origin[i] + n*step
	}
	return out
}

// Project snaps p onto the mesh and clips the result into [lb, ub]. A
// clipped coordinate keeps the bound value even when that value is off
// the lattice, however far the clip moved it (spec 4.1, Project).
func (s *State) Project(p mads.Point, lb, ub []mads.Float) mads.Point {
	snapped := s.Nearest(p.Values())
	out := make([]mads.Float, s.n)
	for i, v := range snapped {
		if s.fixed[i] {
			out[i] = mads.Def(s.origin[i])
			continue
		}
		if lb != nil && lb[i].IsDefined() && v < lb[i].Value() {
			v = lb[i].Value()
		}
		if ub != nil && ub[i].IsDefined() && v > ub[i].Value() {
			v = ub[i].Value()
		}
		out[i] = mads.Def(v)
	}
	return mads.NewPointFrom(out)
}
