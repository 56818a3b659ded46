package search

import (
	"context"
	"math"

	"github.com/rwcarlsen/mads"
	"github.com/rwcarlsen/mads/mesh"
)

// Constriction-factor PSO coefficients (Clerc & Kennedy 1999), carried
// over verbatim from Baaaaam-optim/swarm/swarm.go.
const (
	DefaultInertia   = 0.7298437881283576
	DefaultCognition = 1.496179765663133
	DefaultSocial    = 1.496179765663133
)

type particle struct {
	pos, vel, best []float64
	bestF          mads.Float
	bestH          float64
}

// ParticleSwarm is a search.Method that keeps a small particle swarm
// alive across calls and, each call, advances every particle one
// velocity/position step (spec 4.6's pluggable global-exploration
// search option, alongside LatinHypercube).
//
// Adapted from Baaaaam-optim/swarm/swarm.go's Particle.Move/Kill,
// replacing its single optim.Point objective with the mesh-projected,
// cache/barrier-folded f/h pair every other search strategy in this
// package already uses.
type ParticleSwarm struct {
	Vmax                       []float64
	Inertia, Cognition, Social float64
	swarm                      []*particle
}

// init lazily seeds the swarm the first time Search runs, uniformly
// within +/-Vmax[d] of center in each coordinate, with velocities in
// [-vmax, vmax].
func (ps *ParticleSwarm) init(n, size int, center mads.Point) {
	ps.swarm = make([]*particle, size)
	for i := range ps.swarm {
		pos := make([]float64, n)
		vel := make([]float64, n)
		for d := 0; d < n; d++ {
			vmax := ps.Vmax[d]
			pos[d] = center.At(d).Value() + vmax*(1-2*mads.Rand.Float64())
			vel[d] = vmax * (1 - 2*mads.Rand.Float64())
		}
		ps.swarm[i] = &particle{pos: pos, vel: vel, best: append([]float64(nil), pos...), bestF: mads.Undefined, bestH: math.Inf(1)}
	}
}

// Search advances every particle one PSO step toward the swarm's best
// known position and its own personal best, reporting the best
// mesh-snapped point found this call if it beats (curF, curH).
func (ps *ParticleSwarm) Search(ctx context.Context, obj Objective, m *mesh.State, center mads.Point, curF mads.Float, curH float64) (bool, mads.Point, int, error) {
	n := center.Len()
	if len(ps.Vmax) != n {
		return false, center, 0, nil
	}
	if ps.Inertia == 0 {
		ps.Inertia = DefaultInertia
	}
	if ps.Cognition == 0 {
		ps.Cognition = DefaultCognition
	}
	if ps.Social == 0 {
		ps.Social = DefaultSocial
	}
	if ps.swarm == nil {
		ps.init(n, len(ps.Vmax)*2+4, center)
	}

	gbest := ps.globalBest()
	neval := 0
	improved := false
	bestF, bestH := curF, curH
	bestPt := center

	for _, p := range ps.swarm {
		for d := 0; d < n; d++ {
			r1, r2 := mads.Rand.Float64(), mads.Rand.Float64()
			p.vel[d] = ps.Inertia*p.vel[d] +
				ps.Cognition*r1*(p.best[d]-p.pos[d]) +
				ps.Social*r2*(gbest[d]-p.pos[d])
			if vmax := ps.Vmax[d]; math.Abs(p.vel[d]) > vmax {
				p.vel[d] = math.Copysign(vmax, p.vel[d])
			}
			p.pos[d] += p.vel[d]
		}

		snapped := mads.NewPoint(m.Nearest(p.pos))
		f, h, err := obj(ctx, snapped)
		neval++
		if err != nil {
			return improved, bestPt, neval, err
		}
		if better(f, h, p.bestF, p.bestH) {
			p.bestF, p.bestH = f, h
			copy(p.best, p.pos)
		}
		if better(f, h, bestF, bestH) {
			bestF, bestH, bestPt, improved = f, h, snapped, true
		}
	}
	return improved, bestPt, neval, nil
}

func (ps *ParticleSwarm) globalBest() []float64 {
	best := ps.swarm[0]
	for _, p := range ps.swarm[1:] {
		if better(p.bestF, p.bestH, best.bestF, best.bestH) {
			best = p
		}
	}
	return best.best
}
