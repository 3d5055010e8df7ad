// Package joints relaxes distance constraints between particle pairs.
// Joints are a correction pass applied after forces have been integrated
// into displacement, not an additional force, which avoids the energy
// gain of double-counting.
package joints

import (
	"fmt"
	"math"

	"github.com/cazala/party-sub008/particle"
)

// DefaultIterations is the relaxation iteration count per step.
const DefaultIterations = 4

// Solver iteratively moves joint endpoints toward their rest length.
// Endpoint displacement is proportional to inverse mass, so pinned
// particles never move. Joints whose endpoints were destroyed are
// dropped lazily during the solve.
type Solver struct {
	iterations int
}

func NewSolver() *Solver {
	return &Solver{iterations: DefaultIterations}
}

func (s *Solver) Iterations() int { return s.iterations }

// SetIterations bounds the relaxation work per step. Must be positive.
func (s *Solver) SetIterations(n int) error {
	if n <= 0 {
		return fmt.Errorf("joints: iterations must be > 0, got %d", n)
	}
	s.iterations = n
	return nil
}

// Relax runs the configured number of relaxation iterations over the
// store's joint list, compacting out joints with stale endpoints.
func (s *Solver) Relax(store *particle.Store) {
	js := store.Joints()
	if len(js) == 0 {
		return
	}

	// Drop dangling joints first so iterations only touch live pairs.
	kept := js[:0]
	for _, j := range js {
		if store.Get(j.A) == nil || store.Get(j.B) == nil {
			continue
		}
		kept = append(kept, j)
	}
	store.SetJoints(kept)

	for it := 0; it < s.iterations; it++ {
		for _, j := range kept {
			a := store.Get(j.A)
			b := store.Get(j.B)
			if a == nil || b == nil {
				continue
			}
			relaxPair(a, b, j.RestLength, j.Stiffness)
		}
	}
}

// relaxPair moves both endpoints symmetrically (by inverse-mass share)
// so their distance converges toward rest length.
func relaxPair(a, b *particle.Particle, rest, stiffness float32) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if dist < 1e-6 {
		return
	}

	invA := a.InvMass()
	invB := b.InvMass()
	invSum := invA + invB
	if invSum == 0 {
		return
	}

	if stiffness <= 0 || stiffness > 1 {
		stiffness = 1
	}

	diff := (dist - rest) / dist * stiffness
	a.X += dx * diff * (invA / invSum)
	a.Y += dy * diff * (invA / invSum)
	b.X -= dx * diff * (invB / invSum)
	b.Y -= dy * diff * (invB / invSum)
}
