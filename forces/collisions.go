package forces

import (
	"fmt"
	"math"
)

// DefaultCollisionStrength is the repulsion acceleration per unit of
// overlap depth.
const DefaultCollisionStrength = 50

// Collisions resolves pairwise circle-circle overlap among spatial-grid
// neighbors by accumulating a repulsive force proportional to overlap
// depth. Each particle pushes only itself, using the frozen snapshot for
// both positions, so the pair resolves symmetrically without write
// contention.
type Collisions struct {
	enabled  bool
	strength float32
}

func NewCollisions() *Collisions {
	return &Collisions{strength: DefaultCollisionStrength}
}

func (c *Collisions) Name() string            { return "collisions" }
func (c *Collisions) Enabled() bool           { return c.enabled }
func (c *Collisions) SetEnabled(enabled bool) { c.enabled = enabled }
func (c *Collisions) Strength() float32       { return c.strength }

// SetStrength sets the repulsion strength. Must be positive.
func (c *Collisions) SetStrength(strength float32) error {
	if strength <= 0 {
		return fmt.Errorf("forces: collision strength must be > 0, got %v", strength)
	}
	c.strength = strength
	return nil
}

func (c *Collisions) Apply(s *State, run Runner) {
	run(func(i0, i1 int, scratch *Scratch) {
		for i := i0; i < i1; i++ {
			p := &s.Particles[i]
			if skip(p) {
				continue
			}

			searchR := p.Radius + s.MaxRadius
			scratch.Neighbors = s.Grid.QueryRadiusInto(scratch.Neighbors[:0], s.Snap[i].X, s.Snap[i].Y, searchR)

			var fx, fy float32
			for _, j := range scratch.Neighbors {
				if int(j) == i {
					continue
				}
				q := &s.Particles[j]
				if skip(q) {
					continue
				}

				dx := s.Snap[i].X - s.Snap[j].X
				dy := s.Snap[i].Y - s.Snap[j].Y
				minDist := p.Radius + q.Radius
				distSq := dx*dx + dy*dy
				if distSq >= minDist*minDist {
					continue
				}

				dist := float32(math.Sqrt(float64(distSq)))
				var nx, ny float32
				if dist > 1e-6 {
					nx, ny = dx/dist, dy/dist
				} else {
					// Coincident centers: deterministic push along +x so
					// both halves of the pair separate in opposite order.
					if i < int(j) {
						nx = 1
					} else {
						nx = -1
					}
				}

				overlap := minDist - dist
				fx += nx * overlap * c.strength
				fy += ny * overlap * c.strength
			}

			p.FX += p.Mass * fx
			p.FY += p.Mass * fy
		}
	})
}
