package forces

import "fmt"

// Bounds reflects particles that cross a rectangular boundary. The
// outgoing normal velocity component is scaled by the bounce coefficient
// and the tangential component by (1 - friction). Unlike the other
// forces this is a positional correction written directly to position
// and velocity, so that every later force sees the reflected state.
type Bounds struct {
	enabled                bool
	minX, minY, maxX, maxY float32
	bounce                 float32
	friction               float32
}

// NewBounds returns an enabled boundary with bounce 1 (perfectly
// elastic) and no friction. The rectangle starts empty; the engine sizes
// it to the world.
func NewBounds() *Bounds {
	return &Bounds{enabled: true, bounce: 1}
}

func (b *Bounds) Name() string            { return "bounds" }
func (b *Bounds) Enabled() bool           { return b.enabled }
func (b *Bounds) SetEnabled(enabled bool) { b.enabled = enabled }
func (b *Bounds) Bounce() float32         { return b.bounce }
func (b *Bounds) Friction() float32       { return b.friction }

// SetRect sets the boundary rectangle.
func (b *Bounds) SetRect(minX, minY, maxX, maxY float32) error {
	if maxX <= minX || maxY <= minY {
		return fmt.Errorf("forces: bounds rect must have positive extent, got (%v,%v)-(%v,%v)", minX, minY, maxX, maxY)
	}
	b.minX, b.minY, b.maxX, b.maxY = minX, minY, maxX, maxY
	return nil
}

// Rect returns the boundary rectangle.
func (b *Bounds) Rect() (minX, minY, maxX, maxY float32) {
	return b.minX, b.minY, b.maxX, b.maxY
}

// SetBounce sets the restitution coefficient. 0 fully absorbs the normal
// velocity, 1 is perfectly elastic. Out-of-range values are rejected and
// the prior value retained.
func (b *Bounds) SetBounce(bounce float32) error {
	if bounce < 0 || bounce > 1 {
		return fmt.Errorf("forces: bounce must be in [0,1], got %v", bounce)
	}
	b.bounce = bounce
	return nil
}

// SetFriction sets the tangential damping coefficient in [0,1].
func (b *Bounds) SetFriction(friction float32) error {
	if friction < 0 || friction > 1 {
		return fmt.Errorf("forces: friction must be in [0,1], got %v", friction)
	}
	b.friction = friction
	return nil
}

// Apply reflects any particle whose disc crosses the rectangle.
func (b *Bounds) Apply(s *State, run Runner) {
	keep := 1 - b.friction

	run(func(i0, i1 int, _ *Scratch) {
		for i := i0; i < i1; i++ {
			p := &s.Particles[i]
			if skip(p) || p.Pinned {
				continue
			}

			if p.X-p.Radius < b.minX {
				p.X = b.minX + p.Radius
				p.VX = -p.VX * b.bounce
				p.VY *= keep
			} else if p.X+p.Radius > b.maxX {
				p.X = b.maxX - p.Radius
				p.VX = -p.VX * b.bounce
				p.VY *= keep
			}

			if p.Y-p.Radius < b.minY {
				p.Y = b.minY + p.Radius
				p.VY = -p.VY * b.bounce
				p.VX *= keep
			} else if p.Y+p.Radius > b.maxY {
				p.Y = b.maxY - p.Radius
				p.VY = -p.VY * b.bounce
				p.VX *= keep
			}
		}
	})
}
