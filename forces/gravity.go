package forces

import "math"

// Gravity applies a uniform acceleration of the configured strength along
// a direction vector.
type Gravity struct {
	enabled  bool
	strength float32
	dirX     float32
	dirY     float32
}

// NewGravity returns gravity pointing straight down with zero strength.
func NewGravity() *Gravity {
	return &Gravity{enabled: true, dirX: 0, dirY: 1}
}

func (g *Gravity) Name() string             { return "gravity" }
func (g *Gravity) Enabled() bool            { return g.enabled }
func (g *Gravity) SetEnabled(enabled bool)  { g.enabled = enabled }
func (g *Gravity) Strength() float32        { return g.strength }
func (g *Gravity) SetStrength(s float32)    { g.strength = s }
func (g *Gravity) Direction() (x, y float32) { return g.dirX, g.dirY }

// SetDirection sets the direction vector, normalizing it. A zero vector
// is ignored and the prior direction retained.
func (g *Gravity) SetDirection(x, y float32) {
	d := float32(math.Sqrt(float64(x*x + y*y)))
	if d == 0 {
		return
	}
	g.dirX, g.dirY = x/d, y/d
}

// SetDirectionFromAngle points gravity along an angle in radians,
// measured from the +x axis.
func (g *Gravity) SetDirectionFromAngle(angle float32) {
	g.dirX = float32(math.Cos(float64(angle)))
	g.dirY = float32(math.Sin(float64(angle)))
}

// DirectionAngle returns the current direction as an angle in radians.
func (g *Gravity) DirectionAngle() float32 {
	return float32(math.Atan2(float64(g.dirY), float64(g.dirX)))
}

// Apply accumulates F += m * strength * dir for every active particle.
func (g *Gravity) Apply(s *State, run Runner) {
	ax := g.strength * g.dirX
	ay := g.strength * g.dirY

	run(func(i0, i1 int, _ *Scratch) {
		for i := i0; i < i1; i++ {
			p := &s.Particles[i]
			if skip(p) {
				continue
			}
			p.FX += p.Mass * ax
			p.FY += p.Mass * ay
		}
	})
}
