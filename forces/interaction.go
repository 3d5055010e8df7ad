package forces

import (
	"fmt"
	"math"
)

// Interaction modes and actions. Mode decides the force sign, action is
// what the frame driver does with the pointer (applying force versus
// emitting particles); the engine interprets action, this force only
// applies it when set to ActionForce.
const (
	ModeAttract = "attract"
	ModeRepel   = "repel"

	ActionForce = "force"
	ActionEmit  = "emit"
)

// Interaction defaults.
const (
	DefaultInteractionRadius   = 150
	DefaultInteractionStrength = 1000
)

// Interaction is a single point force (pointer/cursor) that attracts or
// repels particles within a radius, inverse-distance weighted. Radius
// and strength are independent of all other forces.
type Interaction struct {
	enabled  bool
	mode     string
	action   string
	strength float32
	radius   float32

	px, py float32
	active bool
}

func NewInteraction() *Interaction {
	return &Interaction{
		mode:     ModeAttract,
		action:   ActionForce,
		strength: DefaultInteractionStrength,
		radius:   DefaultInteractionRadius,
	}
}

func (in *Interaction) Name() string            { return "interaction" }
func (in *Interaction) Enabled() bool           { return in.enabled }
func (in *Interaction) SetEnabled(enabled bool) { in.enabled = enabled }

func (in *Interaction) Mode() string       { return in.mode }
func (in *Interaction) Action() string     { return in.action }
func (in *Interaction) Strength() float32  { return in.strength }
func (in *Interaction) Radius() float32    { return in.radius }
func (in *Interaction) Active() bool       { return in.active }

func (in *Interaction) SetMode(mode string) error {
	if mode != ModeAttract && mode != ModeRepel {
		return fmt.Errorf("forces: unknown interaction mode %q", mode)
	}
	in.mode = mode
	return nil
}

func (in *Interaction) SetAction(action string) error {
	if action != ActionForce && action != ActionEmit {
		return fmt.Errorf("forces: unknown interaction action %q", action)
	}
	in.action = action
	return nil
}

func (in *Interaction) SetStrength(s float32) { in.strength = s }

func (in *Interaction) SetRadius(r float32) error {
	return setPositive(&in.radius, r, "interaction radius")
}

// SetPointer updates the pointer position and whether it is pressed.
func (in *Interaction) SetPointer(x, y float32, active bool) {
	in.px, in.py = x, y
	in.active = active
}

func (in *Interaction) Apply(s *State, run Runner) {
	if !in.active || in.action != ActionForce {
		return
	}

	sign := float32(1)
	if in.mode == ModeRepel {
		sign = -1
	}

	run(func(i0, i1 int, _ *Scratch) {
		for i := i0; i < i1; i++ {
			p := &s.Particles[i]
			if skip(p) {
				continue
			}

			dx := in.px - s.Snap[i].X
			dy := in.py - s.Snap[i].Y
			distSq := dx*dx + dy*dy
			if distSq > in.radius*in.radius || distSq < 1e-6 {
				continue
			}

			dist := float32(math.Sqrt(float64(distSq)))
			// Inverse-distance weighting, tapered to zero at the rim:
			// net magnitude is strength * (1 - dist/radius) / dist.
			mag := sign * in.strength * (1 - dist/in.radius) / distSq
			p.FX += p.Mass * dx * mag
			p.FY += p.Mass * dy * mag
		}
	})
}
