package trail

import (
	"fmt"
	"math"

	"github.com/cazala/party-sub008/particle"
)

// Behavior selects which trails a sensor reacts to.
type Behavior uint8

const (
	BehaviorNone Behavior = iota
	BehaviorAny
	BehaviorSameColor
	BehaviorDifferentColor
)

func (b Behavior) String() string {
	switch b {
	case BehaviorNone:
		return "none"
	case BehaviorAny:
		return "any"
	case BehaviorSameColor:
		return "same"
	case BehaviorDifferentColor:
		return "different"
	}
	return "unknown"
}

// ParseBehavior maps a config string to a Behavior.
func ParseBehavior(s string) (Behavior, error) {
	switch s {
	case "none", "":
		return BehaviorNone, nil
	case "any":
		return BehaviorAny, nil
	case "same":
		return BehaviorSameColor, nil
	case "different":
		return BehaviorDifferentColor, nil
	}
	return BehaviorNone, fmt.Errorf("trail: unknown sensor behavior %q", s)
}

// Sensor defaults.
const (
	DefaultSensorDistance  = 20
	DefaultSensorAngle     = float32(math.Pi / 4)
	DefaultSensorStrength  = 600
	DefaultFleeAngle       = float32(math.Pi / 2)
	DefaultColorSimilarity = 0.8
	DefaultDeposit         = 1
)

// Sensor describes how one particle reads and reacts to the trail
// field. Each particle carries its own sensor so populations with
// different behaviors can coexist.
type Sensor struct {
	Follow Behavior
	Flee   Behavior

	// Distance ahead of the particle and angular offset of the two side
	// probes, relative to the velocity heading.
	Distance float32
	Angle    float32

	// Strength scales the steering acceleration.
	Strength float32

	// FleeAngle is how far past the side probe the particle rotates away
	// when fleeing.
	FleeAngle float32

	// ColorSimilarity in [0,1]; readings classify as same-colored when
	// normalized RGB similarity meets or exceeds it.
	ColorSimilarity float32
}

// DefaultSensor returns the sensor applied to newly spawned particles.
func DefaultSensor() Sensor {
	return Sensor{
		Follow:          BehaviorAny,
		Flee:            BehaviorNone,
		Distance:        DefaultSensorDistance,
		Angle:           DefaultSensorAngle,
		Strength:        DefaultSensorStrength,
		FleeAngle:       DefaultFleeAngle,
		ColorSimilarity: DefaultColorSimilarity,
	}
}

// System owns the trail field and the per-particle sensors, and runs
// the deposit / diffuse-decay / sense phases in that fixed order.
type System struct {
	field   *Field
	sensors []Sensor
	def     Sensor
	deposit float32
}

func NewSystem(field *Field) *System {
	return &System{
		field:   field,
		def:     DefaultSensor(),
		deposit: DefaultDeposit,
	}
}

func (sys *System) Field() *Field          { return sys.field }
func (sys *System) DepositAmount() float32 { return sys.deposit }
func (sys *System) Default() Sensor        { return sys.def }

// SetDepositAmount sets the per-particle mark intensity per step.
func (sys *System) SetDepositAmount(a float32) error {
	if a < 0 {
		return fmt.Errorf("trail: deposit amount must be >= 0, got %v", a)
	}
	sys.deposit = a
	return nil
}

// SetDefault replaces the sensor given to particles spawned afterward.
func (sys *System) SetDefault(s Sensor) { sys.def = s }

// SensorAt returns the sensor of the particle in slot i, growing the
// sensor table as the store grows. Slots are assigned the default
// sensor on first touch.
func (sys *System) SensorAt(i int) *Sensor {
	sys.ensure(i + 1)
	return &sys.sensors[i]
}

// Assign resets slot i to the default sensor. Called on spawn so a
// reused slot does not inherit the previous occupant's behavior.
func (sys *System) Assign(i int) {
	sys.ensure(i + 1)
	sys.sensors[i] = sys.def
}

func (sys *System) ensure(n int) {
	for len(sys.sensors) < n {
		sys.sensors = append(sys.sensors, sys.def)
	}
}

// Step runs one trail tick: every live particle deposits its mark, the
// field diffuses and decays, then sensors steer. Phases never
// interleave; sensing always reads the post-decay field.
func (sys *System) Step(particles []particle.Particle) {
	for i := range particles {
		p := &particles[i]
		if !p.Alive || p.Culled {
			continue
		}
		sys.field.Deposit(p.X, p.Y, sys.deposit, p.Color)
	}

	sys.field.Step()

	sys.ensure(len(particles))
	for i := range particles {
		p := &particles[i]
		if !p.Alive || p.Culled || p.Pinned {
			continue
		}
		sys.sense(p, &sys.sensors[i])
	}
}

// sense samples the field at three probes (ahead, left, right of the
// velocity heading) and accumulates a steering force toward the
// strongest matching reading, or away from it when fleeing.
func (sys *System) sense(p *particle.Particle, s *Sensor) {
	if s.Follow == BehaviorNone && s.Flee == BehaviorNone {
		return
	}

	speed := float32(math.Sqrt(float64(p.VX*p.VX + p.VY*p.VY)))
	if speed < 1e-3 {
		return
	}
	heading := float32(math.Atan2(float64(p.VY), float64(p.VX)))

	angles := [3]float32{heading, heading - s.Angle, heading + s.Angle}
	var follow, flee float32
	followDir, fleeDir := heading, heading
	for _, a := range angles {
		sx := p.X + s.Distance*float32(math.Cos(float64(a)))
		sy := p.Y + s.Distance*float32(math.Sin(float64(a)))
		v := sys.reading(sx, sy, p.Color, s)

		if fv := v.match(s.Follow); fv > follow {
			follow, followDir = fv, a
		}
		if fv := v.match(s.Flee); fv > flee {
			flee, fleeDir = fv, a
		}
	}

	if s.Follow != BehaviorNone && follow > 0 {
		p.FX += p.Mass * s.Strength * float32(math.Cos(float64(followDir)))
		p.FY += p.Mass * s.Strength * float32(math.Sin(float64(followDir)))
	}
	if s.Flee != BehaviorNone && flee > 0 {
		// Rotate away from the strongest reading by the flee angle.
		away := fleeDir + math.Pi
		if fleeDir > heading {
			away = heading - s.FleeAngle
		} else if fleeDir < heading {
			away = heading + s.FleeAngle
		}
		p.FX += p.Mass * s.Strength * float32(math.Cos(float64(away)))
		p.FY += p.Mass * s.Strength * float32(math.Sin(float64(away)))
	}
}

// probe is one field reading plus its color classification inputs.
type probe struct {
	intensity float32
	same      bool
}

func (v probe) match(b Behavior) float32 {
	switch b {
	case BehaviorAny:
		return v.intensity
	case BehaviorSameColor:
		if v.same {
			return v.intensity
		}
	case BehaviorDifferentColor:
		if !v.same {
			return v.intensity
		}
	}
	return 0
}

func (sys *System) reading(x, y float32, own particle.Color, s *Sensor) probe {
	intensity := sys.field.Sample(x, y)
	if intensity <= 0 {
		return probe{}
	}
	c, _ := sys.field.SampleColor(x, y)
	return probe{
		intensity: intensity,
		same:      colorSimilarity(own, c) >= s.ColorSimilarity,
	}
}

// colorSimilarity is 1 minus the normalized RGB euclidean distance.
func colorSimilarity(a, b particle.Color) float32 {
	dr := float32(a.R) - float32(b.R)
	dg := float32(a.G) - float32(b.G)
	db := float32(a.B) - float32(b.B)
	d := float32(math.Sqrt(float64(dr*dr+dg*dg+db*db) / 3))
	return 1 - d/255
}
