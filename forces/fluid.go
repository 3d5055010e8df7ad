package forces

import (
	"fmt"
	"math"
)

// Fluid defaults.
const (
	DefaultInfluenceRadius    = 35
	DefaultTargetDensity      = 0.003
	DefaultPressureMultiplier = 3000
	DefaultNearThreshold      = 12
	DefaultMaxAcceleration    = 5000
)

// Fluid is a smoothed-particle-hydrodynamics pass. Density is estimated
// from neighbor kernel contributions within the influence radius (poly6),
// pressure from (density - targetDensity) * pressureMultiplier with an
// optional near-pressure term inside nearThreshold, and the pressure
// gradient (spiky) plus viscosity produce the acceleration, clamped to
// maxAcceleration to keep close-range density spikes from blowing up the
// integrator.
//
// Kernel choice: standard poly6 density / spiky gradient pair with 2D
// normalization; the near-pressure kernel is the cubed spiky falloff.
type Fluid struct {
	enabled                bool
	influenceRadius        float32
	targetDensity          float32
	pressureMultiplier     float32
	viscosity              float32
	nearPressureMultiplier float32
	nearThreshold          float32
	enableNearPressure     bool
	maxAcceleration        float32
}

func NewFluid() *Fluid {
	return &Fluid{
		influenceRadius:    DefaultInfluenceRadius,
		targetDensity:      DefaultTargetDensity,
		pressureMultiplier: DefaultPressureMultiplier,
		nearThreshold:      DefaultNearThreshold,
		maxAcceleration:    DefaultMaxAcceleration,
	}
}

func (f *Fluid) Name() string            { return "fluid" }
func (f *Fluid) Enabled() bool           { return f.enabled }
func (f *Fluid) SetEnabled(enabled bool) { f.enabled = enabled }

func (f *Fluid) InfluenceRadius() float32        { return f.influenceRadius }
func (f *Fluid) TargetDensity() float32          { return f.targetDensity }
func (f *Fluid) PressureMultiplier() float32     { return f.pressureMultiplier }
func (f *Fluid) Viscosity() float32              { return f.viscosity }
func (f *Fluid) NearPressureMultiplier() float32 { return f.nearPressureMultiplier }
func (f *Fluid) NearThreshold() float32          { return f.nearThreshold }
func (f *Fluid) NearPressureEnabled() bool       { return f.enableNearPressure }
func (f *Fluid) MaxAcceleration() float32        { return f.maxAcceleration }

func (f *Fluid) SetTargetDensity(d float32) error {
	if d < 0 {
		return fmt.Errorf("forces: target density must be >= 0, got %v", d)
	}
	f.targetDensity = d
	return nil
}

func (f *Fluid) SetInfluenceRadius(r float32) error {
	return setPositive(&f.influenceRadius, r, "influence radius")
}

func (f *Fluid) SetNearThreshold(r float32) error {
	return setPositive(&f.nearThreshold, r, "near threshold")
}

func (f *Fluid) SetMaxAcceleration(a float32) error {
	return setPositive(&f.maxAcceleration, a, "max acceleration")
}

func (f *Fluid) SetPressureMultiplier(m float32)     { f.pressureMultiplier = m }
func (f *Fluid) SetViscosity(v float32)              { f.viscosity = v }
func (f *Fluid) SetNearPressureMultiplier(m float32) { f.nearPressureMultiplier = m }
func (f *Fluid) SetNearPressureEnabled(on bool)      { f.enableNearPressure = on }

// poly6 is the 2D density kernel: 4/(pi h^8) (h^2 - r^2)^3 for r <= h.
func poly6(rSq, h float32) float32 {
	hSq := h * h
	if rSq >= hSq {
		return 0
	}
	d := hSq - rSq
	norm := 4 / (math.Pi * float64(h*h*h*h*h*h*h*h))
	return float32(norm) * d * d * d
}

// spikyGradMag is the magnitude of the 2D spiky kernel gradient:
// 30/(pi h^5) (h - r)^2 for 0 < r <= h.
func spikyGradMag(r, h float32) float32 {
	if r <= 0 || r >= h {
		return 0
	}
	d := h - r
	norm := 30 / (math.Pi * float64(h*h*h*h*h))
	return float32(norm) * d * d
}

// spikyCubed is the near-pressure kernel (1 - r/h)^3 for r <= h.
func spikyCubed(r, h float32) float32 {
	if r >= h {
		return 0
	}
	d := 1 - r/h
	return d * d * d
}

// viscLaplacian is the viscosity smoothing kernel (h - r), normalized
// over the 2D support.
func viscLaplacian(r, h float32) float32 {
	if r >= h {
		return 0
	}
	norm := 20 / (math.Pi * float64(h*h*h*h*h))
	return float32(norm) * (h - r)
}

// Apply runs two barrier-separated passes: densities into the particle
// working fields, then pressure + viscosity into the force accumulators.
func (f *Fluid) Apply(s *State, run Runner) {
	h := f.influenceRadius
	nt := f.nearThreshold

	run(func(i0, i1 int, scratch *Scratch) {
		for i := i0; i < i1; i++ {
			p := &s.Particles[i]
			if skip(p) {
				continue
			}

			scratch.Neighbors = s.Grid.QueryRadiusInto(scratch.Neighbors[:0], s.Snap[i].X, s.Snap[i].Y, h)

			var density, nearDensity float32
			for _, j := range scratch.Neighbors {
				q := &s.Particles[j]
				if skip(q) {
					continue
				}
				dx := s.Snap[i].X - s.Snap[j].X
				dy := s.Snap[i].Y - s.Snap[j].Y
				rSq := dx*dx + dy*dy
				density += q.Mass * poly6(rSq, h)
				if f.enableNearPressure && rSq < nt*nt {
					nearDensity += q.Mass * spikyCubed(float32(math.Sqrt(float64(rSq))), nt)
				}
			}
			p.Density = density
			p.NearDensity = nearDensity
		}
	})

	run(func(i0, i1 int, scratch *Scratch) {
		for i := i0; i < i1; i++ {
			p := &s.Particles[i]
			if skip(p) || p.Density <= 0 {
				continue
			}

			scratch.Neighbors = s.Grid.QueryRadiusInto(scratch.Neighbors[:0], s.Snap[i].X, s.Snap[i].Y, h)

			pressureI := (p.Density - f.targetDensity) * f.pressureMultiplier
			nearI := p.NearDensity * f.nearPressureMultiplier

			var ax, ay float32
			for _, j := range scratch.Neighbors {
				if int(j) == i {
					continue
				}
				q := &s.Particles[j]
				if skip(q) || q.Density <= 0 {
					continue
				}

				dx := s.Snap[i].X - s.Snap[j].X
				dy := s.Snap[i].Y - s.Snap[j].Y
				rSq := dx*dx + dy*dy
				if rSq >= h*h || rSq < 1e-10 {
					continue
				}
				r := float32(math.Sqrt(float64(rSq)))
				nx, ny := dx/r, dy/r

				// Symmetric pressure gradient: both sides of a pair see
				// the same magnitude, so momentum is conserved.
				pressureJ := (q.Density - f.targetDensity) * f.pressureMultiplier
				shared := q.Mass * (pressureI/(p.Density*p.Density) + pressureJ/(q.Density*q.Density))
				grad := spikyGradMag(r, h)
				ax += nx * shared * grad
				ay += ny * shared * grad

				if f.enableNearPressure && r < nt {
					nearJ := q.NearDensity * f.nearPressureMultiplier
					nearShared := q.Mass * (nearI + nearJ) / (2 * q.Density)
					nearGrad := spikyCubed(r, nt)
					ax += nx * nearShared * nearGrad
					ay += ny * nearShared * nearGrad
				}

				if f.viscosity != 0 {
					lap := viscLaplacian(r, h)
					ax += f.viscosity * q.Mass * (s.Snap[j].VX - s.Snap[i].VX) / q.Density * lap
					ay += f.viscosity * q.Mass * (s.Snap[j].VY - s.Snap[i].VY) / q.Density * lap
				}
			}

			// Clamp: density spikes at very close range produce huge
			// gradients that would destabilize the integrator.
			magSq := ax*ax + ay*ay
			if magSq > f.maxAcceleration*f.maxAcceleration {
				scale := f.maxAcceleration / float32(math.Sqrt(float64(magSq)))
				ax *= scale
				ay *= scale
			}

			p.FX += p.Mass * ax
			p.FY += p.Mass * ay
		}
	})
}
