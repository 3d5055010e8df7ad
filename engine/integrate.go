package engine

import "github.com/cazala/party-sub008/particle"

// integrate commits this step's motion: semi-implicit Euler, velocity
// first from the accumulated force, then position from the updated
// velocity. Force accumulators are cleared afterward. Pinned particles
// take forces but never displace. Culled particles skip the velocity
// update (the pipeline bypassed them, their accumulator is stale-free
// by construction) but still integrate their last known velocity.
func (s *Simulation) integrate(slots []particle.Particle, dt float32) {
	flock := s.pipeline.Flock()
	clampSpeed := flock.Enabled()
	maxSpeed := flock.MaxSpeed()

	for i := range slots {
		p := &slots[i]
		if !p.Alive {
			continue
		}

		if !p.Culled {
			inv := p.InvMass()
			p.VX += p.FX * inv * dt
			p.VY += p.FY * inv * dt

			// The flock max-speed clamp applies to velocity at
			// integration time, not to the steering acceleration.
			if clampSpeed {
				speed := fastSqrt(p.VX*p.VX + p.VY*p.VY)
				if speed > maxSpeed {
					scale := maxSpeed / speed
					p.VX *= scale
					p.VY *= scale
				}
			}
		}

		if !p.Pinned {
			p.X += p.VX * dt
			p.Y += p.VY * dt
		}

		p.FX = 0
		p.FY = 0
	}
}
