package engine

import (
	"fmt"

	"github.com/cazala/party-sub008/config"
)

// Export captures every runtime parameter into a snapshot. The result
// round-trips: importing it reproduces an observably identical
// configuration.
func (s *Simulation) Export() *config.Snapshot {
	g := s.pipeline.Gravity()
	b := s.pipeline.Bounds()
	c := s.pipeline.Collisions()
	fl := s.pipeline.Flock()
	fd := s.pipeline.Fluid()
	in := s.pipeline.Interaction()

	return &config.Snapshot{
		Gravity: &config.GravitySnapshot{
			Strength:       config.Float(float64(g.Strength())),
			DirectionAngle: config.Float(float64(g.DirectionAngle())),
		},
		Bounds: &config.BoundsSnapshot{
			Bounce:   config.Float(float64(b.Bounce())),
			Friction: config.Float(float64(b.Friction())),
		},
		Collisions: &config.CollisionsSnapshot{
			Enabled: config.Bool(c.Enabled()),
		},
		Flock: &config.FlockSnapshot{
			CohesionWeight:   config.Float(float64(fl.CohesionWeight())),
			AlignmentWeight:  config.Float(float64(fl.AlignmentWeight())),
			SeparationWeight: config.Float(float64(fl.SeparationWeight())),
			SeparationRange:  config.Float(float64(fl.SeparationRange())),
			NeighborRadius:   config.Float(float64(fl.NeighborRadius())),
			MaxSpeed:         config.Float(float64(fl.MaxSpeed())),
			WanderWeight:     config.Float(float64(fl.WanderWeight())),
		},
		Fluid: &config.FluidSnapshot{
			Enabled:                config.Bool(fd.Enabled()),
			InfluenceRadius:        config.Float(float64(fd.InfluenceRadius())),
			TargetDensity:          config.Float(float64(fd.TargetDensity())),
			PressureMultiplier:     config.Float(float64(fd.PressureMultiplier())),
			Viscosity:              config.Float(float64(fd.Viscosity())),
			NearPressureMultiplier: config.Float(float64(fd.NearPressureMultiplier())),
			NearThreshold:          config.Float(float64(fd.NearThreshold())),
			EnableNearPressure:     config.Bool(fd.NearPressureEnabled()),
			MaxAcceleration:        config.Float(float64(fd.MaxAcceleration())),
		},
		Interaction: &config.InteractionSnapshot{
			Mode:     config.String(in.Mode()),
			Strength: config.Float(float64(in.Strength())),
			Radius:   config.Float(float64(in.Radius())),
			Action:   config.String(in.Action()),
		},
		Render: &config.RenderSnapshot{
			ColorMode:    config.String(s.render.ColorMode),
			CustomColor:  config.String(s.render.CustomColor),
			HueSpeed:     config.Float(s.render.HueSpeed),
			ShowDensity:  config.Bool(s.render.ShowDensity),
			ShowVelocity: config.Bool(s.render.ShowVelocity),
			GlowEffects:  config.Bool(s.render.GlowEffects),
		},
		Performance: &config.PerformanceSnapshot{
			CellSize:       config.Float(float64(s.grid.CellSize())),
			MaxPoolSize:    config.Int(s.grid.MaxPoolSize()),
			FrustumCulling: config.Bool(s.frustumCulling),
		},
	}
}

// ExportJSON marshals the full snapshot.
func (s *Simulation) ExportJSON() ([]byte, error) {
	return s.Export().Marshal()
}

// Import applies a snapshot: every present key is applied, absent keys
// keep their current value. The whole snapshot is validated first, so
// an invalid import mutates nothing.
func (s *Simulation) Import(snap *config.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("engine: nil snapshot")
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	s.apply(snap)
	return nil
}

// ImportJSON parses, validates and applies a snapshot document.
func (s *Simulation) ImportJSON(data []byte) error {
	snap, err := config.ParseSnapshot(data)
	if err != nil {
		return err
	}
	return s.Import(snap)
}

// apply writes a validated snapshot into the engine. Setter errors
// cannot occur here: Validate covers every setter precondition.
func (s *Simulation) apply(snap *config.Snapshot) {
	if g := snap.Gravity; g != nil {
		gr := s.pipeline.Gravity()
		if g.Strength != nil {
			gr.SetStrength(float32(*g.Strength))
		}
		if g.DirectionAngle != nil {
			gr.SetDirectionFromAngle(float32(*g.DirectionAngle))
		}
	}

	if b := snap.Bounds; b != nil {
		bo := s.pipeline.Bounds()
		if b.Bounce != nil {
			bo.SetBounce(float32(*b.Bounce))
		}
		if b.Friction != nil {
			bo.SetFriction(float32(*b.Friction))
		}
	}

	if c := snap.Collisions; c != nil && c.Enabled != nil {
		s.pipeline.Collisions().SetEnabled(*c.Enabled)
	}

	if f := snap.Flock; f != nil {
		fl := s.pipeline.Flock()
		if f.CohesionWeight != nil {
			fl.SetCohesionWeight(float32(*f.CohesionWeight))
		}
		if f.AlignmentWeight != nil {
			fl.SetAlignmentWeight(float32(*f.AlignmentWeight))
		}
		if f.SeparationWeight != nil {
			fl.SetSeparationWeight(float32(*f.SeparationWeight))
		}
		if f.SeparationRange != nil {
			fl.SetSeparationRange(float32(*f.SeparationRange))
		}
		if f.NeighborRadius != nil {
			fl.SetNeighborRadius(float32(*f.NeighborRadius))
		}
		if f.MaxSpeed != nil {
			fl.SetMaxSpeed(float32(*f.MaxSpeed))
		}
		if f.WanderWeight != nil {
			fl.SetWanderWeight(float32(*f.WanderWeight))
		}
	}

	if f := snap.Fluid; f != nil {
		fd := s.pipeline.Fluid()
		if f.Enabled != nil {
			fd.SetEnabled(*f.Enabled)
		}
		if f.InfluenceRadius != nil {
			fd.SetInfluenceRadius(float32(*f.InfluenceRadius))
		}
		if f.TargetDensity != nil {
			fd.SetTargetDensity(float32(*f.TargetDensity))
		}
		if f.PressureMultiplier != nil {
			fd.SetPressureMultiplier(float32(*f.PressureMultiplier))
		}
		if f.Viscosity != nil {
			fd.SetViscosity(float32(*f.Viscosity))
		}
		if f.NearPressureMultiplier != nil {
			fd.SetNearPressureMultiplier(float32(*f.NearPressureMultiplier))
		}
		if f.NearThreshold != nil {
			fd.SetNearThreshold(float32(*f.NearThreshold))
		}
		if f.EnableNearPressure != nil {
			fd.SetNearPressureEnabled(*f.EnableNearPressure)
		}
		if f.MaxAcceleration != nil {
			fd.SetMaxAcceleration(float32(*f.MaxAcceleration))
		}
	}

	if in := snap.Interaction; in != nil {
		ia := s.pipeline.Interaction()
		if in.Mode != nil {
			ia.SetMode(*in.Mode)
		}
		if in.Strength != nil {
			ia.SetStrength(float32(*in.Strength))
		}
		if in.Radius != nil {
			ia.SetRadius(float32(*in.Radius))
		}
		if in.Action != nil {
			ia.SetAction(*in.Action)
		}
	}

	if r := snap.Render; r != nil {
		if r.ColorMode != nil {
			s.render.ColorMode = *r.ColorMode
		}
		if r.CustomColor != nil {
			s.render.CustomColor = *r.CustomColor
		}
		if r.HueSpeed != nil {
			s.render.HueSpeed = *r.HueSpeed
		}
		if r.ShowDensity != nil {
			s.render.ShowDensity = *r.ShowDensity
		}
		if r.ShowVelocity != nil {
			s.render.ShowVelocity = *r.ShowVelocity
		}
		if r.GlowEffects != nil {
			s.render.GlowEffects = *r.GlowEffects
		}
	}

	if p := snap.Performance; p != nil {
		if p.CellSize != nil {
			s.grid.SetCellSize(float32(*p.CellSize))
		}
		if p.MaxPoolSize != nil {
			s.grid.SetMaxPoolSize(*p.MaxPoolSize)
		}
		if p.FrustumCulling != nil {
			s.frustumCulling = *p.FrustumCulling
		}
	}
}
