package config

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the runtime parameter snapshot exchanged with external
// collaborators (viewer panel, save/load). Every leaf is a pointer so
// an import can tell "absent, keep current value" from "present, apply":
// partial updates are first-class. Validation runs over the whole
// snapshot before anything is applied, so a failed import mutates
// nothing.
type Snapshot struct {
	Gravity     *GravitySnapshot     `json:"gravity,omitempty"`
	Bounds      *BoundsSnapshot      `json:"bounds,omitempty"`
	Collisions  *CollisionsSnapshot  `json:"collisions,omitempty"`
	Flock       *FlockSnapshot       `json:"flock,omitempty"`
	Fluid       *FluidSnapshot       `json:"fluid,omitempty"`
	Interaction *InteractionSnapshot `json:"interaction,omitempty"`
	Render      *RenderSnapshot      `json:"render,omitempty"`
	Performance *PerformanceSnapshot `json:"performance,omitempty"`
}

type GravitySnapshot struct {
	Strength       *float64 `json:"strength,omitempty"`
	DirectionAngle *float64 `json:"directionAngle,omitempty"`
}

type BoundsSnapshot struct {
	Bounce   *float64 `json:"bounce,omitempty"`
	Friction *float64 `json:"friction,omitempty"`
}

type CollisionsSnapshot struct {
	Enabled *bool `json:"enabled,omitempty"`
}

type FlockSnapshot struct {
	CohesionWeight   *float64 `json:"cohesionWeight,omitempty"`
	AlignmentWeight  *float64 `json:"alignmentWeight,omitempty"`
	SeparationWeight *float64 `json:"separationWeight,omitempty"`
	SeparationRange  *float64 `json:"separationRange,omitempty"`
	NeighborRadius   *float64 `json:"neighborRadius,omitempty"`
	MaxSpeed         *float64 `json:"maxSpeed,omitempty"`
	WanderWeight     *float64 `json:"wanderWeight,omitempty"`
}

type FluidSnapshot struct {
	Enabled                *bool    `json:"enabled,omitempty"`
	InfluenceRadius        *float64 `json:"influenceRadius,omitempty"`
	TargetDensity          *float64 `json:"targetDensity,omitempty"`
	PressureMultiplier     *float64 `json:"pressureMultiplier,omitempty"`
	Viscosity              *float64 `json:"viscosity,omitempty"`
	NearPressureMultiplier *float64 `json:"nearPressureMultiplier,omitempty"`
	NearThreshold          *float64 `json:"nearThreshold,omitempty"`
	EnableNearPressure     *bool    `json:"enableNearPressure,omitempty"`
	MaxAcceleration        *float64 `json:"maxAcceleration,omitempty"`
}

type InteractionSnapshot struct {
	Mode     *string  `json:"mode,omitempty"`
	Strength *float64 `json:"strength,omitempty"`
	Radius   *float64 `json:"radius,omitempty"`
	Action   *string  `json:"action,omitempty"`
}

type RenderSnapshot struct {
	ColorMode    *string  `json:"colorMode,omitempty"`
	CustomColor  *string  `json:"customColor,omitempty"`
	HueSpeed     *float64 `json:"hueSpeed,omitempty"`
	ShowDensity  *bool    `json:"showDensity,omitempty"`
	ShowVelocity *bool    `json:"showVelocity,omitempty"`
	GlowEffects  *bool    `json:"glowEffects,omitempty"`
}

type PerformanceSnapshot struct {
	CellSize       *float64 `json:"cellSize,omitempty"`
	MaxPoolSize    *int     `json:"maxPoolSize,omitempty"`
	FrustumCulling *bool    `json:"frustumCulling,omitempty"`
}

// ParseSnapshot decodes a JSON snapshot. A malformed document fails
// here, before any validation or application.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parsing snapshot: %w", err)
	}
	return &s, nil
}

// Marshal encodes the snapshot as indented JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("config: marshaling snapshot: %w", err)
	}
	return data, nil
}

// Validate checks every present field against its allowed range.
// The caller applies the snapshot only after Validate succeeds, which
// is what makes a failed import atomic.
func (s *Snapshot) Validate() error {
	if b := s.Bounds; b != nil {
		if b.Bounce != nil && (*b.Bounce < 0 || *b.Bounce > 1) {
			return fmt.Errorf("config: bounds.bounce must be in [0,1], got %v", *b.Bounce)
		}
		if b.Friction != nil && (*b.Friction < 0 || *b.Friction > 1) {
			return fmt.Errorf("config: bounds.friction must be in [0,1], got %v", *b.Friction)
		}
	}

	if f := s.Flock; f != nil {
		if err := requirePositive(f.SeparationRange, "flock.separationRange"); err != nil {
			return err
		}
		if err := requirePositive(f.NeighborRadius, "flock.neighborRadius"); err != nil {
			return err
		}
		if err := requirePositive(f.MaxSpeed, "flock.maxSpeed"); err != nil {
			return err
		}
	}

	if f := s.Fluid; f != nil {
		if err := requirePositive(f.InfluenceRadius, "fluid.influenceRadius"); err != nil {
			return err
		}
		if err := requirePositive(f.NearThreshold, "fluid.nearThreshold"); err != nil {
			return err
		}
		if err := requirePositive(f.MaxAcceleration, "fluid.maxAcceleration"); err != nil {
			return err
		}
		if f.TargetDensity != nil && *f.TargetDensity < 0 {
			return fmt.Errorf("config: fluid.targetDensity must be >= 0, got %v", *f.TargetDensity)
		}
	}

	if in := s.Interaction; in != nil {
		if in.Mode != nil && *in.Mode != "attract" && *in.Mode != "repel" {
			return fmt.Errorf("config: interaction.mode must be attract or repel, got %q", *in.Mode)
		}
		if in.Action != nil && *in.Action != "force" && *in.Action != "emit" {
			return fmt.Errorf("config: interaction.action must be force or emit, got %q", *in.Action)
		}
		if err := requirePositive(in.Radius, "interaction.radius"); err != nil {
			return err
		}
	}

	if p := s.Performance; p != nil {
		if err := requirePositive(p.CellSize, "performance.cellSize"); err != nil {
			return err
		}
		if p.MaxPoolSize != nil && *p.MaxPoolSize < 0 {
			return fmt.Errorf("config: performance.maxPoolSize must be >= 0, got %d", *p.MaxPoolSize)
		}
	}

	return nil
}

func requirePositive(v *float64, name string) error {
	if v != nil && *v <= 0 {
		return fmt.Errorf("config: %s must be > 0, got %v", name, *v)
	}
	return nil
}

// Pointer helpers for building snapshots.

func Float(v float64) *float64 { return &v }
func Bool(v bool) *bool        { return &v }
func String(v string) *string  { return &v }
func Int(v int) *int           { return &v }
