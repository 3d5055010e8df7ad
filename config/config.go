// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all run configuration parameters. The runtime JSON
// parameter snapshot (snapshot.go) is a separate surface; this file
// configures a run before the engine exists.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Mode      string          `yaml:"mode"` // forces | trail
	Trail     TrailConfig     `yaml:"trail"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// World can be larger than the screen; the viewer handles the viewport.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT                   float64 `yaml:"dt"`
	GridCellSize         float64 `yaml:"grid_cell_size"`
	ConstraintIterations int     `yaml:"constraint_iterations"`
	Speed                float64 `yaml:"speed"` // simulation speed multiplier
	FrustumCulling       bool    `yaml:"frustum_culling"`
	MaxPoolSize          int     `yaml:"max_pool_size"`
}

// SpawnConfig holds the initial spawn request.
type SpawnConfig struct {
	Count    int            `yaml:"count"`
	Shape    string         `yaml:"shape"` // grid | random | circle | donut | square
	Spacing  float64        `yaml:"spacing"`
	Size     float64        `yaml:"size"`
	Mass     float64        `yaml:"mass"`
	Joints   bool           `yaml:"joints"`
	Colors   []string       `yaml:"colors"` // hex strings, cycled across particles
	Radius   float64        `yaml:"radius"` // circle/donut/square extent (0 = auto)
	Velocity VelocityConfig `yaml:"velocity"`
}

// VelocityConfig holds the initial velocity profile.
type VelocityConfig struct {
	Speed     float64 `yaml:"speed"`
	Direction string  `yaml:"direction"` // zero | random | outward | inward | angle
	Angle     float64 `yaml:"angle"`     // radians, with direction: angle
}

// TrailConfig holds trail-mode parameters.
type TrailConfig struct {
	Resolution  int          `yaml:"resolution"`
	DecayRate   float64      `yaml:"decay_rate"`
	DiffuseRate float64      `yaml:"diffuse_rate"`
	Deposit     float64      `yaml:"deposit"`
	Sensor      SensorConfig `yaml:"sensor"`
}

// SensorConfig holds the default sensor applied to spawned particles.
type SensorConfig struct {
	Follow          string  `yaml:"follow"` // none | any | same | different
	Flee            string  `yaml:"flee"`
	Distance        float64 `yaml:"distance"`
	Angle           float64 `yaml:"angle"` // radians
	Strength        float64 `yaml:"strength"`
	FleeAngle       float64 `yaml:"flee_angle"`
	ColorSimilarity float64 `yaml:"color_similarity"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Physics.DT as float32
	ScreenW32 float32
	ScreenH32 float32
	WorldW32  float32 // Effective world width
	WorldH32  float32 // Effective world height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// WriteYAML saves the configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa" into RGBA bytes.
func ParseHexColor(s string) (r, g, b, a uint8, err error) {
	if len(s) == 0 || s[0] != '#' {
		return 0, 0, 0, 0, fmt.Errorf("config: color %q must start with '#'", s)
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return 0, 0, 0, 0, fmt.Errorf("config: color %q must be #rrggbb or #rrggbbaa", s)
	}

	parse := func(h string) (uint8, error) {
		var v uint16
		for i := 0; i < 2; i++ {
			c := h[i]
			var d uint16
			switch {
			case c >= '0' && c <= '9':
				d = uint16(c - '0')
			case c >= 'a' && c <= 'f':
				d = uint16(c-'a') + 10
			case c >= 'A' && c <= 'F':
				d = uint16(c-'A') + 10
			default:
				return 0, fmt.Errorf("config: invalid hex digit %q", c)
			}
			v = v<<4 | d
		}
		return uint8(v), nil
	}

	if r, err = parse(hex[0:2]); err != nil {
		return 0, 0, 0, 0, err
	}
	if g, err = parse(hex[2:4]); err != nil {
		return 0, 0, 0, 0, err
	}
	if b, err = parse(hex[4:6]); err != nil {
		return 0, 0, 0, 0, err
	}
	a = 255
	if len(hex) == 8 {
		if a, err = parse(hex[6:8]); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	return r, g, b, a, nil
}
