package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/cazala/party-sub008/config"
	"github.com/cazala/party-sub008/engine"
	"github.com/cazala/party-sub008/particle"
	"github.com/cazala/party-sub008/telemetry"
	"github.com/cazala/party-sub008/trail"
	"github.com/cazala/party-sub008/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotPath := flag.String("snapshot", "", "JSON parameter snapshot to apply at startup")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Use config stats window if not overridden by CLI
	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	sim, err := buildSimulation(cfg, rngSeed, statsWindowSec)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	defer sim.Close()

	if *snapshotPath != "" {
		data, err := os.ReadFile(*snapshotPath)
		if err != nil {
			slog.Error("failed to read snapshot", "path", *snapshotPath, "error", err)
			os.Exit(1)
		}
		if err := sim.ImportJSON(data); err != nil {
			slog.Error("failed to apply snapshot", "path", *snapshotPath, "error", err)
			os.Exit(1)
		}
	}

	if err := initialSpawn(sim, cfg); err != nil {
		slog.Error("initial spawn failed", "error", err)
		os.Exit(1)
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to open output dir", "dir", *outputDir, "error", err)
		os.Exit(1)
	}
	defer out.Close()

	if snap, err := sim.ExportJSON(); err == nil {
		if err := out.WriteConfigSnapshot(snap); err != nil {
			slog.Warn("failed to write config snapshot", "error", err)
		}
	}

	flush := func() {
		if !sim.ShouldFlushStats() {
			return
		}
		stats := sim.FlushWindowStats()
		perf := sim.Perf().Stats()
		if *logStats {
			stats.LogStats()
			perf.LogStats()
		}
		if err := out.WriteTelemetry(stats); err != nil {
			slog.Warn("failed to write telemetry", "error", err)
		}
		if err := out.WritePerf(perf, sim.Tick()); err != nil {
			slog.Warn("failed to write perf stats", "error", err)
		}
		if err := out.WriteEvents(sim.DrainEvents()); err != nil {
			slog.Warn("failed to write events", "error", err)
		}
	}

	if *headless {
		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"stats_window", statsWindowSec,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)

		steps := *stepsPerUpdate
		if steps < 1 {
			steps = 1
		}
		for {
			for i := 0; i < steps; i++ {
				sim.Step()
			}
			flush()

			if *maxTicks > 0 && int(sim.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", sim.Tick())
				return
			}
		}
	}

	// Graphical mode
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Particle Party")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := viewer.New(sim, viewer.Options{
		ScreenW:        int32(cfg.Screen.Width),
		ScreenH:        int32(cfg.Screen.Height),
		StepsPerUpdate: *stepsPerUpdate,
	})
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()
		sim.Perf().RecordFrame()
		flush()

		if *maxTicks > 0 && int(sim.Tick()) >= *maxTicks {
			break
		}
	}
}

// buildSimulation maps the loaded config onto engine options and
// applies the settings the options struct does not carry.
func buildSimulation(cfg *config.Config, seed int64, statsWindowSec float64) (*engine.Simulation, error) {
	mode, err := engine.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	sim, err := engine.New(engine.Options{
		Width:           cfg.Derived.WorldW32,
		Height:          cfg.Derived.WorldH32,
		DT:              cfg.Derived.DT32,
		CellSize:        float32(cfg.Physics.GridCellSize),
		Seed:            seed,
		Mode:            mode,
		TrailResolution: cfg.Trail.Resolution,
		StatsWindowSec:  statsWindowSec,
		PerfWindow:      cfg.Telemetry.PerfCollectorWindow,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Physics.Speed > 0 {
		if err := sim.SetSpeed(float32(cfg.Physics.Speed)); err != nil {
			sim.Close()
			return nil, err
		}
	}
	if cfg.Physics.ConstraintIterations > 0 {
		if err := sim.Solver().SetIterations(cfg.Physics.ConstraintIterations); err != nil {
			sim.Close()
			return nil, err
		}
	}
	if cfg.Physics.MaxPoolSize > 0 {
		sim.Grid().SetMaxPoolSize(cfg.Physics.MaxPoolSize)
	}
	sim.SetFrustumCulling(cfg.Physics.FrustumCulling)

	if err := configureTrail(sim, cfg); err != nil {
		sim.Close()
		return nil, err
	}
	return sim, nil
}

func configureTrail(sim *engine.Simulation, cfg *config.Config) error {
	field := sim.Trail().Field()
	if err := field.SetDecayRate(float32(cfg.Trail.DecayRate)); err != nil {
		return err
	}
	if err := field.SetDiffuseRate(float32(cfg.Trail.DiffuseRate)); err != nil {
		return err
	}
	if cfg.Trail.Deposit > 0 {
		if err := sim.Trail().SetDepositAmount(float32(cfg.Trail.Deposit)); err != nil {
			return err
		}
	}

	follow, err := trail.ParseBehavior(cfg.Trail.Sensor.Follow)
	if err != nil {
		return err
	}
	flee, err := trail.ParseBehavior(cfg.Trail.Sensor.Flee)
	if err != nil {
		return err
	}

	sensor := trail.DefaultSensor()
	sensor.Follow = follow
	sensor.Flee = flee
	if cfg.Trail.Sensor.Distance > 0 {
		sensor.Distance = float32(cfg.Trail.Sensor.Distance)
	}
	if cfg.Trail.Sensor.Angle > 0 {
		sensor.Angle = float32(cfg.Trail.Sensor.Angle)
	}
	if cfg.Trail.Sensor.Strength > 0 {
		sensor.Strength = float32(cfg.Trail.Sensor.Strength)
	}
	if cfg.Trail.Sensor.FleeAngle > 0 {
		sensor.FleeAngle = float32(cfg.Trail.Sensor.FleeAngle)
	}
	if cfg.Trail.Sensor.ColorSimilarity > 0 {
		sensor.ColorSimilarity = float32(cfg.Trail.Sensor.ColorSimilarity)
	}
	sim.Trail().SetDefault(sensor)
	return nil
}

// initialSpawn places the configured starting population.
func initialSpawn(sim *engine.Simulation, cfg *config.Config) error {
	if cfg.Spawn.Count <= 0 {
		return nil
	}

	shape, err := engine.ParseShape(cfg.Spawn.Shape)
	if err != nil {
		return err
	}
	dir, err := engine.ParseDirection(cfg.Spawn.Velocity.Direction)
	if err != nil {
		return err
	}

	colors := make([]particle.Color, 0, len(cfg.Spawn.Colors))
	for _, hex := range cfg.Spawn.Colors {
		r, g, b, a, err := config.ParseHexColor(hex)
		if err != nil {
			return err
		}
		colors = append(colors, particle.Color{R: r, G: g, B: b, A: a})
	}

	refs, err := sim.Spawn(engine.SpawnOptions{
		Count:   cfg.Spawn.Count,
		Shape:   shape,
		Spacing: float32(cfg.Spawn.Spacing),
		Radius:  float32(cfg.Spawn.Radius),
		Size:    float32(cfg.Spawn.Size),
		Mass:    float32(cfg.Spawn.Mass),
		Colors:  colors,
		Joints:  cfg.Spawn.Joints,
		Velocity: engine.VelocityProfile{
			Speed:     float32(cfg.Spawn.Velocity.Speed),
			Direction: dir,
			Angle:     float32(cfg.Spawn.Velocity.Angle),
		},
	})
	if err != nil {
		return err
	}

	slog.Info("initial population spawned",
		"count", len(refs),
		"shape", shape,
		"joints", cfg.Spawn.Joints,
	)
	return nil
}
