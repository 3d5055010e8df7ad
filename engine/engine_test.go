package engine

import (
	"math"
	"testing"

	"github.com/cazala/party-sub008/particle"
)

func newTestSim(t *testing.T) *Simulation {
	t.Helper()
	s, err := New(Options{Width: 1000, Height: 1000, Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStepPreservesParticleCount(t *testing.T) {
	counts := []int{0, 1, 10, 100, 500}

	for _, n := range counts {
		s := newTestSim(t)
		if _, err := s.Spawn(SpawnOptions{Count: n, Shape: ShapeRandom}); err != nil {
			t.Fatalf("Spawn(%d): %v", n, err)
		}

		for i := 0; i < 10; i++ {
			s.Step()
		}

		if got := s.Store().Live(); got != n {
			t.Errorf("live after steps = %d, want %d", got, n)
		}
	}
}

func TestStepWithAllForcesDisabled(t *testing.T) {
	s := newTestSim(t)
	for _, f := range s.Pipeline().Forces() {
		f.SetEnabled(false)
	}
	if _, err := s.Spawn(SpawnOptions{Count: 50, Shape: ShapeRandom}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	s.Step()

	if got := s.Store().Live(); got != 50 {
		t.Errorf("live = %d, want 50", got)
	}
}

func TestGravityBoundsScenario(t *testing.T) {
	s := newTestSim(t)

	g := s.Pipeline().Gravity()
	g.SetStrength(500)
	g.SetDirection(0, 1)
	if err := s.Pipeline().Bounds().SetBounce(0.5); err != nil {
		t.Fatalf("SetBounce: %v", err)
	}

	if _, err := s.Spawn(SpawnOptions{
		Count:   100,
		Shape:   ShapeGrid,
		Spacing: 25,
		Size:    10,
	}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	for i := 0; i < 600; i++ {
		s.Step()
	}

	slots := s.Store().Slots()
	for i := range slots {
		p := &slots[i]
		if !p.Alive {
			continue
		}
		if p.Y > 1000 || p.Y < 0 || p.X > 1000 || p.X < 0 {
			t.Fatalf("particle %d escaped bounds: (%v, %v)", i, p.X, p.Y)
		}
	}
}

func TestCollisionsSeparateOverlappingPair(t *testing.T) {
	s := newTestSim(t)
	s.Pipeline().Gravity().SetStrength(0)
	s.Pipeline().Collisions().SetEnabled(true)

	a, err := s.Store().Spawn(particle.Particle{X: 495, Y: 500, Mass: 1, Radius: 10})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	b, _ := s.Store().Spawn(particle.Particle{X: 505, Y: 500, Mass: 1, Radius: 10})

	for i := 0; i < 240; i++ {
		s.Step()
	}

	pa, pb := s.Store().Get(a), s.Store().Get(b)
	dist := math.Hypot(float64(pb.X-pa.X), float64(pb.Y-pa.Y))
	if dist < float64(pa.Radius+pb.Radius)-0.5 {
		t.Errorf("pair still overlapping after steps: dist = %v, want >= %v", dist, pa.Radius+pb.Radius)
	}
}

func TestFrustumCullingSkipsForcesButIntegrates(t *testing.T) {
	s := newTestSim(t)
	s.Pipeline().Gravity().SetStrength(500)
	s.SetFrustumCulling(true)
	if err := s.SetCullRect(0, 0, 100, 100); err != nil {
		t.Fatalf("SetCullRect: %v", err)
	}

	outside, _ := s.Store().Spawn(particle.Particle{X: 500, Y: 500, VX: 60, Mass: 1, Radius: 5})
	inside, _ := s.Store().Spawn(particle.Particle{X: 50, Y: 50, Mass: 1, Radius: 5})

	s.Step()

	po := s.Store().Get(outside)
	if po.VY != 0 {
		t.Errorf("culled particle gained velocity from gravity: VY = %v", po.VY)
	}
	if po.X <= 500 {
		t.Errorf("culled particle did not integrate last velocity: X = %v", po.X)
	}

	pi := s.Store().Get(inside)
	if pi.VY <= 0 {
		t.Errorf("in-view particle did not accelerate: VY = %v", pi.VY)
	}
}

func TestEmitActionSpawnsAtPointer(t *testing.T) {
	s := newTestSim(t)
	if err := s.Pipeline().Interaction().SetAction("emit"); err != nil {
		t.Fatalf("SetAction: %v", err)
	}
	s.SetPointer(300, 300, true)

	s.Step()

	if got := s.Store().Live(); got != emitPerStep {
		t.Errorf("live after emit step = %d, want %d", got, emitPerStep)
	}
	slots := s.Store().Slots()
	for i := range slots {
		p := &slots[i]
		if !p.Alive {
			continue
		}
		if math.Abs(float64(p.X-300)) > 10 || math.Abs(float64(p.Y-300)) > 10 {
			t.Errorf("emitted particle far from pointer: (%v, %v)", p.X, p.Y)
		}
	}
}

func TestSetSpeedValidation(t *testing.T) {
	s := newTestSim(t)
	if err := s.SetSpeed(0); err == nil {
		t.Error("zero speed accepted")
	}
	if err := s.SetSpeed(-1); err == nil {
		t.Error("negative speed accepted")
	}
	if err := s.SetSpeed(2); err != nil {
		t.Errorf("SetSpeed(2): %v", err)
	}
	if got := s.Speed(); got != 2 {
		t.Errorf("speed = %v, want 2", got)
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.Spawn(SpawnOptions{Count: 25, Shape: ShapeGrid, Joints: true}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	s.Step()

	s.Clear()

	if got := s.Store().Live(); got != 0 {
		t.Errorf("live after clear = %d, want 0", got)
	}
	if got := s.Trail().Field().Total(); got != 0 {
		t.Errorf("trail intensity after clear = %v, want 0", got)
	}

	// The cleared engine is still steppable.
	s.Step()
}

func TestTrailModeStepDepositsAndDecays(t *testing.T) {
	s, err := New(Options{Width: 1000, Height: 1000, Seed: 1, Mode: ModeTrail})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := s.Spawn(SpawnOptions{Count: 10, Shape: ShapeRandom}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	s.Step()
	if got := s.Trail().Field().Total(); got <= 0 {
		t.Fatalf("no trail deposited in trail mode: total = %v", got)
	}

	// Forces mode must not touch the field.
	if err := s.SetMode(ModeForces); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	before := s.Trail().Field().Total()
	s.Step()
	if got := s.Trail().Field().Total(); got != before {
		t.Errorf("trail field advanced in forces mode: %v -> %v", before, got)
	}
}

func TestFlushWindowStats(t *testing.T) {
	s := newTestSim(t)
	if _, err := s.Spawn(SpawnOptions{Count: 40, Shape: ShapeRandom}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	for i := 0; i < 5; i++ {
		s.Step()
	}

	stats := s.FlushWindowStats()
	if stats.Spawned != 40 {
		t.Errorf("spawned = %d, want 40", stats.Spawned)
	}
	if stats.LiveCount != 40 {
		t.Errorf("live = %d, want 40", stats.LiveCount)
	}
}
