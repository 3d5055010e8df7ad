package trail

import (
	"math"
	"testing"

	"github.com/cazala/party-sub008/particle"
)

func newTestField(t *testing.T) *Field {
	t.Helper()
	f, err := NewField(32, 32, 320, 320)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return f
}

func TestDecayIsExactPerStep(t *testing.T) {
	f := newTestField(t)
	f.SetDiffuseRate(0)
	if err := f.SetDecayRate(0.1); err != nil {
		t.Fatalf("SetDecayRate: %v", err)
	}

	white := particle.Color{R: 255, G: 255, B: 255, A: 255}
	f.Deposit(160, 160, 100, white)

	want := 100.0
	for step := 0; step < 50; step++ {
		f.Step()
		want *= 0.9
		got := f.Total()
		if math.Abs(got-want)/want > 1e-4 {
			t.Fatalf("step %d: total = %v, want %v", step, got, want)
		}
	}

	for i, v := range f.Intensity() {
		if v < 0 {
			t.Fatalf("cell %d went negative: %v", i, v)
		}
	}
}

func TestDiffusionSpreadsToNeighbors(t *testing.T) {
	f := newTestField(t)
	f.SetDecayRate(0)
	f.SetDiffuseRate(0.5)

	white := particle.Color{R: 255, G: 255, B: 255, A: 255}
	f.Deposit(165, 165, 100, white)

	before := f.Sample(165, 165)
	neighborBefore := f.Sample(165+10, 165)

	f.Step()

	after := f.Sample(165, 165)
	neighborAfter := f.Sample(165+10, 165)

	if after >= before {
		t.Errorf("deposit cell did not lose intensity: %v -> %v", before, after)
	}
	if neighborAfter <= neighborBefore {
		t.Errorf("neighbor cell did not gain intensity: %v -> %v", neighborBefore, neighborAfter)
	}
	for i, v := range f.Intensity() {
		if v < 0 {
			t.Fatalf("cell %d went negative: %v", i, v)
		}
	}
}

func TestRateValidation(t *testing.T) {
	f := newTestField(t)
	if err := f.SetDecayRate(-0.1); err == nil {
		t.Error("negative decay rate accepted")
	}
	if err := f.SetDecayRate(1.5); err == nil {
		t.Error("decay rate > 1 accepted")
	}
	if err := f.SetDiffuseRate(2); err == nil {
		t.Error("diffuse rate > 1 accepted")
	}
}

func TestSampleColorMatchesDeposit(t *testing.T) {
	f := newTestField(t)
	red := particle.Color{R: 255, G: 0, B: 0, A: 255}
	f.Deposit(50, 50, 10, red)

	c, intensity := f.SampleColor(50, 50)
	if intensity <= 0 {
		t.Fatal("no intensity at deposit cell")
	}
	if c.R < 250 || c.G > 5 || c.B > 5 {
		t.Errorf("sampled color = %+v, want red", c)
	}

	// Empty cells classify as nothing.
	if _, got := f.SampleColor(300, 300); got != 0 {
		t.Errorf("empty cell intensity = %v, want 0", got)
	}
}

func depositAtProbe(f *Field, px, py, heading, angle, distance float32, amount float32, c particle.Color) {
	a := float64(heading + angle)
	f.Deposit(px+distance*float32(math.Cos(a)), py+distance*float32(math.Sin(a)), amount, c)
}

func TestFollowSteersTowardStrongestProbe(t *testing.T) {
	f := newTestField(t)
	f.SetDiffuseRate(0)
	f.SetDecayRate(0)
	sys := NewSystem(f)
	sys.SetDepositAmount(0)

	white := particle.Color{R: 255, G: 255, B: 255, A: 255}
	particles := []particle.Particle{
		{X: 160, Y: 160, VX: 100, VY: 0, Mass: 1, Radius: 2, Alive: true, Color: white},
	}
	s := sys.SensorAt(0)
	s.Follow = BehaviorAny
	s.Flee = BehaviorNone

	// Mark only the left probe (heading - angle).
	depositAtProbe(f, 160, 160, 0, -s.Angle, s.Distance, 50, white)

	sys.Step(particles)

	p := &particles[0]
	if p.FY >= 0 {
		t.Errorf("FY = %v, want negative (steer toward left probe)", p.FY)
	}
	if p.FX <= 0 {
		t.Errorf("FX = %v, want positive (probe is ahead)", p.FX)
	}
}

func TestFleeRotatesAwayFromStrongestProbe(t *testing.T) {
	f := newTestField(t)
	f.SetDiffuseRate(0)
	f.SetDecayRate(0)
	sys := NewSystem(f)
	sys.SetDepositAmount(0)

	white := particle.Color{R: 255, G: 255, B: 255, A: 255}
	particles := []particle.Particle{
		{X: 160, Y: 160, VX: 100, VY: 0, Mass: 1, Radius: 2, Alive: true, Color: white},
	}
	s := sys.SensorAt(0)
	s.Follow = BehaviorNone
	s.Flee = BehaviorAny

	depositAtProbe(f, 160, 160, 0, -s.Angle, s.Distance, 50, white)

	sys.Step(particles)

	if got := particles[0].FY; got <= 0 {
		t.Errorf("FY = %v, want positive (rotate away from left probe)", got)
	}
}

func TestColorConditionedSensing(t *testing.T) {
	red := particle.Color{R: 255, G: 0, B: 0, A: 255}
	blue := particle.Color{R: 0, G: 0, B: 255, A: 255}

	tests := []struct {
		name      string
		behavior  Behavior
		trail     particle.Color
		wantSteer bool
	}{
		{"same color matches own trail", BehaviorSameColor, red, true},
		{"same color ignores other trail", BehaviorSameColor, blue, false},
		{"different color ignores own trail", BehaviorDifferentColor, red, false},
		{"different color matches other trail", BehaviorDifferentColor, blue, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestField(t)
			f.SetDiffuseRate(0)
			f.SetDecayRate(0)
			sys := NewSystem(f)
			sys.SetDepositAmount(0)

			particles := []particle.Particle{
				{X: 160, Y: 160, VX: 100, VY: 0, Mass: 1, Radius: 2, Alive: true, Color: red},
			}
			s := sys.SensorAt(0)
			s.Follow = tt.behavior
			s.Flee = BehaviorNone

			depositAtProbe(f, 160, 160, 0, -s.Angle, s.Distance, 50, tt.trail)

			sys.Step(particles)

			steered := particles[0].FX != 0 || particles[0].FY != 0
			if steered != tt.wantSteer {
				t.Errorf("steered = %v, want %v", steered, tt.wantSteer)
			}
		})
	}
}

func TestAssignResetsReusedSlot(t *testing.T) {
	f := newTestField(t)
	sys := NewSystem(f)

	s := sys.SensorAt(3)
	s.Follow = BehaviorDifferentColor
	s.Strength = 9999

	sys.Assign(3)
	got := sys.SensorAt(3)
	if got.Follow != sys.Default().Follow || got.Strength != sys.Default().Strength {
		t.Errorf("reused slot kept stale sensor: %+v", got)
	}
}

func TestStationaryParticleDoesNotSense(t *testing.T) {
	f := newTestField(t)
	f.SetDiffuseRate(0)
	sys := NewSystem(f)
	sys.SetDepositAmount(0)

	white := particle.Color{R: 255, G: 255, B: 255, A: 255}
	f.Deposit(180, 160, 50, white)

	particles := []particle.Particle{
		{X: 160, Y: 160, Mass: 1, Radius: 2, Alive: true, Color: white},
	}
	sys.Step(particles)

	if particles[0].FX != 0 || particles[0].FY != 0 {
		t.Errorf("stationary particle steered: F=(%v, %v)", particles[0].FX, particles[0].FY)
	}
}
