package joints

import (
	"math"
	"testing"

	"github.com/cazala/party-sub008/particle"
)

func dist(a, b *particle.Particle) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

func TestJointConvergesToRestLength(t *testing.T) {
	tests := []struct {
		name     string
		startSep float32
	}{
		{"stretched", 120},
		{"compressed", 8},
		{"already at rest", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := particle.NewStore(4)
			a, _ := store.Spawn(particle.Particle{X: 0, Y: 0, Mass: 1, Radius: 2})
			b, _ := store.Spawn(particle.Particle{X: tt.startSep, Y: 0, Mass: 1, Radius: 2})
			if err := store.AddJoint(a, b, 50, 1); err != nil {
				t.Fatalf("AddJoint: %v", err)
			}

			s := NewSolver()
			for i := 0; i < 20; i++ {
				s.Relax(store)
			}

			got := dist(store.Get(a), store.Get(b))
			if math.Abs(got-50) > 0.5 {
				t.Errorf("separation = %v after relaxation, want ~50", got)
			}
		})
	}
}

func TestPinnedEndpointNeverMoves(t *testing.T) {
	store := particle.NewStore(4)
	a, _ := store.Spawn(particle.Particle{X: 0, Y: 0, Radius: 2, Pinned: true})
	b, _ := store.Spawn(particle.Particle{X: 200, Y: 0, Mass: 1, Radius: 2})
	store.AddJoint(a, b, 50, 1)

	s := NewSolver()
	for i := 0; i < 20; i++ {
		s.Relax(store)
	}

	pa := store.Get(a)
	if pa.X != 0 || pa.Y != 0 {
		t.Errorf("pinned endpoint moved to (%v, %v)", pa.X, pa.Y)
	}
	if got := dist(pa, store.Get(b)); math.Abs(got-50) > 0.5 {
		t.Errorf("free endpoint separation = %v, want ~50", got)
	}
}

func TestSymmetricRelaxationByInverseMass(t *testing.T) {
	store := particle.NewStore(4)
	// Equal masses split the correction evenly around the midpoint.
	a, _ := store.Spawn(particle.Particle{X: -50, Y: 0, Mass: 1, Radius: 2})
	b, _ := store.Spawn(particle.Particle{X: 50, Y: 0, Mass: 1, Radius: 2})
	store.AddJoint(a, b, 60, 1)

	s := NewSolver()
	s.Relax(store)

	pa, pb := store.Get(a), store.Get(b)
	if math.Abs(float64(pa.X+pb.X)) > 1e-4 {
		t.Errorf("midpoint drifted: a.X=%v b.X=%v", pa.X, pb.X)
	}
}

func TestDanglingJointDroppedLazily(t *testing.T) {
	store := particle.NewStore(4)
	a, _ := store.Spawn(particle.Particle{X: 0, Y: 0, Mass: 1, Radius: 2})
	b, _ := store.Spawn(particle.Particle{X: 100, Y: 0, Mass: 1, Radius: 2})
	c, _ := store.Spawn(particle.Particle{X: 0, Y: 100, Mass: 1, Radius: 2})
	store.AddJoint(a, b, 50, 1)
	store.AddJoint(a, c, 50, 1)

	// Destroying an endpoint leaves the joint in place until the next
	// solve, which must tolerate and drop it.
	store.Remove(b)
	if got := len(store.Joints()); got != 2 {
		t.Fatalf("joints eagerly swept: %d, want 2 before solve", got)
	}

	s := NewSolver()
	s.Relax(store)

	if got := len(store.Joints()); got != 1 {
		t.Errorf("joints after solve = %d, want 1", got)
	}

	// Slot reuse must not resurrect the dropped joint's endpoint.
	store.Spawn(particle.Particle{X: 500, Y: 500, Mass: 1, Radius: 2})
	s.Relax(store)
	if got := len(store.Joints()); got != 1 {
		t.Errorf("joints after reuse = %d, want 1", got)
	}
}
