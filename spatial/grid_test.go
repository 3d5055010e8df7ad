package spatial

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cazala/party-sub008/particle"
)

func liveParticleAt(x, y float32) particle.Particle {
	return particle.Particle{X: x, Y: y, Mass: 1, Radius: 1, Alive: true}
}

func TestQueryRadiusSuperset(t *testing.T) {
	// Every particle within the exact radius must appear in the result,
	// regardless of cell size.
	rng := rand.New(rand.NewSource(7))
	particles := make([]particle.Particle, 500)
	for i := range particles {
		particles[i] = liveParticleAt(rng.Float32()*800, rng.Float32()*600)
	}

	for _, cellSize := range []float32{10, 32, 64, 200} {
		g, err := NewGrid(800, 600, cellSize)
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}
		g.Rebuild(particles)

		cx, cy, r := float32(400), float32(300), float32(75)
		got := g.QueryRadiusInto(nil, cx, cy, r)
		found := make(map[int32]bool, len(got))
		for _, idx := range got {
			found[idx] = true
		}

		for i := range particles {
			dx := particles[i].X - cx
			dy := particles[i].Y - cy
			if math.Sqrt(float64(dx*dx+dy*dy)) <= float64(r) && !found[int32(i)] {
				t.Errorf("cellSize %v: particle %d within radius but missing from query", cellSize, i)
			}
		}
	}
}

func TestQueryExcludesDeadParticles(t *testing.T) {
	particles := []particle.Particle{
		liveParticleAt(10, 10),
		{X: 11, Y: 11, Mass: 1, Radius: 1, Alive: false},
		liveParticleAt(12, 12),
	}

	g, _ := NewGrid(100, 100, 16)
	g.Rebuild(particles)

	got := g.QueryRadiusInto(nil, 10, 10, 5)
	for _, idx := range got {
		if idx == 1 {
			t.Error("dead particle indexed by rebuild")
		}
	}
	if len(got) != 2 {
		t.Errorf("got %d candidates, want 2", len(got))
	}
}

func TestSetCellSizeValidation(t *testing.T) {
	g, _ := NewGrid(100, 100, 16)
	if err := g.SetCellSize(-4); err == nil {
		t.Error("negative cell size accepted")
	}
	if err := g.SetCellSize(0); err == nil {
		t.Error("zero cell size accepted")
	}
	// Prior value retained, applied only on rebuild.
	if got := g.CellSize(); got != 16 {
		t.Errorf("CellSize = %v after rejected set, want 16", got)
	}

	if err := g.SetCellSize(8); err != nil {
		t.Fatalf("SetCellSize(8): %v", err)
	}
	if got := g.CellSize(); got != 16 {
		t.Errorf("CellSize = %v before rebuild, want 16", got)
	}
	g.Rebuild(nil)
	if got := g.CellSize(); got != 8 {
		t.Errorf("CellSize = %v after rebuild, want 8", got)
	}
	cols, rows := g.Dims()
	if cols != 13 || rows != 13 {
		t.Errorf("Dims = (%d, %d), want (13, 13)", cols, rows)
	}
}

func TestPoolReuseAcrossRebuilds(t *testing.T) {
	particles := []particle.Particle{liveParticleAt(5, 5)}
	g, _ := NewGrid(100, 100, 10)

	// First rebuild allocates, the rest should reuse the same buffer.
	for i := 0; i < 10; i++ {
		g.Rebuild(particles)
	}

	stats := g.PoolStats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Hits != 9 {
		t.Errorf("Hits = %d, want 9", stats.Hits)
	}
	if got, want := stats.HitRate(), 0.9; math.Abs(got-want) > 1e-9 {
		t.Errorf("HitRate = %v, want %v", got, want)
	}
}

func TestPoolSizeZeroForcesFreshAllocation(t *testing.T) {
	particles := []particle.Particle{liveParticleAt(5, 5)}
	g, _ := NewGrid(100, 100, 10)
	g.SetMaxPoolSize(0)

	for i := 0; i < 5; i++ {
		g.Rebuild(particles)
	}

	// Retention disabled: every request is a miss, but queries still work.
	stats := g.PoolStats()
	if stats.Hits != 0 {
		t.Errorf("Hits = %d with pool disabled, want 0", stats.Hits)
	}
	if got := g.QueryRadiusInto(nil, 5, 5, 2); len(got) != 1 {
		t.Errorf("query returned %d candidates, want 1", len(got))
	}
}

func TestRebuildClearsPreviousBuckets(t *testing.T) {
	g, _ := NewGrid(100, 100, 10)
	g.Rebuild([]particle.Particle{liveParticleAt(5, 5), liveParticleAt(6, 6)})
	g.Rebuild([]particle.Particle{liveParticleAt(5, 5)})

	if got := g.QueryRadiusInto(nil, 5, 5, 3); len(got) != 1 {
		t.Errorf("stale bucket contents survived rebuild: got %d candidates, want 1", len(got))
	}
}
