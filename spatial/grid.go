// Package spatial provides the uniform bucket grid used for neighbor
// queries. The grid is rebuilt from scratch every step because particle
// count and world bounds can change arbitrarily between frames.
package spatial

import (
	"fmt"

	"github.com/cazala/party-sub008/particle"
)

// DefaultMaxPoolSize bounds the number of bucket buffers the grid retains.
const DefaultMaxPoolSize = 8

// Grid maps cell coordinates (floor(x/cellSize), floor(y/cellSize)) to
// lists of particle slot indices.
type Grid struct {
	cellSize     float32
	nextCellSize float32 // applied on the next Rebuild
	cols, rows   int
	width        float32
	height       float32

	buf  *bucketBuffer
	pool *bufferPool
}

// NewGrid creates a grid covering a width x height world.
func NewGrid(width, height, cellSize float32) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("spatial: world size must be positive, got %vx%v", width, height)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("spatial: cell size must be positive, got %v", cellSize)
	}
	return &Grid{
		cellSize:     cellSize,
		nextCellSize: cellSize,
		width:        width,
		height:       height,
		pool:         newBufferPool(DefaultMaxPoolSize),
	}, nil
}

// SetCellSize changes bucket granularity. Takes effect on the next
// Rebuild. Non-positive sizes are rejected and the prior value retained.
func (g *Grid) SetCellSize(size float32) error {
	if size <= 0 {
		return fmt.Errorf("spatial: cell size must be positive, got %v", size)
	}
	g.nextCellSize = size
	return nil
}

// CellSize returns the cell size in effect for the current buckets.
func (g *Grid) CellSize() float32 {
	return g.cellSize
}

// Resize changes the world extent covered by the grid. Takes effect on
// the next Rebuild.
func (g *Grid) Resize(width, height float32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("spatial: world size must be positive, got %vx%v", width, height)
	}
	g.width = width
	g.height = height
	return nil
}

// Dims returns the current (cols, rows) bucket extent.
func (g *Grid) Dims() (cols, rows int) {
	return g.cols, g.rows
}

// Rebuild recomputes bucket assignment for all live particles in O(n).
// The previous bucket buffer is returned to the pool and a buffer for the
// new extent is checked out, so steady-state rebuilds allocate nothing.
func (g *Grid) Rebuild(particles []particle.Particle) {
	g.cellSize = g.nextCellSize
	g.cols = int(g.width/g.cellSize) + 1
	g.rows = int(g.height/g.cellSize) + 1

	g.pool.Put(g.buf)
	g.buf = g.pool.Get(g.cols * g.rows)

	for i := range particles {
		if !particles[i].Alive {
			continue
		}
		idx := g.cellIndex(particles[i].X, particles[i].Y)
		g.buf.cells[idx] = append(g.buf.cells[idx], int32(i))
	}
}

// QueryRadiusInto appends the slot indices of every particle whose cell
// overlaps the disk around (x, y) to dst and returns the updated slice.
// The result is a cell-granularity over-approximation: every particle
// within exact distance radius is included, but some beyond it may be
// too. Callers re-check exact distance. Reuse dst across calls to avoid
// allocations.
func (g *Grid) QueryRadiusInto(dst []int32, x, y, radius float32) []int32 {
	if g.buf == nil || radius < 0 {
		return dst
	}

	cellRadius := int(radius/g.cellSize) + 1
	centerCol := clampInt(int(x/g.cellSize), 0, g.cols-1)
	centerRow := clampInt(int(y/g.cellSize), 0, g.rows-1)

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			dst = append(dst, g.buf.cells[row*g.cols+col]...)
		}
	}
	return dst
}

// PoolStats reports cumulative bucket-buffer reuse for diagnostics.
func (g *Grid) PoolStats() PoolStats {
	return g.pool.Stats()
}

// MaxPoolSize returns the bucket-buffer retention cap.
func (g *Grid) MaxPoolSize() int {
	return g.pool.MaxSize()
}

// SetMaxPoolSize bounds retained buffers to cap memory. Exceeding it
// forces fresh allocation instead of reuse; never an error.
func (g *Grid) SetMaxPoolSize(n int) {
	g.pool.SetMaxSize(n)
}

// cellIndex returns the flat bucket index for a world position, clamping
// out-of-bounds positions to the border cells.
func (g *Grid) cellIndex(x, y float32) int {
	col := clampInt(int(x/g.cellSize), 0, g.cols-1)
	row := clampInt(int(y/g.cellSize), 0, g.rows-1)
	return row*g.cols + col
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
