package spatial

// bucketBuffer is one rebuild's worth of cell buckets. Buffers are pooled
// by capacity (cell count) so fluctuating particle counts and cell sizes
// don't churn allocations.
type bucketBuffer struct {
	cells [][]int32
}

// PoolStats reports cumulative buffer reuse.
type PoolStats struct {
	Hits   uint64
	Misses uint64
}

// HitRate returns reused / total requests, in [0,1]. Zero requests is 0.
func (s PoolStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// bufferPool retains bucket buffers keyed by capacity. Retention is capped
// at maxSize buffers across all keys; past the cap, Put drops the buffer
// and the next Get falls back to a fresh allocation. That trade-off is
// correctness-neutral, only the hit rate suffers.
type bufferPool struct {
	byCapacity map[int][]*bucketBuffer
	retained   int
	maxSize    int
	stats      PoolStats
}

func newBufferPool(maxSize int) *bufferPool {
	return &bufferPool{
		byCapacity: make(map[int][]*bucketBuffer),
		maxSize:    maxSize,
	}
}

// Get returns a cleared buffer with exactly capacity cells.
func (p *bufferPool) Get(capacity int) *bucketBuffer {
	if bufs := p.byCapacity[capacity]; len(bufs) > 0 {
		buf := bufs[len(bufs)-1]
		p.byCapacity[capacity] = bufs[:len(bufs)-1]
		p.retained--
		p.stats.Hits++
		for i := range buf.cells {
			buf.cells[i] = buf.cells[i][:0]
		}
		return buf
	}

	p.stats.Misses++
	return &bucketBuffer{cells: make([][]int32, capacity)}
}

// Put returns a buffer to the pool, or drops it when the pool is full.
func (p *bufferPool) Put(buf *bucketBuffer) {
	if buf == nil {
		return
	}
	if p.retained >= p.maxSize {
		return
	}
	capacity := len(buf.cells)
	p.byCapacity[capacity] = append(p.byCapacity[capacity], buf)
	p.retained++
}

// SetMaxSize adjusts the retention cap. Shrinking does not evict already
// retained buffers; they drain naturally as capacities change.
func (p *bufferPool) SetMaxSize(n int) {
	if n < 0 {
		n = 0
	}
	p.maxSize = n
}

func (p *bufferPool) MaxSize() int {
	return p.maxSize
}

func (p *bufferPool) Stats() PoolStats {
	return p.stats
}
