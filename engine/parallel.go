package engine

import (
	"runtime"
	"sync"

	"github.com/cazala/party-sub008/forces"
)

// parallelThreshold is the minimum particle count to use parallel
// processing. Below this, single-threaded is faster due to goroutine
// overhead.
const parallelThreshold = 64

// workChunk is a range of particle slots for a worker to process.
type workChunk struct {
	start, end int
	fn         forces.ChunkFunc
}

// workerPool runs chunk functions across persistent worker goroutines.
// Its Run method satisfies forces.Runner: it returns only after every
// chunk has completed, so successive calls act as barriers between
// passes.
type workerPool struct {
	numWorkers int
	scratches  []forces.Scratch
	slotCount  int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newWorkerPool() *workerPool {
	numWorkers := runtime.GOMAXPROCS(0)
	scratches := make([]forces.Scratch, numWorkers)
	for i := range scratches {
		scratches[i].Neighbors = make([]int32, 0, 64)
	}
	return &workerPool{
		numWorkers: numWorkers,
		scratches:  scratches,
	}
}

// setSlotCount sets the slot range Run covers. Called once per step.
func (p *workerPool) setSlotCount(n int) {
	p.slotCount = n
}

// Run executes fn over every particle slot and returns when done.
func (p *workerPool) Run(fn forces.ChunkFunc) {
	n := p.slotCount
	if n == 0 {
		return
	}

	if n < parallelThreshold || p.numWorkers == 1 {
		fn(0, n, &p.scratches[0])
		return
	}

	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// start launches persistent worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *workerPool) worker(workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}
