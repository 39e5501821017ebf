package game

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/pthm-cable/trails/systems"
)

// parallelThreshold is the minimum agent count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// passKind selects the per-agent work a chunk performs.
type passKind uint8

const (
	passAgents passKind = iota // goal, target, steer, integrate
	passWalls                  // wall avoidance
)

// passTally counts per-agent outcomes within one chunk.
type passTally struct {
	pickups  int
	explored int
	dropped  int
	walls    int
	trips    []int32 // round-trip ticks of each delivery
}

func (t *passTally) reset() {
	t.pickups, t.explored, t.dropped, t.walls = 0, 0, 0, 0
	t.trips = t.trips[:0]
}

// workerScratch holds per-chunk state. Chunk i always uses scratch i, so
// each chunk draws from its own RNG stream.
type workerScratch struct {
	rng   *rand.Rand
	tally passTally
}

// workChunk represents a range of agents for a worker to process.
type workChunk struct {
	start, end int
	slot       int
	kind       passKind
}

// parallelState holds resources for the parallel agent passes.
type parallelState struct {
	scratches  []workerScratch
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(numWorkers int, seed int64) *parallelState {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].rng = rand.New(rand.NewSource(seed + int64(i) + 1))
		scratches[i].tally.trips = make([]int32, 0, 16)
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
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
func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.runChunk(chunk, &p.scratches[chunk.slot])
			p.doneChan <- struct{}{}
		}
	}
}

// runPass applies one kind of per-agent work to every agent, then merges
// the chunk tallies into telemetry. Agents only write their own slot and
// read the field, so chunks need no locking.
func (g *Game) runPass(kind passKind) {
	n := len(g.agents)
	if n == 0 {
		return
	}

	for i := range g.parallel.scratches {
		g.parallel.scratches[i].tally.reset()
	}

	if n < parallelThreshold || g.parallel.numWorkers == 1 {
		g.runChunk(workChunk{start: 0, end: n, kind: kind}, &g.parallel.scratches[0])
	} else {
		g.computeParallel(n, kind)
	}

	g.mergeTallies()
}

// computeParallel dispatches work to the worker pool.
func (g *Game) computeParallel(n int, kind passKind) {
	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	chunksDispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		g.parallel.workChan <- workChunk{start: start, end: end, slot: w, kind: kind}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-g.parallel.doneChan
	}
}

// runChunk processes a range of agents for a single worker.
func (g *Game) runChunk(c workChunk, s *workerScratch) {
	switch c.kind {
	case passWalls:
		for i := c.start; i < c.end; i++ {
			if systems.AvoidWalls(&g.agents[i], s.rng, g.params) {
				s.tally.walls++
			}
		}
	case passAgents:
		for i := c.start; i < c.end; i++ {
			res := systems.UpdateAgent(&g.agents[i], g.field, g.landmarks, s.rng, g.params, g.tick)
			switch res.Transition {
			case systems.PickedUp:
				s.tally.pickups++
			case systems.Delivered:
				s.tally.trips = append(s.tally.trips, res.TripTicks)
			}
			if res.Explored {
				s.tally.explored++
			}
			if res.Dropped {
				s.tally.dropped++
			}
		}
	}
}

// mergeTallies folds every chunk tally into the stats collector.
func (g *Game) mergeTallies() {
	for i := range g.parallel.scratches {
		t := &g.parallel.scratches[i].tally
		g.collector.RecordPickups(t.pickups)
		g.collector.RecordExploreSteps(t.explored)
		g.collector.RecordDroppedSteps(t.dropped)
		g.collector.RecordWallCorrections(t.walls)
		for _, trip := range t.trips {
			g.collector.RecordDelivery(trip)
		}
		g.deliveries += len(t.trips)
		g.pickups += t.pickups
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
