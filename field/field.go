package field

import (
	"image/color"
	"math"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/trails/config"
)

// Channel identifies one of the two independent pheromone fields.
type Channel uint8

const (
	// ToFood is laid by agents carrying food home and followed by agents seeking food.
	ToFood Channel = iota
	// ToHome is laid by agents seeking food and followed by agents returning home.
	ToHome

	NumChannels = 2
)

func (c Channel) String() string {
	switch c {
	case ToFood:
		return "to_food"
	case ToHome:
		return "to_home"
	default:
		return "unknown"
	}
}

// Options configures a Field.
type Options struct {
	SignalCellSize    float64 // world units per signal cell
	CacheCellSize     float64 // world units per steer-cache cell
	MaxStrength       float64
	ReinforceFraction float64
	ScanRadius        float64 // world units
	Colors            [NumChannels]color.RGBA
}

// OptionsFromConfig extracts field options from the simulation config.
func OptionsFromConfig(cfg *config.Config) Options {
	p := cfg.Pheromone
	rgba := func(c [3]uint8) color.RGBA { return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255} }
	return Options{
		SignalCellSize:    p.SignalCellSize,
		CacheCellSize:     p.CacheCellSize,
		MaxStrength:       p.MaxStrength,
		ReinforceFraction: p.ReinforceFraction,
		ScanRadius:        p.ScanRadius,
		Colors:            [NumChannels]color.RGBA{ToFood: rgba(p.ToFoodColor), ToHome: rgba(p.ToHomeColor)},
	}
}

// channel holds one grid with its index and steer cache.
type channel struct {
	mu    sync.RWMutex // guards grid
	grid  *DecayGrid
	index atomic.Pointer[SpatialIndex]
	cache cacheSlot
	color color.RGBA
}

// Field owns both pheromone channels. SteerTarget may be called from many
// goroutines at once; the mutating methods serialize against it per channel.
type Field struct {
	opts      Options
	scanCells float64 // scan radius in signal-cell units
	channels  [NumChannels]channel
}

// New creates an empty field. Options must already be validated.
func New(opts Options) *Field {
	f := &Field{
		opts:      opts,
		scanCells: opts.ScanRadius / opts.SignalCellSize,
	}
	for i := range f.channels {
		ch := &f.channels[i]
		ch.grid = NewDecayGrid(opts.MaxStrength, opts.ReinforceFraction)
		ch.index.Store(emptyIndex)
		ch.cache.reset()
		ch.color = opts.Colors[i]
	}
	return f
}

// Options returns the options the field was built with.
func (f *Field) Options() Options { return f.opts }

// SignalCell returns the signal-space cell for a world position.
func (f *Field) SignalCell(pos r2.Vec) Cell {
	return CellAt(pos.X, pos.Y, f.opts.SignalCellSize)
}

// CacheCell returns the cache-space cell for a world position.
func (f *Field) CacheCell(pos r2.Vec) Cell {
	return CellAt(pos.X, pos.Y, f.opts.CacheCellSize)
}

// CellCenter maps a signal cell back to world space.
func (f *Field) CellCenter(c Cell) r2.Vec {
	return r2.Vec{X: float64(c.X) * f.opts.SignalCellSize, Y: float64(c.Y) * f.opts.SignalCellSize}
}

// Deposit adds signal at the signal cell containing pos.
func (f *Field) Deposit(ch Channel, pos r2.Vec, amount float64) {
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) {
		return
	}
	c := &f.channels[ch]
	cell := f.SignalCell(pos)
	c.mu.Lock()
	c.grid.Deposit(cell, amount)
	c.mu.Unlock()
}

// Decay lowers every cell of both channels by rate.
func (f *Field) Decay(rate float64) {
	for i := range f.channels {
		c := &f.channels[i]
		c.mu.Lock()
		c.grid.Decay(rate)
		c.mu.Unlock()
	}
}

// Prune drops zeroed cells from both channels and returns the total removed.
func (f *Field) Prune() int {
	removed := 0
	for i := range f.channels {
		c := &f.channels[i]
		c.mu.Lock()
		removed += c.grid.Prune()
		c.mu.Unlock()
	}
	return removed
}

// Reindex rebuilds both spatial indexes from the current positive cells.
// Readers keep using the previous index until the new one is swapped in.
func (f *Field) Reindex() {
	for i := range f.channels {
		c := &f.channels[i]
		c.mu.RLock()
		cells := c.grid.appendPositive(make([]Cell, 0, c.grid.Len()))
		c.mu.RUnlock()
		c.index.Store(BuildIndex(cells))
	}
}

// InvalidateSteerCache discards every cached steer target.
func (f *Field) InvalidateSteerCache() {
	for i := range f.channels {
		f.channels[i].cache.reset()
	}
}

// queryScratch holds reusable buffers for uncached steer queries.
type queryScratch struct {
	cells  []Cell
	points []WeightedPoint
}

var scratchPool = sync.Pool{
	New: func() any {
		return &queryScratch{
			cells:  make([]Cell, 0, 64),
			points: make([]WeightedPoint, 0, 64),
		}
	},
}

// SteerTarget returns the strength-weighted centroid of signal cells within
// the scan radius of pos. Results are reused for every position in the same
// cache cell until the cache is invalidated. Absence is never cached.
func (f *Field) SteerTarget(ch Channel, pos r2.Vec) (r2.Vec, bool) {
	c := &f.channels[ch]
	key := f.CacheCell(pos)

	cache := c.cache.load()
	if t, ok := cache.get(key); ok {
		c.cache.hits.Add(1)
		return t, true
	}
	c.cache.misses.Add(1)

	s := scratchPool.Get().(*queryScratch)
	defer scratchPool.Put(s)

	s.cells = c.index.Load().Within(f.SignalCell(pos), f.scanCells, s.cells[:0])
	if len(s.cells) == 0 {
		return r2.Vec{}, false
	}

	// Membership comes from the snapshot, strength from the live grid.
	s.points = s.points[:0]
	c.mu.RLock()
	for _, cell := range s.cells {
		w, _ := c.grid.Strength(cell)
		p := f.CellCenter(cell)
		s.points = append(s.points, WeightedPoint{X: p.X, Y: p.Y, W: w})
	}
	c.mu.RUnlock()

	target, ok := WeightedCentroid(s.points)
	if !ok {
		return r2.Vec{}, false
	}
	return cache.put(key, target), true
}

// WeightedPoint is a world position weighted by signal strength.
type WeightedPoint struct {
	X, Y, W float64
}

// WeightedCentroid returns sum(p*w)/sum(w). It reports false when the
// total weight is not positive.
func WeightedCentroid(points []WeightedPoint) (r2.Vec, bool) {
	var sx, sy, sw float64
	for _, p := range points {
		if !(p.W > 0) {
			continue
		}
		sx += p.X * p.W
		sy += p.Y * p.W
		sw += p.W
	}
	if !(sw > 0) {
		return r2.Vec{}, false
	}
	t := r2.Vec{X: sx / sw, Y: sy / sw}
	if math.IsNaN(t.X) || math.IsNaN(t.Y) || math.IsInf(t.X, 0) || math.IsInf(t.Y, 0) {
		return r2.Vec{}, false
	}
	return t, true
}

// ChannelSnapshot is a read-only copy of one channel for renderers.
type ChannelSnapshot struct {
	Channel     Channel
	Color       color.RGBA
	CellSize    float64
	MaxStrength float64
	Cells       map[Cell]float64
}

// Snapshot copies the live cells of a channel.
func (f *Field) Snapshot(ch Channel) ChannelSnapshot {
	c := &f.channels[ch]
	c.mu.RLock()
	cells := c.grid.Values()
	c.mu.RUnlock()
	return ChannelSnapshot{
		Channel:     ch,
		Color:       c.color,
		CellSize:    f.opts.SignalCellSize,
		MaxStrength: f.opts.MaxStrength,
		Cells:       cells,
	}
}

// ChannelStats summarizes one channel.
type ChannelStats struct {
	LiveCells   int     // cells in the grid, including zeroed ones
	Indexed     int     // cells in the current spatial index
	Total       float64 // summed strength
	CacheHits   int64   // cumulative
	CacheMisses int64   // cumulative
}

// Stats returns a summary of every channel.
func (f *Field) Stats() [NumChannels]ChannelStats {
	var out [NumChannels]ChannelStats
	for i := range f.channels {
		c := &f.channels[i]
		c.mu.RLock()
		out[i].LiveCells = c.grid.Len()
		out[i].Total = c.grid.Total()
		c.mu.RUnlock()
		out[i].Indexed = c.index.Load().Len()
		out[i].CacheHits = c.cache.hits.Load()
		out[i].CacheMisses = c.cache.misses.Load()
	}
	return out
}

// Strength returns the live strength of a signal cell.
func (f *Field) Strength(ch Channel, cell Cell) float64 {
	c := &f.channels[ch]
	c.mu.RLock()
	v, _ := c.grid.Strength(cell)
	c.mu.RUnlock()
	return v
}
