package field

import (
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/spatial/r2"
)

// steerCache maps cache-space cells to previously computed steer targets.
// A cache is never cleared in place; invalidation swaps in a new one.
type steerCache struct {
	targets sync.Map // Cell -> r2.Vec
}

func (c *steerCache) get(k Cell) (r2.Vec, bool) {
	v, ok := c.targets.Load(k)
	if !ok {
		return r2.Vec{}, false
	}
	return v.(r2.Vec), true
}

// put stores a target unless another reader stored one first, and returns
// the value that ended up in the cache.
func (c *steerCache) put(k Cell, target r2.Vec) r2.Vec {
	v, _ := c.targets.LoadOrStore(k, target)
	return v.(r2.Vec)
}

// cacheSlot holds the live cache for one channel.
type cacheSlot struct {
	ptr    atomic.Pointer[steerCache]
	hits   atomic.Int64
	misses atomic.Int64
}

func (s *cacheSlot) load() *steerCache {
	return s.ptr.Load()
}

func (s *cacheSlot) reset() {
	s.ptr.Store(&steerCache{})
}
