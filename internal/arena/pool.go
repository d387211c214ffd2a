// Package arena implements gotensor's pool allocator: a stack of named
// arenas that owns every float32 and int32 buffer allocated through it
// while it is active, so thousands of training-step intermediates can be
// released together in O(1) instead of individually.
package arena

import (
	"sync/atomic"

	"github.com/itohio/gotensor/internal/errs"
	"github.com/itohio/gotensor/internal/gtlog"
)

// maxStackDepth bounds the pool stack, matching spec.md's "a reasonable
// limit is 16".
const maxStackDepth = 16

// DefaultPool is the pool that is implicitly present even if the client
// never calls BeginMalloc.
const DefaultPool int64 = 0

// Pool is a named arena: an ordered list of memory blocks charged to it.
type Pool struct {
	id      int64
	float32 [][]float32
	int32s  [][]int32
	live    bool
}

// Allocator is the process-wide pool allocator state described in
// spec.md §4.1. It is not safe for concurrent use by multiple
// goroutines — spec.md explicitly scopes thread-safety out.
type Allocator struct {
	pools   map[int64]*Pool
	stack   []int64
	started bool
	nextID  int64
}

var global = newAllocator()

func newAllocator() *Allocator {
	a := &Allocator{pools: make(map[int64]*Pool)}
	a.pools[DefaultPool] = &Pool{id: DefaultPool, live: true}
	a.stack = []int64{DefaultPool}
	return a
}

// Initialize sets up the per-process allocator state. Safe to call more
// than once; later calls are no-ops unless Finalize was called first.
func Initialize() {
	if global.started {
		return
	}
	global = newAllocator()
	global.started = true
}

// Finalize tears down the per-process allocator state, releasing every
// pool's buffers.
func Finalize() {
	global = newAllocator()
	atomic.StoreInt64(&allocCount, 0)
}

// BeginMalloc pushes pool id onto the allocator's pool stack. All
// subsequent allocations belong to id until a matching EndMalloc.
func BeginMalloc(id int64) {
	if len(global.stack) >= maxStackDepth {
		errs.Allocf("pool stack overflow: depth %d exceeds limit %d", len(global.stack), maxStackDepth)
	}
	p, ok := global.pools[id]
	if !ok || !p.live {
		p = &Pool{id: id, live: true}
		global.pools[id] = p
	}
	global.stack = append(global.stack, id)
	gtlog.Log.Trace().Int64("pool", id).Int("depth", len(global.stack)).Msg("arena: begin_malloc")
}

// EndMalloc pops the top pool off the allocator's stack. Popping below
// the implicit default pool is a fatal allocation error.
func EndMalloc() {
	if len(global.stack) <= 1 {
		errs.Allocf("end_malloc: pool stack already at the default pool")
	}
	global.stack = global.stack[:len(global.stack)-1]
	gtlog.Log.Trace().Int("depth", len(global.stack)).Msg("arena: end_malloc")
}

// Free releases every block ever charged to id, regardless of the
// current stack state. Freeing a pool that is still on the stack leaves
// the stack entry in place; allocating into it afterwards starts a
// fresh arena.
func Free(id int64) {
	p, ok := global.pools[id]
	if !ok {
		return
	}
	p.float32 = nil
	p.int32s = nil
	p.live = false
	gtlog.Log.Debug().Int64("pool", id).Msg("arena: free")
}

// activePool returns the pool on top of the stack, creating it if it
// was freed while still on the stack.
func activePool() *Pool {
	id := global.stack[len(global.stack)-1]
	p, ok := global.pools[id]
	if !ok || !p.live {
		p = &Pool{id: id, live: true}
		global.pools[id] = p
	}
	return p
}

// AllocFloat32 allocates a zero-filled float32 buffer of length n,
// charged to the pool currently on top of the allocator's stack.
func AllocFloat32(n int) []float32 {
	if n < 0 {
		errs.Allocf("negative allocation size %d", n)
	}
	buf := make([]float32, n)
	p := activePool()
	p.float32 = append(p.float32, buf)
	atomic.AddInt64(&allocCount, 1)
	return buf
}

// AllocInt32 allocates a zero-filled int32 buffer of length n (used for
// argmax/argmin index buffers), charged to the active pool.
func AllocInt32(n int) []int32 {
	if n < 0 {
		errs.Allocf("negative allocation size %d", n)
	}
	buf := make([]int32, n)
	p := activePool()
	p.int32s = append(p.int32s, buf)
	atomic.AddInt64(&allocCount, 1)
	return buf
}

// allocCount is a process-wide diagnostic counter exposed through
// AllocCount; it is not part of the external contract.
var allocCount int64

// AllocCount returns the number of buffers allocated since process
// start (or the last Finalize). Diagnostic only.
func AllocCount() int64 { return atomic.LoadInt64(&allocCount) }

// ActiveID returns the id of the pool currently on top of the stack.
func ActiveID() int64 { return global.stack[len(global.stack)-1] }

// StackDepth returns the current pool stack depth (always >= 1).
func StackDepth() int { return len(global.stack) }
