package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolIsActiveInitially(t *testing.T) {
	Finalize()
	assert.Equal(t, DefaultPool, ActiveID())
	assert.Equal(t, 1, StackDepth())
}

func TestBeginEndMallocStackDiscipline(t *testing.T) {
	Finalize()
	BeginMalloc(7)
	assert.Equal(t, int64(7), ActiveID())
	assert.Equal(t, 2, StackDepth())
	EndMalloc()
	assert.Equal(t, DefaultPool, ActiveID())
}

func TestEndMallocBelowDefaultPanics(t *testing.T) {
	Finalize()
	assert.Panics(t, func() { EndMalloc() })
}

func TestBeginMallocOverflowPanics(t *testing.T) {
	Finalize()
	for i := 0; i < maxStackDepth-1; i++ {
		BeginMalloc(int64(i + 1))
	}
	assert.Panics(t, func() { BeginMalloc(999) })
}

func TestFreeIsolatesPools(t *testing.T) {
	Finalize()
	BeginMalloc(1)
	a := AllocFloat32(4)
	EndMalloc()

	BeginMalloc(2)
	b := AllocFloat32(4)
	EndMalloc()

	require.Len(t, a, 4)
	require.Len(t, b, 4)

	Free(1)
	// a's backing array is unaffected by freeing its pool — Free drops
	// the pool's bookkeeping, not live Go slices already handed out.
	assert.Len(t, a, 4)

	// Allocating into pool 1 again after Free starts a fresh arena.
	BeginMalloc(1)
	c := AllocFloat32(2)
	assert.Len(t, c, 2)
	EndMalloc()
}

func TestAllocFloat32NegativeSizePanics(t *testing.T) {
	Finalize()
	assert.Panics(t, func() { AllocFloat32(-1) })
}
