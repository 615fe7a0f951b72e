package worldgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func coords(pairs ...[2]int32) []ChunkCoord {
	out := make([]ChunkCoord, len(pairs))
	for i, p := range pairs {
		out[i] = ChunkCoord{X: p[0], Y: p[1]}
	}
	return out
}

// P4: |cache| never exceeds CACHE_MAX; an eviction always removes a
// max-age entry; a freshly rendered visible chunk has age 0.
func TestCacheNeverExceedsCapacity(t *testing.T) {
	c := NewCache(MapParams{Seed: 1, OctaveCount: 4, Bias: 2.0}, 4)
	for x := int32(0); x < 20; x++ {
		c.RenderVisible([]ChunkCoord{{X: x, Y: 0}})
		require.LessOrEqual(t, c.Len(), 4)
	}
}

// E5: CACHE_MAX=4. Camera sweeps (0,0),(1,0),(2,0),(3,0) → cache full, all
// age 0. Next visible set {(1,0),(2,0),(3,0),(4,0)}: on render, (0,0) ages
// to 1, others stay 0; requesting (4,0) evicts (0,0).
func TestCacheEvictsMaxAgeOnOverflow(t *testing.T) {
	c := NewCache(MapParams{Seed: 5, OctaveCount: 4, Bias: 2.0}, 4)

	c.RenderVisible(coords([2]int32{0, 0}, [2]int32{1, 0}, [2]int32{2, 0}, [2]int32{3, 0}))
	require.Equal(t, 4, c.Len())
	for _, ch := range c.chunks {
		require.Equal(t, int32(0), ch.Age)
	}

	c.RenderVisible(coords([2]int32{1, 0}, [2]int32{2, 0}, [2]int32{3, 0}, [2]int32{4, 0}))

	require.Equal(t, 4, c.Len())
	require.Nil(t, c.find(ChunkCoord{X: 0, Y: 0}), "evicted chunk must not remain cached")
	got := c.find(ChunkCoord{X: 4, Y: 0})
	require.NotNil(t, got)
	require.Equal(t, int32(0), got.Age)
}

func TestCacheHitResetsAgeToZero(t *testing.T) {
	c := NewCache(MapParams{Seed: 2, OctaveCount: 4, Bias: 2.0}, 4)
	c.RenderVisible(coords([2]int32{0, 0}))
	c.RenderVisible(coords([2]int32{1, 0})) // (0,0) now outside visible, ages to 1
	c.RenderVisible(coords([2]int32{0, 0})) // hit: age resets to 0
	ch := c.find(ChunkCoord{X: 0, Y: 0})
	require.NotNil(t, ch)
	require.Equal(t, int32(0), ch.Age)
}

func TestCacheAtMostOneEntryPerCoordinate(t *testing.T) {
	c := NewCache(MapParams{Seed: 3, OctaveCount: 4, Bias: 2.0}, 4)
	c.RenderVisible(coords([2]int32{0, 0}))
	c.RenderVisible(coords([2]int32{0, 0}))
	c.RenderVisible(coords([2]int32{0, 0}))
	require.Equal(t, 1, c.Len())
}
