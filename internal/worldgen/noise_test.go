package worldgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// P3: for fixed (seed, octaves, bias), noise(x, y) is pure — two separate
// runs produce identical grids.
func TestGenerate2DDeterministic(t *testing.T) {
	cfg := NoiseConfig{Seed: 42, Width: 16, Height: 16, OctaveCount: 4, Bias: 2.0}
	a := Generate2D(cfg)
	b := Generate2D(cfg)
	require.Equal(t, a, b)
}

func TestGenerate2DDifferentSeedsDiffer(t *testing.T) {
	a := Generate2D(NoiseConfig{Seed: 1, Width: 16, Height: 16, OctaveCount: 4, Bias: 2.0})
	b := Generate2D(NoiseConfig{Seed: 2, Width: 16, Height: 16, OctaveCount: 4, Bias: 2.0})
	require.NotEqual(t, a, b)
}

func TestGenerate2DValuesBounded(t *testing.T) {
	values := Generate2D(NoiseConfig{Seed: 7, Width: 16, Height: 16, OctaveCount: 4, Bias: 2.0})
	for _, v := range values {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1.01)) // headroom for float32 rounding in the normalized sum
	}
}

func TestGenerateChunkDeterministic(t *testing.T) {
	a := GenerateChunk(99, 4, 2.0, ChunkCoord{X: 3, Y: -2})
	b := GenerateChunk(99, 4, 2.0, ChunkCoord{X: 3, Y: -2})
	require.Equal(t, a, b)
}

func TestGenerateChunkDiffersByCoordinate(t *testing.T) {
	a := GenerateChunk(99, 4, 2.0, ChunkCoord{X: 0, Y: 0})
	b := GenerateChunk(99, 4, 2.0, ChunkCoord{X: 1, Y: 0})
	require.NotEqual(t, a.Tiles, b.Tiles)
}
