package worldgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateObjectsDeterministic(t *testing.T) {
	a := GenerateObjects(1, 4, 2.0, ChunkCoord{X: 0, Y: 0})
	b := GenerateObjects(1, 4, 2.0, ChunkCoord{X: 0, Y: 0})
	require.Equal(t, a, b)
}

func TestGenerateObjectsWithinChunkBounds(t *testing.T) {
	objs := GenerateObjects(1, 4, 2.0, ChunkCoord{X: 2, Y: -1})
	for _, o := range objs {
		require.GreaterOrEqual(t, o.TileIndex, int32(0))
		require.Less(t, o.TileIndex, int32(ChunkLength*ChunkLength))
	}
}
