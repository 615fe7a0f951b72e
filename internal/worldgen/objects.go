package worldgen

import (
	"math/rand"

	"github.com/starlore/starlore/internal/protocol"
)

// objectSalt decorrelates the decorative-object RNG channel from the
// tile-height noise channel over the same chunk.
const objectSalt = 0x5DEECE66D

// spawn chances and tile-type restrictions grounded on
// original_source/src/server/server.c's disabled (#if 0) vegetation
// placement: trees/bushes on Grass, lilies on Water, rocks on Stone, each
// at a roughly 1% rate so a 16x16 chunk gets a handful of props.
const objectSpawnChance = 0.01

// GenerateObjects produces the decorative props (trees, bushes, rocks,
// lilies) for the chunk at coord, deterministic in the same inputs as
// GenerateChunk plus a decorrelated RNG channel.
func GenerateObjects(seed uint32, octaveCount int32, bias float32, coord ChunkCoord) []protocol.GameObject {
	chunk := GenerateChunk(seed, octaveCount, bias, coord)
	rng := rand.New(rand.NewSource(foldSeed(seed, coord, objectSalt)))

	var objs []protocol.GameObject
	for i, tile := range chunk.Tiles {
		if rng.Float32() >= objectSpawnChance {
			continue
		}
		switch tile {
		case protocol.TileGrass:
			t := protocol.GameObjectTree
			if rng.Float32() < 0.5 {
				t = protocol.GameObjectBush
			}
			objs = append(objs, protocol.GameObject{Type: t, TileIndex: int32(i)})
		case protocol.TileWater:
			objs = append(objs, protocol.GameObject{Type: protocol.GameObjectLily, TileIndex: int32(i)})
		case protocol.TileStone:
			objs = append(objs, protocol.GameObject{Type: protocol.GameObjectRock, TileIndex: int32(i)})
		}
	}
	return objs
}
