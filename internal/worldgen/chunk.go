package worldgen

import "github.com/starlore/starlore/internal/protocol"

// ChunkCoord identifies a chunk by integer coordinates in chunk space (one
// unit = ChunkLength tiles).
type ChunkCoord struct {
	X, Y int32
}

// Chunk is ChunkLength*ChunkLength tiles, a pure function of (seed, X, Y,
// octaves, bias) — spec.md §3: "chunks are therefore derivable on the
// client without transmission."
type Chunk struct {
	Coord ChunkCoord
	Tiles [ChunkLength * ChunkLength]protocol.TileType
	Age   int32
}

// tileFor maps a noise sample to a TileType using spec.md §4.4's fixed
// thresholds.
func tileFor(v float32) protocol.TileType {
	switch {
	case v < 0.40:
		return protocol.TileWater
	case v < 0.45:
		return protocol.TileDirt
	case v < 0.80:
		return protocol.TileGrass
	default:
		return protocol.TileStone
	}
}

// foldSeed folds a chunk coordinate into the map seed so adjoining chunks
// don't alias each other's scratch grid, while staying a pure function of
// (seed, coord). salt lets independent noise channels (tile height vs.
// decorative-object placement) over the same chunk stay decorrelated.
func foldSeed(seed uint32, coord ChunkCoord, salt int64) int64 {
	h := uint64(seed) ^ (uint64(int64(coord.X)) * 0x9E3779B97F4A7C15) ^ (uint64(int64(coord.Y)) * 0xC2B2AE3D27D4EB4F)
	return int64(h) ^ salt
}

// GenerateChunk materializes the chunk at coord for the given GameMap
// parameters. Each chunk is noise-sampled independently over its own
// ChunkLength x ChunkLength window, seeded by folding the chunk coordinate
// into the map seed so adjoining chunks don't alias each other's scratch
// grid while staying a pure function of (seed, coord, octaves, bias).
func GenerateChunk(seed uint32, octaveCount int32, bias float32, coord ChunkCoord) Chunk {
	values := Generate2D(NoiseConfig{
		Seed:        foldSeed(seed, coord, 0),
		Width:       ChunkLength,
		Height:      ChunkLength,
		OctaveCount: int(octaveCount),
		Bias:        bias,
	})

	var c Chunk
	c.Coord = coord
	for i, v := range values {
		c.Tiles[i] = tileFor(v)
	}
	return c
}
