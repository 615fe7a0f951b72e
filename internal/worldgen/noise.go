// Package worldgen generates the chunked procedural terrain: a seeded 2D
// value-noise field (C4) and the client-side age-based chunk cache that
// materializes it on demand (C5).
package worldgen

import "math/rand"

// ChunkLength is the side length, in tiles, of one chunk (spec.md §6.3).
const ChunkLength = 16

// NoiseConfig parameterizes one call to Generate2D. All fields together are
// the sole inputs the output is a pure function of (spec.md §4.4: "purely
// deterministic in the inputs").
type NoiseConfig struct {
	Seed        int64
	Width       int
	Height      int
	OctaveCount int
	Bias        float32
}

// Generate2D produces a Width*Height grid of values in [0,1], row-major
// (index = y*Width+x). It seeds a RNG with Seed, fills a Width*Height
// scratch grid of uniform randoms, then for every output cell sums
// OctaveCount bilinear-blended samples at pitch Width>>o, scaling each
// octave's weight down by Bias and normalizing by the accumulated weight.
//
// Faithful to the original C implementation: the wrap-around on the second
// sample row uses Width for both axes, not Height, so callers that need
// square tiling should pass Width == Height (StarLore chunks always do).
func Generate2D(cfg NoiseConfig) []float32 {
	w, h := cfg.Width, cfg.Height
	length := w * h
	scratch := make([]float32, length)

	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := range scratch {
		scratch[i] = rng.Float32()
	}

	out := make([]float32, length)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			var noise, scaleAccum float32
			scale := float32(1.0)

			for o := 0; o < cfg.OctaveCount; o++ {
				pitch := w >> uint(o)
				if pitch == 0 {
					break
				}
				sx1 := (x / pitch) * pitch
				sy1 := (y / pitch) * pitch
				sx2 := (sx1 + pitch) % w
				sy2 := (sy1 + pitch) % w

				blendX := float32(x-sx1) / float32(pitch)
				blendY := float32(y-sy1) / float32(pitch)

				sampleT := (1-blendX)*scratch[sy1*w+sx1] + blendX*scratch[sy1*w+sx2]
				sampleB := (1-blendX)*scratch[sy2*w+sx1] + blendX*scratch[sy2*w+sx2]

				scaleAccum += scale
				noise += (blendY*(sampleB-sampleT) + sampleT) * scale
				scale /= cfg.Bias
			}

			out[y*w+x] = noise / scaleAccum
		}
	}
	return out
}
