package worldgen

// MapParams is the immutable world map description received once from the
// server at join time (GameWorldInit) and used to materialize every chunk.
type MapParams struct {
	Seed        uint32
	OctaveCount int32
	Bias        float32
}

// Cache is the ordered, bounded chunk container described in spec.md §4.4:
// lookup is linear (the bound is small), a miss generates the chunk and
// evicts the max-age entry if the cache is already at capacity, and every
// non-visible cached chunk has its age incremented by 1 after a miss. Not
// safe for concurrent use; the renderer owns one Cache per client.
type Cache struct {
	params  MapParams
	maxSize int
	chunks  []*Chunk
}

// NewCache creates a Cache bounded at maxSize entries (the CACHE_MAX
// tunable) for the given map parameters.
func NewCache(params MapParams, maxSize int) *Cache {
	return &Cache{params: params, maxSize: maxSize, chunks: make([]*Chunk, 0, maxSize)}
}

// Len reports the current number of cached chunks.
func (c *Cache) Len() int {
	return len(c.chunks)
}

func (c *Cache) find(coord ChunkCoord) *Chunk {
	for _, ch := range c.chunks {
		if ch.Coord == coord {
			return ch
		}
	}
	return nil
}

// RenderVisible materializes every chunk coordinate in visible. It first
// resets every visible hit's age to 0 and, if at least one coordinate
// misses, increments the age of every cached chunk outside the visible set
// — THEN generates and caches each miss, evicting the max-age entry first
// if the cache is at capacity. Doing the aging pass before the eviction
// pass matters: an entry that just aged out of visibility must be eligible
// for eviction within the same call that made it invisible (spec.md §8 E5).
// It returns the visible chunks in the order requested.
func (c *Cache) RenderVisible(visible []ChunkCoord) []*Chunk {
	visibleSet := make(map[ChunkCoord]struct{}, len(visible))
	for _, coord := range visible {
		visibleSet[coord] = struct{}{}
	}

	missing := make([]ChunkCoord, 0)
	for _, coord := range visible {
		if ch := c.find(coord); ch != nil {
			ch.Age = 0
		} else {
			missing = append(missing, coord)
		}
	}

	if len(missing) > 0 {
		for _, ch := range c.chunks {
			if _, ok := visibleSet[ch.Coord]; !ok {
				ch.Age++
			}
		}
		for _, coord := range missing {
			if len(c.chunks) >= c.maxSize {
				c.evictMaxAge()
			}
			generated := GenerateChunk(c.params.Seed, c.params.OctaveCount, c.params.Bias, coord)
			c.chunks = append(c.chunks, &generated)
		}
	}

	out := make([]*Chunk, 0, len(visible))
	for _, coord := range visible {
		out = append(out, c.find(coord))
	}
	return out
}

// evictMaxAge removes the entry with the largest age, breaking ties
// arbitrarily (first one found), per spec.md §4.4's invariant.
func (c *Cache) evictMaxAge() {
	if len(c.chunks) == 0 {
		return
	}
	worst := 0
	for i, ch := range c.chunks[1:] {
		if ch.Age > c.chunks[worst].Age {
			worst = i + 1
		}
	}
	c.chunks = append(c.chunks[:worst], c.chunks[worst+1:]...)
}
