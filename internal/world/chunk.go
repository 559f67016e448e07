package world

// Chunk grid. Cells are created lazily on first reference and persist for
// the world's lifetime. Accessed only from the game loop goroutine, no locks.

// Chunk owns the entities physically located in one cell, grouped by type.
// An entity appears in at most one chunk's set per type at any time.
type Chunk struct {
	pos      ChunkPosition
	entities [typeCount]map[int]Entity
}

func newChunk(pos ChunkPosition) *Chunk {
	c := &Chunk{pos: pos}
	for i := range c.entities {
		c.entities[i] = make(map[int]Entity, 4)
	}
	return c
}

// Position returns this chunk's cell coordinate.
func (c *Chunk) Position() ChunkPosition {
	return c.pos
}

// Add inserts an entity into the set for its type. Returns false if an
// entity with the same index is already present.
func (c *Chunk) Add(e Entity) bool {
	set := c.entities[e.Type()]
	if _, ok := set[e.Index()]; ok {
		return false
	}
	set[e.Index()] = e
	return true
}

// Remove takes an entity out of the set for its type. Returns false if absent.
func (c *Chunk) Remove(e Entity) bool {
	set := c.entities[e.Type()]
	if _, ok := set[e.Index()]; !ok {
		return false
	}
	delete(set, e.Index())
	return true
}

// Contains reports whether the entity is registered in this chunk.
func (c *Chunk) Contains(e Entity) bool {
	_, ok := c.entities[e.Type()][e.Index()]
	return ok
}

// Of returns the live set of entities of one type, keyed by index. The map
// is the chunk's own storage; callers on the game goroutine may iterate it
// but must not retain it across mutations.
func (c *Chunk) Of(t EntityType) map[int]Entity {
	return c.entities[t]
}

// Count returns how many entities of the given type occupy this chunk.
func (c *Chunk) Count(t EntityType) int {
	return len(c.entities[t])
}

// ChunkMap indexes every chunk that has ever been referenced.
type ChunkMap struct {
	chunks map[ChunkPosition]*Chunk
}

func NewChunkMap() *ChunkMap {
	return &ChunkMap{chunks: make(map[ChunkPosition]*Chunk)}
}

// Chunk returns the cell at the given coordinate, creating it on first
// reference.
func (m *ChunkMap) Chunk(pos ChunkPosition) *Chunk {
	c := m.chunks[pos]
	if c == nil {
		c = newChunk(pos)
		m.chunks[pos] = c
	}
	return c
}

// Add registers an entity in the cell matching its current position.
func (m *ChunkMap) Add(e Entity) bool {
	return m.Chunk(e.Position().Chunk()).Add(e)
}

// Remove unregisters an entity from the cell matching its current position.
func (m *ChunkMap) Remove(e Entity) bool {
	return m.Chunk(e.Position().Chunk()).Remove(e)
}

// Contains reports whether the entity is registered at its current position.
func (m *ChunkMap) Contains(e Entity) bool {
	return m.Chunk(e.Position().Chunk()).Contains(e)
}

// Move re-registers an entity whose position has already been mutated,
// using old to locate the previous cell. A no-op when both positions fall
// in the same cell.
func (m *ChunkMap) Move(e Entity, old Position) {
	from := old.Chunk()
	to := e.Position().Chunk()
	if from == to {
		return
	}
	m.Chunk(from).Remove(e)
	m.Chunk(to).Add(e)
}

// EntitiesOf returns the live set for a (cell, type) pair.
func (m *ChunkMap) EntitiesOf(pos ChunkPosition, t EntityType) map[int]Entity {
	return m.Chunk(pos).Of(t)
}

// Neighborhood returns the chunk coordinates within radius cells of the
// coordinate containing pos, inclusive. Order is row-major and therefore
// deterministic regardless of call order.
func (m *ChunkMap) Neighborhood(pos Position, radius int) []ChunkPosition {
	center := pos.Chunk()
	size := radius*2 + 1
	result := make([]ChunkPosition, 0, size*size)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			result = append(result, ChunkPosition{X: center.X + dx, Y: center.Y + dy})
		}
	}
	return result
}

// Viewable returns every chunk coordinate inside the viewport centered on
// pos.
func (m *ChunkMap) Viewable(pos Position) []ChunkPosition {
	return m.Neighborhood(pos, RegionRadius)
}

// Size returns how many cells have been materialized.
func (m *ChunkMap) Size() int {
	return len(m.chunks)
}
