package world

import "fmt"

// ChunkSize is the edge length of one chunk in tiles.
const ChunkSize = 8

// RegionRadius is how many chunks the client keeps loaded around the
// viewer's chunk in each direction (a 13x13 chunk viewport).
const RegionRadius = 6

// HeightLevels is the number of stacked world planes.
const HeightLevels = 4

// Position is an absolute world coordinate. Immutable value type.
type Position struct {
	X int
	Y int
	Z int // height plane, 0-3
}

// NewPosition creates a position on plane 0.
func NewPosition(x, y int) Position {
	return Position{X: x, Y: y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Chunk returns the chunk coordinate containing this position.
func (p Position) Chunk() ChunkPosition {
	return ChunkPosition{X: p.X / ChunkSize, Y: p.Y / ChunkSize}
}

// RegionX returns the region-index x coordinate used by the viewport
// protocol. The viewer's chunk sits RegionRadius chunks in from the
// region's top-left corner.
func (p Position) RegionX() int {
	return (p.X >> 3) - RegionRadius
}

// RegionY returns the region-index y coordinate.
func (p Position) RegionY() int {
	return (p.Y >> 3) - RegionRadius
}

// LocalX returns this position's x offset within the region anchored at base.
func (p Position) LocalX(base Position) int {
	return p.X - (base.RegionX() << 3)
}

// LocalY returns this position's y offset within the region anchored at base.
func (p Position) LocalY(base Position) int {
	return p.Y - (base.RegionY() << 3)
}

// Translate returns a copy of this position moved by the given deltas.
func (p Position) Translate(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
}

// WithinDistance reports whether other is within the given Chebyshev
// distance on the same plane.
func (p Position) WithinDistance(other Position, distance int) bool {
	if p.Z != other.Z {
		return false
	}
	dx := abs(p.X - other.X)
	dy := abs(p.Y - other.Y)
	return dx <= distance && dy <= distance
}

// ChunkPosition identifies a single chunk cell. Equality and map keying are
// by coordinate pair only, never by cell contents.
type ChunkPosition struct {
	X int
	Y int
}

func (c ChunkPosition) String() string {
	return fmt.Sprintf("[%d, %d]", c.X, c.Y)
}

// Absolute returns the south-west tile of this chunk.
func (c ChunkPosition) Absolute() Position {
	return Position{X: c.X * ChunkSize, Y: c.Y * ChunkSize}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
