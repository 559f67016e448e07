package world

import "sync"

// UpdateFlag marks one aspect of a player that observers must re-read on
// the next synchronization pass.
type UpdateFlag uint8

const (
	FlagAppearance UpdateFlag = 1 << iota
	FlagChat
	FlagForcedMovement
)

// UpdateFlagSet is a per-tick bitmask of raised update flags.
type UpdateFlagSet uint8

// Flag raises an update flag.
func (s *UpdateFlagSet) Flag(f UpdateFlag) {
	*s |= UpdateFlagSet(f)
}

// Has reports whether a flag is raised.
func (s UpdateFlagSet) Has(f UpdateFlag) bool {
	return s&UpdateFlagSet(f) != 0
}

// Clear lowers every flag.
func (s *UpdateFlagSet) Clear() {
	*s = 0
}

// Empty reports whether no flags are raised.
func (s UpdateFlagSet) Empty() bool {
	return s == 0
}

var blockPool = sync.Pool{
	New: func() any {
		return &UpdateBlock{buf: make([]byte, 0, 128)}
	},
}

// UpdateBlock is a reusable encoded-update buffer. Ownership is scoped: a
// block is acquired when set on a player, released when replaced or
// cleared, and always released on player teardown. It never leaves the
// game loop goroutine.
type UpdateBlock struct {
	buf      []byte
	released bool
}

// AcquireBlock draws a block from the pool and fills it with payload.
func AcquireBlock(payload []byte) *UpdateBlock {
	b := blockPool.Get().(*UpdateBlock)
	b.buf = append(b.buf[:0], payload...)
	b.released = false
	return b
}

// Bytes returns the encoded payload. Invalid after release.
func (b *UpdateBlock) Bytes() []byte {
	return b.buf
}

// Released reports whether the block has been returned to the pool.
func (b *UpdateBlock) Released() bool {
	return b.released
}

func (b *UpdateBlock) release() {
	if b.released {
		return
	}
	b.released = true
	blockPool.Put(b)
}
