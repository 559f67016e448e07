package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayer(pos Position) *Player {
	p := NewPlayer(1, NewCredentials("test", "hunter2"))
	p.pos = pos
	return p
}

func TestUpdateRegionFirstSync(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))
	require.Nil(t, p.LastRegion())

	assert.True(t, p.UpdateRegion(), "first sync always re-anchors")
	assert.True(t, p.RegionChanged())
	require.NotNil(t, p.LastRegion())
	assert.Equal(t, p.Position(), *p.LastRegion())

	p.Reset()
	assert.False(t, p.UpdateRegion(), "anchor position is inside the window")
	assert.False(t, p.RegionChanged())
}

func TestNeedsRegionUpdateBounds(t *testing.T) {
	// Anchor (3200, 3200): region base tile is 3152, so the anchor sits at
	// local offset 48. The window's inner edges fall at absolute 3167/3168
	// on the low side and 3239/3240 (x) or 3240/3241 (y) on the high side.
	anchor := NewPosition(3200, 3200)

	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"inside at anchor", NewPosition(3200, 3200), false},
		{"x one tile inside low edge", NewPosition(3168, 3200), false},
		{"x past low edge", NewPosition(3167, 3200), true},
		{"x one tile inside high edge", NewPosition(3239, 3200), false},
		{"x at high edge", NewPosition(3240, 3200), true},
		{"y one tile inside low edge", NewPosition(3200, 3168), false},
		{"y past low edge", NewPosition(3200, 3167), true},
		{"y at 88 stays inside", NewPosition(3200, 3240), false},
		{"y past 88", NewPosition(3200, 3241), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlayer(anchor)
			require.True(t, p.UpdateRegion())
			p.Reset()

			p.pos = tt.pos
			assert.Equal(t, tt.want, p.NeedsRegionUpdate())
		})
	}
}

func TestNeedsRegionUpdateWithoutAnchor(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))
	require.Nil(t, p.LastRegion())
	assert.NotPanics(t, func() {
		assert.True(t, p.NeedsRegionUpdate(), "an unanchored viewport always needs a sync")
	})
}

func TestUpdateRegionReanchorDoesNotRetrigger(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))
	require.True(t, p.UpdateRegion())
	p.Reset()

	p.pos = NewPosition(3240, 3200)
	require.True(t, p.UpdateRegion(), "crossing the high x edge re-anchors")
	p.Reset()

	assert.False(t, p.UpdateRegion(), "fresh anchor must not re-trigger in place")
}

func TestResetClearsTransients(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))
	p.teleporting = true
	p.regionChanged = true
	p.Say(Chat{Message: []byte("hello"), Color: 0, Effects: 0})
	p.ForceMovement(ForcedRoute{Start: p.pos, Destination: p.pos.Translate(2, 0)})

	require.True(t, p.Flags().Has(FlagChat))
	require.True(t, p.Flags().Has(FlagForcedMovement))

	p.Reset()

	assert.False(t, p.Teleporting())
	assert.False(t, p.RegionChanged())
	assert.False(t, p.Chat().Present())
	assert.False(t, p.ForcedMovement().Present())
	assert.True(t, p.Flags().Empty())
}

func TestOnTeleportDefersCommit(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))
	dest := NewPosition(2964, 3378)

	p.OnTeleport(dest)

	assert.True(t, p.Teleporting())
	assert.Equal(t, NewPosition(3200, 3200), p.Position(), "position commits at the tick boundary")
	got, ok := p.PendingTeleport().Get()
	require.True(t, ok)
	assert.Equal(t, dest, got)
}

func TestCachedBlockScopedOwnership(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))

	first := AcquireBlock([]byte{1, 2, 3})
	p.SetCachedBlock(first)
	assert.Equal(t, []byte{1, 2, 3}, p.CachedBlock().Bytes())
	assert.False(t, first.Released())

	second := AcquireBlock([]byte{4, 5})
	p.SetCachedBlock(second)
	assert.True(t, first.Released(), "replaced block returns to the pool")
	assert.False(t, second.Released())

	p.SetCachedBlock(nil)
	assert.True(t, second.Released(), "clearing releases the held block")
	assert.Nil(t, p.CachedBlock())
}

func TestSayRaisesChatFlag(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))
	p.Say(Chat{Message: []byte("hi"), Color: 1, Effects: 2})

	assert.True(t, p.Flags().Has(FlagChat))
	c, ok := p.Chat().Get()
	require.True(t, ok)
	assert.Equal(t, []byte("hi"), c.Message)
}

func TestPendingLogoutFlag(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))
	assert.False(t, p.PendingLogout())
	p.SetPendingLogout()
	assert.True(t, p.PendingLogout())
}

func TestAddFriendRefusesDuplicates(t *testing.T) {
	p := newTestPlayer(NewPosition(3200, 3200))
	hash := EncodeUsername("zezima")

	assert.True(t, p.AddFriend(hash))
	assert.False(t, p.AddFriend(hash))
	assert.Len(t, p.Friends(), 1)
}
