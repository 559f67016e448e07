package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWorld() *World {
	return NewWorld(zap.NewNop())
}

func activateTestPlayer(t *testing.T, w *World, username string, pos Position) *Player {
	t.Helper()
	p := NewPlayer(w.NextPlayerIndex(), NewCredentials(username, "hunter2"))
	w.SetInitialPosition(p, pos)
	require.NoError(t, w.Activate(p))
	return p
}

func TestActivateRegistersPlayer(t *testing.T) {
	w := newTestWorld()
	p := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))

	assert.Equal(t, StateActive, p.State())
	assert.Same(t, p, w.Player("alice"))
	assert.Same(t, p, w.PlayerByIndex(p.Index()))
	assert.Equal(t, 1, w.PlayerCount())
	assert.True(t, w.Chunks().Contains(p))
	assert.True(t, p.Teleporting(), "joining forces a full resync")
	assert.True(t, p.Flags().Has(FlagAppearance))
}

func TestActivateTwiceFails(t *testing.T) {
	w := newTestWorld()
	p := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))

	assert.ErrorIs(t, w.Activate(p), ErrAlreadyActive)
	assert.Equal(t, 1, w.PlayerCount())
}

func TestDeactivateUnregistersPlayer(t *testing.T) {
	w := newTestWorld()
	p := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))

	w.Deactivate(p)

	assert.Equal(t, StateInactive, p.State())
	assert.Nil(t, w.Player("alice"))
	assert.Nil(t, w.PlayerByIndex(p.Index()))
	assert.Equal(t, 0, w.PlayerCount())
	assert.False(t, w.Chunks().Contains(p))

	// Second call is a no-op.
	w.Deactivate(p)
	assert.Equal(t, 0, w.PlayerCount())
}

func TestDeactivateRemovesOwnedEntities(t *testing.T) {
	w := newTestWorld()
	p := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))

	item := w.AddGroundItem(Item{ID: 995, Amount: 1000}, NewPosition(3201, 3200), p)
	obj := w.AddObject(2732, NewPosition(3202, 3200), p)
	require.True(t, w.Chunks().Contains(item))
	require.True(t, w.Chunks().Contains(obj))

	p.SetOpenInterface(3559)
	w.Deactivate(p)

	assert.False(t, w.Chunks().Contains(item))
	assert.False(t, w.Chunks().Contains(obj))
	assert.False(t, p.OpenInterface().Present())
}

func TestDeactivateReleasesCachedBlock(t *testing.T) {
	w := newTestWorld()
	p := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))

	block := AcquireBlock([]byte{1, 2})
	p.SetCachedBlock(block)
	w.Deactivate(p)

	assert.True(t, block.Released())
	assert.Nil(t, p.CachedBlock())
}

func TestPresenceListeners(t *testing.T) {
	w := newTestWorld()
	var logins, logouts, moves int
	w.AddListener(ListenerFuncs{
		Login:          func(p *Player) { logins++ },
		Logout:         func(p *Player) { logouts++ },
		PositionChange: func(p *Player, old Position) { moves++ },
	})

	p := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))
	w.MovePlayer(p, NewPosition(3201, 3200))
	w.Deactivate(p)

	assert.Equal(t, 1, logins)
	assert.Equal(t, 1, moves)
	assert.Equal(t, 1, logouts)
}

func TestMovePlayerUpdatesChunks(t *testing.T) {
	w := newTestWorld()
	p := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))

	dest := NewPosition(3300, 3300)
	w.MovePlayer(p, dest)

	assert.Equal(t, dest, p.Position())
	assert.True(t, w.Chunks().Chunk(dest.Chunk()).Contains(p))
	assert.False(t, w.Chunks().Chunk(NewPosition(3200, 3200).Chunk()).Contains(p))
}

func TestTickCommitsTeleport(t *testing.T) {
	w := newTestWorld()
	p := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))

	dest := NewPosition(2964, 3378)
	p.OnTeleport(dest)
	w.Tick()

	assert.Equal(t, dest, p.Position())
	assert.False(t, p.PendingTeleport().Present())
	assert.True(t, p.RegionChanged(), "teleport re-anchors the viewport")
	assert.True(t, w.Chunks().Chunk(dest.Chunk()).Contains(p))
}

func TestPlayersNear(t *testing.T) {
	w := newTestWorld()
	speaker := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))
	nearby := activateTestPlayer(t, w, "bob", NewPosition(3210, 3195))
	activateTestPlayer(t, w, "carol", NewPosition(3200, 3216))

	upstairs := NewPlayer(w.NextPlayerIndex(), NewCredentials("dave", "hunter2"))
	w.SetInitialPosition(upstairs, Position{X: 3200, Y: 3200, Z: 1})
	require.NoError(t, w.Activate(upstairs))

	near := w.PlayersNear(speaker.Position(), ChatRadius)
	assert.ElementsMatch(t, []*Player{speaker, nearby}, near,
		"out-of-range and off-plane players are excluded")
}

func TestPendingLogouts(t *testing.T) {
	w := newTestWorld()
	alice := activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))
	activateTestPlayer(t, w, "bob", NewPosition(3200, 3200))

	assert.Empty(t, w.PendingLogouts())

	alice.SetPendingLogout()
	pending := w.PendingLogouts()
	require.Len(t, pending, 1)
	assert.Same(t, alice, pending[0])
}

func TestForEachPlayerJoinOrder(t *testing.T) {
	w := newTestWorld()
	activateTestPlayer(t, w, "alice", NewPosition(3200, 3200))
	activateTestPlayer(t, w, "bob", NewPosition(3200, 3200))
	activateTestPlayer(t, w, "carol", NewPosition(3200, 3200))

	var names []string
	w.ForEachPlayer(func(p *Player) {
		names = append(names, p.Username())
	})
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}
