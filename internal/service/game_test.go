package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/natis1/luna/internal/config"
	"github.com/natis1/luna/internal/data"
	"github.com/natis1/luna/internal/event"
	"github.com/natis1/luna/internal/persist"
	"github.com/natis1/luna/internal/world"
)

var testStart = world.NewPosition(3222, 3218)

type gameHarness struct {
	store   *fakeStore
	world   *world.World
	logins  *LoginService
	logouts *LogoutService
	saves   *PersistenceService
	game    *GameService
}

func newGameHarness(t *testing.T, filter *data.AddressFilter, autosaveEveryTick bool) *gameHarness {
	t.Helper()
	store := newFakeStore()
	w := world.NewWorld(zap.NewNop())
	logins := startLoginService(t, store, 1)
	logouts := startLogoutService(t, store)
	saves := NewPersistenceService(store, zap.NewNop(), 1)
	require.NoError(t, saves.Start(context.Background()))
	t.Cleanup(func() { saves.Stop(context.Background()) })

	cfg := config.GameConfig{
		TickRate:         600 * time.Millisecond,
		AutoSaveInterval: 90 * time.Second,
		MaxLoginsPerTick: 25,
	}
	if autosaveEveryTick {
		cfg.AutoSaveInterval = cfg.TickRate
	}
	game := NewGameService(w, logins, logouts, saves, filter, cfg, testStart, zap.NewNop())
	return &gameHarness{store: store, world: w, logins: logins, logouts: logouts, saves: saves, game: game}
}

// login drives a request through the login workers and the next tick.
func (h *gameHarness) login(t *testing.T, username, password, addr string) {
	t.Helper()
	fut, err := h.logins.Submit(LoginRequest{Username: username, Password: password, Addr: addr})
	require.NoError(t, err)
	waitFuture(t, fut)
	h.game.tick()
}

func TestGameLoginFirstSession(t *testing.T) {
	h := newGameHarness(t, nil, false)
	h.login(t, "Alice", "hunter2", "203.0.113.7:5000")

	p := h.world.Player("alice")
	require.NotNil(t, p, "login must admit the player on the next tick")
	assert.Equal(t, world.StateActive, p.State())
	assert.Equal(t, testStart, p.Position())
	assert.Equal(t, world.RightsPlayer, p.Rights())
	assert.Equal(t, "203.0.113.7:5000", p.LastIP())
}

func TestGameLoginAllowlistedRights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("whitelist:\n  - 127.0.0.1\n"), 0o644))
	filter, err := data.LoadAddressFilter(path)
	require.NoError(t, err)

	h := newGameHarness(t, filter, false)
	h.login(t, "alice", "hunter2", "127.0.0.1:5000")
	h.login(t, "bob", "hunter2", "203.0.113.7:5000")

	require.NotNil(t, h.world.Player("alice"))
	assert.Equal(t, world.RightsDeveloper, h.world.Player("alice").Rights())
	require.NotNil(t, h.world.Player("bob"))
	assert.Equal(t, world.RightsPlayer, h.world.Player("bob").Rights())
}

func TestGameLoginAppliesSavedData(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	saved := &persist.PlayerData{
		Username:   "alice",
		Password:   string(hash),
		Position:   world.NewPosition(2964, 3378),
		Rights:     world.RightsAdministrator,
		Appearance: make([]int, world.AppearanceValues),
	}

	h := newGameHarness(t, nil, false)
	h.store.saved["alice"] = saved
	h.login(t, "alice", "hunter2", "203.0.113.7:5000")

	p := h.world.Player("alice")
	require.NotNil(t, p)
	assert.Equal(t, world.NewPosition(2964, 3378), p.Position())
	assert.Equal(t, world.RightsAdministrator, p.Rights())
}

func TestGameLoginRejectsDuplicateOnline(t *testing.T) {
	h := newGameHarness(t, nil, false)
	h.login(t, "alice", "hunter2", "203.0.113.7:5000")
	first := h.world.Player("alice")

	h.login(t, "alice", "hunter2", "203.0.113.7:5001")

	assert.Equal(t, 1, h.world.PlayerCount())
	assert.Same(t, first, h.world.Player("alice"))
}

func TestGameLogoutFlow(t *testing.T) {
	h := newGameHarness(t, nil, false)
	h.login(t, "alice", "hunter2", "203.0.113.7:5000")

	p := h.world.Player("alice")
	require.NotNil(t, p)
	p.SetPendingLogout()
	h.game.tick()

	assert.Nil(t, h.world.Player("alice"), "logout removes the player that tick")
	assert.Equal(t, world.StateInactive, p.State())
	require.Eventually(t, func() bool {
		return h.store.get("alice") != nil
	}, 5*time.Second, 10*time.Millisecond, "logout worker writes the snapshot")
	assert.True(t, h.store.get("alice").VerifyPassword("hunter2"))
}

func TestGameTickResetsTransients(t *testing.T) {
	h := newGameHarness(t, nil, false)
	h.login(t, "alice", "hunter2", "203.0.113.7:5000")

	p := h.world.Player("alice")
	require.NotNil(t, p)
	p.Say(world.Chat{Message: []byte("hi")})
	require.True(t, p.Flags().Has(world.FlagChat))

	h.game.tick()

	assert.True(t, p.Flags().Empty())
	assert.False(t, p.Chat().Present())
	assert.False(t, p.Teleporting())
}

func TestGameChatBroadcastNextTick(t *testing.T) {
	h := newGameHarness(t, nil, false)
	var got []event.ChatBroadcast
	event.Subscribe(h.game.Bus(), func(ev event.ChatBroadcast) { got = append(got, ev) })

	h.login(t, "alice", "hunter2", "203.0.113.7:5000")
	h.login(t, "bob", "hunter2", "203.0.113.8:5000")
	p := h.world.Player("alice")
	require.NotNil(t, p)
	listener := h.world.Player("bob")
	require.NotNil(t, listener)

	p.Say(world.Chat{Message: []byte("hello"), Color: 1})
	h.game.tick()
	require.Empty(t, got, "chat captured this tick is delivered next tick")

	h.game.tick()
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, []byte("hello"), got[0].Message)
	assert.Equal(t, 1, got[0].Color)
	assert.ElementsMatch(t, []int{p.Index(), listener.Index()}, got[0].Observers,
		"players sharing the spawn tile hear each other")
}

func TestGameLoginEventNextTick(t *testing.T) {
	h := newGameHarness(t, nil, false)
	var logins []event.PlayerLoggedIn
	event.Subscribe(h.game.Bus(), func(ev event.PlayerLoggedIn) { logins = append(logins, ev) })

	h.login(t, "alice", "hunter2", "203.0.113.7:5000")
	require.Empty(t, logins)

	h.game.tick()
	require.Len(t, logins, 1)
	assert.Equal(t, "alice", logins[0].Username)
}

func TestGameTickCommitsTeleport(t *testing.T) {
	h := newGameHarness(t, nil, false)
	h.login(t, "alice", "hunter2", "203.0.113.7:5000")

	p := h.world.Player("alice")
	require.NotNil(t, p)
	dest := world.NewPosition(2964, 3378)
	p.OnTeleport(dest)

	h.game.tick()
	assert.Equal(t, dest, p.Position())
}

func TestGameAutosave(t *testing.T) {
	h := newGameHarness(t, nil, true)
	h.login(t, "alice", "hunter2", "203.0.113.7:5000")

	h.game.tick()
	require.Eventually(t, func() bool {
		return h.store.get("alice") != nil
	}, 5*time.Second, 10*time.Millisecond, "autosave writes without logging the player out")
	assert.NotNil(t, h.world.Player("alice"))
}

func TestGameStopFlushesPlayers(t *testing.T) {
	store := newFakeStore()
	w := world.NewWorld(zap.NewNop())
	logins := startLoginService(t, store, 1)
	logouts := startLogoutService(t, store)
	saves := NewPersistenceService(store, zap.NewNop(), 1)
	require.NoError(t, saves.Start(context.Background()))
	t.Cleanup(func() { saves.Stop(context.Background()) })

	cfg := config.GameConfig{
		TickRate:         5 * time.Millisecond,
		AutoSaveInterval: time.Hour,
		MaxLoginsPerTick: 25,
	}
	game := NewGameService(w, logins, logouts, saves, nil, cfg, testStart, zap.NewNop())
	require.NoError(t, game.Start(context.Background()))

	fut, err := logins.Submit(LoginRequest{Username: "alice", Password: "hunter2"})
	require.NoError(t, err)
	require.NoError(t, waitFuture(t, fut))
	// Give the loop a few ticks to admit the login.
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, game.Stop(ctx))

	assert.Equal(t, 0, w.PlayerCount())
	assert.NotNil(t, store.get("alice"), "shutdown performs a final save for online players")
}
