package world

import (
	"errors"

	"go.uber.org/zap"
)

// ErrAlreadyActive is returned when activating a player twice.
var ErrAlreadyActive = errors.New("player is already active")

// World tracks every live entity. Single-goroutine access only (game loop);
// workers interact with it exclusively through detached snapshots.
type World struct {
	chunks *ChunkMap

	players    map[uint64]*Player // username hash → player
	playerList []*Player          // tick iteration order
	byIndex    map[int]*Player

	items   map[int]*GroundItem
	objects map[int]*GameObject

	listeners []PresenceListener

	nextPlayerIndex int
	nextEntityIndex int

	log *zap.Logger
}

func NewWorld(log *zap.Logger) *World {
	return &World{
		chunks:          NewChunkMap(),
		players:         make(map[uint64]*Player),
		byIndex:         make(map[int]*Player),
		items:           make(map[int]*GroundItem),
		objects:         make(map[int]*GameObject),
		nextPlayerIndex: 1,
		nextEntityIndex: 1 << 16,
		log:             log,
	}
}

// Chunks returns the spatial index.
func (w *World) Chunks() *ChunkMap {
	return w.chunks
}

// AddListener registers a presence listener.
func (w *World) AddListener(l PresenceListener) {
	w.listeners = append(w.listeners, l)
}

// NextPlayerIndex allocates a world index for a joining player.
func (w *World) NextPlayerIndex() int {
	idx := w.nextPlayerIndex
	w.nextPlayerIndex++
	return idx
}

// nextIndex allocates a world index for a non-player entity.
func (w *World) nextIndex() int {
	idx := w.nextEntityIndex
	w.nextEntityIndex++
	return idx
}

// Activate brings a fully loaded player into the world: registers its
// spatial presence, marks a pending full resync so the next tick's
// observers receive a complete rather than incremental update, and emits
// the login notification. Precondition: the player is inactive with
// credentials and data applied.
func (w *World) Activate(p *Player) error {
	if p.state == StateActive {
		return ErrAlreadyActive
	}
	p.state = StateActive
	w.players[p.UsernameHash()] = p
	w.byIndex[p.index] = p
	w.playerList = append(w.playerList, p)
	w.chunks.Add(p)

	p.teleporting = true
	p.flags.Flag(FlagAppearance)

	for _, l := range w.listeners {
		l.OnLogin(p)
	}
	w.log.Info("player joined world",
		zap.String("username", p.Username()),
		zap.Int("index", p.index),
		zap.Int("online", len(w.players)))
	return nil
}

// Deactivate removes a player from the world: unregisters every
// spatially-anchored object it owns, closes modal interaction state, emits
// the logout notification, and releases transient buffers. A no-op when
// the player is already inactive.
func (w *World) Deactivate(p *Player) {
	if p.state != StateActive {
		return
	}
	w.removeOwnedItems(p)
	w.removeOwnedObjects(p)
	p.CloseInterface()

	for _, l := range w.listeners {
		l.OnLogout(p)
	}

	w.chunks.Remove(p)
	delete(w.players, p.UsernameHash())
	delete(w.byIndex, p.index)
	for i, other := range w.playerList {
		if other == p {
			w.playerList[i] = w.playerList[len(w.playerList)-1]
			w.playerList = w.playerList[:len(w.playerList)-1]
			break
		}
	}
	p.SetCachedBlock(nil)
	p.state = StateInactive
	w.log.Info("player left world",
		zap.String("username", p.Username()),
		zap.Int("online", len(w.players)))
}

// MovePlayer commits a position mutation: updates the spatial index and
// notifies presence listeners. Every committed move goes through here, not
// only teleports, so area entry and exit rules are honored uniformly.
func (w *World) MovePlayer(p *Player, pos Position) {
	old := p.pos
	p.pos = pos
	w.chunks.Move(p, old)
	for _, l := range w.listeners {
		l.OnPositionChange(p, old)
	}
}

// SetInitialPosition places a not-yet-active player without firing
// movement notifications.
func (w *World) SetInitialPosition(p *Player, pos Position) {
	p.SetInitialPosition(pos)
}

// PlayersNear returns the active players within the given tile distance of
// pos, on the same plane. Order is unspecified.
func (w *World) PlayersNear(pos Position, distance int) []*Player {
	var out []*Player
	for _, cp := range w.chunks.Neighborhood(pos, distance/ChunkSize+1) {
		c := w.chunks.chunks[cp]
		if c == nil {
			continue
		}
		for _, e := range c.Of(TypePlayer) {
			p := e.(*Player)
			if p.Position().WithinDistance(pos, distance) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Player returns an online player by username, or nil.
func (w *World) Player(username string) *Player {
	return w.players[EncodeUsername(username)]
}

// PlayerByIndex returns an online player by world index, or nil.
func (w *World) PlayerByIndex(index int) *Player {
	return w.byIndex[index]
}

// PlayerCount returns how many players are in the world.
func (w *World) PlayerCount() int {
	return len(w.players)
}

// ForEachPlayer iterates online players in join order. The callback must
// not add or remove players.
func (w *World) ForEachPlayer(fn func(*Player)) {
	for _, p := range w.playerList {
		fn(p)
	}
}

// PendingLogouts returns the players whose logout flag is set.
func (w *World) PendingLogouts() []*Player {
	var out []*Player
	for _, p := range w.playerList {
		if p.PendingLogout() {
			out = append(out, p)
		}
	}
	return out
}

// Tick advances one simulation step: commits pending teleports and
// re-anchors viewports. Flag clearing is the caller's responsibility at
// the end of the update phase.
func (w *World) Tick() {
	for _, p := range w.playerList {
		if dest, ok := p.pendingTeleport.Get(); ok {
			w.MovePlayer(p, dest)
			p.pendingTeleport = None[Position]()
		}
		p.UpdateRegion()
	}
}

// AddGroundItem spawns an item on a tile. owner may be nil for global
// drops.
func (w *World) AddGroundItem(item Item, pos Position, owner *Player) *GroundItem {
	ownerIndex := -1
	if owner != nil {
		ownerIndex = owner.index
	}
	g := NewGroundItem(w.nextIndex(), item, pos, ownerIndex)
	w.items[g.index] = g
	w.chunks.Add(g)
	if owner != nil {
		owner.ownedItems = append(owner.ownedItems, g)
	}
	return g
}

// RemoveGroundItem despawns a ground item.
func (w *World) RemoveGroundItem(g *GroundItem) {
	if _, ok := w.items[g.index]; !ok {
		return
	}
	w.chunks.Remove(g)
	delete(w.items, g.index)
}

// AddObject spawns a world object. owner may be nil for static objects.
func (w *World) AddObject(id int, pos Position, owner *Player) *GameObject {
	ownerIndex := -1
	if owner != nil {
		ownerIndex = owner.index
	}
	o := NewGameObject(w.nextIndex(), id, pos, ownerIndex)
	w.objects[o.index] = o
	w.chunks.Add(o)
	if owner != nil {
		owner.ownedObjects = append(owner.ownedObjects, o)
	}
	return o
}

// RemoveObject despawns a world object.
func (w *World) RemoveObject(o *GameObject) {
	if _, ok := w.objects[o.index]; !ok {
		return
	}
	w.chunks.Remove(o)
	delete(w.objects, o.index)
}

func (w *World) removeOwnedItems(p *Player) {
	for _, g := range p.ownedItems {
		w.RemoveGroundItem(g)
	}
	p.ownedItems = nil
}

func (w *World) removeOwnedObjects(p *Player) {
	for _, o := range p.ownedObjects {
		w.RemoveObject(o)
	}
	p.ownedObjects = nil
}
