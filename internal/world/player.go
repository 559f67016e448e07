package world

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Rights is a player's privilege level.
type Rights uint8

const (
	RightsPlayer Rights = iota
	RightsModerator
	RightsAdministrator
	RightsDeveloper
)

func (r Rights) String() string {
	switch r {
	case RightsPlayer:
		return "player"
	case RightsModerator:
		return "moderator"
	case RightsAdministrator:
		return "administrator"
	case RightsDeveloper:
		return "developer"
	}
	return "unknown"
}

// AppearanceValues is the number of appearance slots (gender, head, beard,
// torso, arms, hands, legs, feet, and five colours).
const AppearanceValues = 13

// Appearance is a player's model configuration.
type Appearance [AppearanceValues]int

// Values copies the appearance into a detached slice.
func (a *Appearance) Values() []int {
	out := make([]int, AppearanceValues)
	copy(out, a[:])
	return out
}

// SetValues replaces the appearance from a persisted slice.
func (a *Appearance) SetValues(values []int) error {
	if len(values) != AppearanceValues {
		return fmt.Errorf("appearance needs %d values, got %d", AppearanceValues, len(values))
	}
	copy(a[:], values)
	return nil
}

// Settings holds client-side toggles that survive a session.
type Settings struct {
	Running       bool
	AutoRetaliate bool
	Brightness    int
	PublicChat    int
	PrivateChat   int
	TradeChat     int
}

// DefaultSettings returns the settings a fresh player starts with.
func DefaultSettings() Settings {
	return Settings{AutoRetaliate: true, Brightness: 2}
}

// AttributeMap is the free-form persisted attribute store.
type AttributeMap map[string]any

// Copy returns a detached shallow copy; values are scalars by convention.
func (m AttributeMap) Copy() AttributeMap {
	out := make(AttributeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ChatRadius is how far public chat carries, in tiles.
const ChatRadius = 15

// Chat is a public chat message pending broadcast this tick.
type Chat struct {
	Message []byte
	Color   int
	Effects int
}

// ForcedRoute is a scripted movement pending broadcast this tick.
type ForcedRoute struct {
	Start       Position
	Destination Position
	Direction   int
	Speed       int
}

// Player is a participant entity. Owned exclusively by the game loop
// goroutine while active; state crosses to workers only as a detached
// snapshot. The single exception is pendingLogout, which the network layer
// may set from its own goroutine.
type Player struct {
	index int
	state EntityState
	pos   Position

	creds          *Credentials
	hashedPassword string
	rights         Rights
	lastIP         string

	appearance Appearance
	settings   Settings
	inventory  *Container
	bank       *Container
	equipment  *Container
	skills     *SkillSet
	friends    []uint64
	ignores    []uint64
	attributes AttributeMap

	unbanDate  *time.Time
	unmuteDate *time.Time

	// Per-tick transient state, cleared by Reset.
	flags          UpdateFlagSet
	teleporting    bool
	regionChanged  bool
	chat           Option[Chat]
	forcedMovement Option[ForcedRoute]

	lastRegion      *Position
	pendingTeleport Option[Position]
	openInterface   Option[int]
	cachedBlock     *UpdateBlock

	ownedItems   []*GroundItem
	ownedObjects []*GameObject

	pendingLogout atomic.Bool
}

// NewPlayer creates an inactive player for the given session credentials.
func NewPlayer(index int, creds *Credentials) *Player {
	return &Player{
		index:      index,
		creds:      creds,
		inventory:  NewContainer(InventoryCapacity),
		bank:       NewContainer(BankCapacity),
		equipment:  NewContainer(EquipmentCapacity),
		skills:     NewSkillSet(),
		settings:   DefaultSettings(),
		attributes: make(AttributeMap),
	}
}

func (p *Player) Index() int         { return p.index }
func (p *Player) Type() EntityType   { return TypePlayer }
func (p *Player) Position() Position { return p.pos }

// SetInitialPosition places a player that is not yet in the world. Once
// active, every move must go through World.MovePlayer so the chunk index
// stays consistent.
func (p *Player) SetInitialPosition(pos Position) {
	p.pos = pos
}

// State returns the lifecycle state.
func (p *Player) State() EntityState {
	return p.state
}

// Username returns the canonical username.
func (p *Player) Username() string {
	return p.creds.Username()
}

// UsernameHash returns the stable identity key.
func (p *Player) UsernameHash() uint64 {
	return p.creds.UsernameHash()
}

// Credentials returns the session credentials.
func (p *Player) Credentials() *Credentials {
	return p.creds
}

// HashedPassword returns the stored one-way hash, empty when none exists yet.
func (p *Player) HashedPassword() string {
	return p.hashedPassword
}

// SetHashedPassword stores the one-way hash.
func (p *Player) SetHashedPassword(hash string) {
	p.hashedPassword = hash
}

// SetPassword replaces the plaintext password and invalidates the hash.
func (p *Player) SetPassword(password string) {
	p.creds.SetPassword(password)
	p.hashedPassword = ""
}

func (p *Player) Rights() Rights          { return p.rights }
func (p *Player) SetRights(r Rights)      { p.rights = r }
func (p *Player) LastIP() string          { return p.lastIP }
func (p *Player) SetLastIP(ip string)     { p.lastIP = ip }
func (p *Player) Inventory() *Container   { return p.inventory }
func (p *Player) Bank() *Container        { return p.bank }
func (p *Player) Equipment() *Container   { return p.equipment }
func (p *Player) Skills() *SkillSet       { return p.skills }
func (p *Player) Appearance() *Appearance { return &p.appearance }
func (p *Player) Settings() Settings      { return p.settings }
func (p *Player) SetSettings(s Settings)  { p.settings = s }

// Attributes returns the live attribute map.
func (p *Player) Attributes() AttributeMap {
	return p.attributes
}

// SetAttributes replaces the attribute map.
func (p *Player) SetAttributes(m AttributeMap) {
	if m == nil {
		m = make(AttributeMap)
	}
	p.attributes = m
}

// Friends returns the friend list as username hashes, in insertion order.
func (p *Player) Friends() []uint64 {
	return p.friends
}

// Ignores returns the ignore list as username hashes, in insertion order.
func (p *Player) Ignores() []uint64 {
	return p.ignores
}

// AddFriend appends a name hash, refusing duplicates.
func (p *Player) AddFriend(hash uint64) bool {
	for _, h := range p.friends {
		if h == hash {
			return false
		}
	}
	p.friends = append(p.friends, hash)
	return true
}

// AddIgnore appends a name hash, refusing duplicates.
func (p *Player) AddIgnore(hash uint64) bool {
	for _, h := range p.ignores {
		if h == hash {
			return false
		}
	}
	p.ignores = append(p.ignores, hash)
	return true
}

// SetFriends replaces the friend list.
func (p *Player) SetFriends(hashes []uint64) {
	p.friends = append(p.friends[:0], hashes...)
}

// SetIgnores replaces the ignore list.
func (p *Player) SetIgnores(hashes []uint64) {
	p.ignores = append(p.ignores[:0], hashes...)
}

// UnbanDate returns when the ban lapses, nil for never banned.
func (p *Player) UnbanDate() *time.Time {
	return p.unbanDate
}

// SetUnbanDate sets when the ban lapses.
func (p *Player) SetUnbanDate(t *time.Time) {
	p.unbanDate = t
}

// UnmuteDate returns when the mute lapses, nil for never muted.
func (p *Player) UnmuteDate() *time.Time {
	return p.unmuteDate
}

// SetUnmuteDate sets when the mute lapses.
func (p *Player) SetUnmuteDate(t *time.Time) {
	p.unmuteDate = t
}

// Flags returns the per-tick update flag set.
func (p *Player) Flags() *UpdateFlagSet {
	return &p.flags
}

// Teleporting reports whether a full viewport resync is pending.
func (p *Player) Teleporting() bool {
	return p.teleporting
}

// RegionChanged reports whether the region anchor moved this tick.
func (p *Player) RegionChanged() bool {
	return p.regionChanged
}

// LastRegion returns the region anchor, nil before the first sync.
func (p *Player) LastRegion() *Position {
	return p.lastRegion
}

// Chat returns the chat message pending this tick.
func (p *Player) Chat() Option[Chat] {
	return p.chat
}

// Say queues a chat message for this tick's observers.
func (p *Player) Say(c Chat) {
	p.chat = Some(c)
	p.flags.Flag(FlagChat)
}

// ForcedMovement returns the forced route pending this tick.
func (p *Player) ForcedMovement() Option[ForcedRoute] {
	return p.forcedMovement
}

// ForceMovement queues a scripted route for this tick's observers.
func (p *Player) ForceMovement(route ForcedRoute) {
	p.forcedMovement = Some(route)
	p.flags.Flag(FlagForcedMovement)
}

// OpenInterface returns the modal interface id, if one is open.
func (p *Player) OpenInterface() Option[int] {
	return p.openInterface
}

// SetOpenInterface opens a modal interface.
func (p *Player) SetOpenInterface(id int) {
	p.openInterface = Some(id)
}

// CloseInterface closes any open modal interface.
func (p *Player) CloseInterface() {
	p.openInterface = None[int]()
}

// CachedBlock returns the cached update block, nil when none is held.
func (p *Player) CachedBlock() *UpdateBlock {
	return p.cachedBlock
}

// SetCachedBlock installs a new cached block, releasing any previous one.
// Pass nil to clear.
func (p *Player) SetCachedBlock(b *UpdateBlock) {
	if p.cachedBlock != nil {
		p.cachedBlock.release()
	}
	p.cachedBlock = b
}

// OnTeleport marks a discontinuous move. The displacement itself commits at
// the next tick boundary; the flag forces a full resync for observers.
func (p *Player) OnTeleport(dest Position) {
	p.teleporting = true
	p.pendingTeleport = Some(dest)
}

// PendingTeleport returns the uncommitted teleport destination.
func (p *Player) PendingTeleport() Option[Position] {
	return p.pendingTeleport
}

// UpdateRegion re-anchors the viewport when the player has strayed far
// enough from the last synchronized region. Returns true when a resync was
// triggered; the regionChanged flag then holds for exactly one tick.
func (p *Player) UpdateRegion() bool {
	if p.NeedsRegionUpdate() {
		p.regionChanged = true
		anchor := p.pos
		p.lastRegion = &anchor
		return true
	}
	return false
}

// NeedsRegionUpdate reports whether the current position has left the
// synchronized region's inner window. A player that has never been anchored
// always needs one. The bounds are protocol constants and must not be
// derived or symmetrized.
func (p *Player) NeedsRegionUpdate() bool {
	if p.lastRegion == nil {
		return true
	}
	dx := p.pos.LocalX(*p.lastRegion)
	dy := p.pos.LocalY(*p.lastRegion)
	// TODO confirm with protocol owners whether the upper dy bound should be
	// >= 88 like dx; kept strict for client interop.
	return dx < 16 || dx >= 88 || dy < 16 || dy > 88
}

// Reset clears every transient per-tick flag. Runs at the end of each
// tick's update phase; none of these survive a tick boundary.
func (p *Player) Reset() {
	p.teleporting = false
	p.chat = None[Chat]()
	p.forcedMovement = None[ForcedRoute]()
	p.regionChanged = false
	p.flags.Clear()
}

// SetPendingLogout flags a logout request. Safe to call from the network
// goroutine; the game loop picks it up on the next tick.
func (p *Player) SetPendingLogout() {
	p.pendingLogout.Store(true)
}

// PendingLogout reports whether a logout request is waiting.
func (p *Player) PendingLogout() bool {
	return p.pendingLogout.Load()
}

func (p *Player) String() string {
	return fmt.Sprintf("Player{username=%s, index=%d, rights=%s}", p.Username(), p.index, p.rights)
}
