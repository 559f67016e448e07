package persist

import (
	"fmt"
	"time"

	"github.com/natis1/luna/internal/world"
	"golang.org/x/crypto/bcrypt"
)

// PlayerData is a flat, self-contained snapshot of everything that must
// survive a session. It is the only object that legitimately crosses the
// game-loop/worker boundary: written by one side, handed off, then read by
// the other, never both at once. It holds no references back into the
// live player or any mutable simulation structure.
type PlayerData struct {
	Username   string         `json:"username"`
	Password   string         `json:"password"` // one-way hash
	Position   world.Position `json:"position"`
	Rights     world.Rights   `json:"rights"`
	LastIP     string         `json:"last_ip"`
	Appearance []int          `json:"appearance"`
	Settings   world.Settings `json:"settings"`
	Inventory  []world.IndexedItem `json:"inventory"`
	Bank       []world.IndexedItem `json:"bank"`
	Equipment  []world.IndexedItem `json:"equipment"`
	Skills     []world.Skill       `json:"skills"`
	Friends    []uint64            `json:"friends"`
	Ignores    []uint64            `json:"ignores"`
	UnbanDate  *time.Time          `json:"unban_date"`
	UnmuteDate *time.Time          `json:"unmute_date"`
	Attributes world.AttributeMap  `json:"attributes"`

	// Deferred hashing: when the player has no hashed credential yet, the
	// snapshot carries the plaintext and the hash is computed by the
	// storage worker instead of the game loop.
	needsHash bool
	plaintext string
}

// Snapshot builds a detached save-proxy from a live player. Game loop
// goroutine only; after the proxy is handed to a worker the player must
// not be mutated into it again.
func Snapshot(p *world.Player) *PlayerData {
	d := &PlayerData{
		Username:   p.Username(),
		Position:   p.Position(),
		Rights:     p.Rights(),
		LastIP:     p.LastIP(),
		Appearance: p.Appearance().Values(),
		Settings:   p.Settings(),
		Inventory:  p.Inventory().ToIndexed(),
		Bank:       p.Bank().ToIndexed(),
		Equipment:  p.Equipment().ToIndexed(),
		Skills:     p.Skills().ToSlice(),
		Friends:    append([]uint64(nil), p.Friends()...),
		Ignores:    append([]uint64(nil), p.Ignores()...),
		UnbanDate:  copyTime(p.UnbanDate()),
		UnmuteDate: copyTime(p.UnmuteDate()),
		Attributes: p.Attributes().Copy(),
	}
	if hashed := p.HashedPassword(); hashed != "" {
		d.Password = hashed
	} else {
		d.plaintext = p.Credentials().Password()
		d.needsHash = true
	}
	return d
}

// Apply copies every persisted field into a freshly constructed player.
// Game loop goroutine only, at login completion.
func (d *PlayerData) Apply(p *world.Player) error {
	if d.Position.Z < 0 || d.Position.Z >= world.HeightLevels {
		return fmt.Errorf("position plane %d out of range", d.Position.Z)
	}
	p.SetInitialPosition(d.Position)
	p.SetHashedPassword(d.Password)
	p.SetRights(d.Rights)
	p.SetLastIP(d.LastIP)
	if err := p.Appearance().SetValues(d.Appearance); err != nil {
		return err
	}
	p.SetSettings(d.Settings)
	p.Inventory().Init(d.Inventory)
	p.Bank().Init(d.Bank)
	p.Equipment().Init(d.Equipment)
	p.Skills().Init(d.Skills)
	p.SetFriends(d.Friends)
	p.SetIgnores(d.Ignores)
	p.SetUnbanDate(copyTime(d.UnbanDate))
	p.SetUnmuteDate(copyTime(d.UnmuteDate))
	p.SetAttributes(d.Attributes.Copy())
	return nil
}

// NeedsHash reports whether the proxy still carries a plaintext credential.
func (d *PlayerData) NeedsHash() bool {
	return d.needsHash
}

// EnsureHashed computes the one-way hash of a deferred plaintext
// credential and discards the plaintext. Worker goroutine only.
func (d *PlayerData) EnsureHashed() error {
	if !d.needsHash {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(d.plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	d.Password = string(hash)
	d.plaintext = ""
	d.needsHash = false
	return nil
}

// VerifyPassword checks a plaintext attempt against the stored hash.
func (d *PlayerData) VerifyPassword(attempt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(d.Password), []byte(attempt)) == nil
}

// IsBanned reports whether the ban expiry is strictly in the future. A nil
// expiry means never banned; an expiry at or before now has lapsed.
func (d *PlayerData) IsBanned() bool {
	return d.UnbanDate != nil && d.UnbanDate.After(time.Now())
}

// IsMuted reports whether the mute expiry is strictly in the future.
func (d *PlayerData) IsMuted() bool {
	return d.UnmuteDate != nil && d.UnmuteDate.After(time.Now())
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
