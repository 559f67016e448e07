package world

import (
	"strings"

	"golang.org/x/text/cases"
)

var usernameFolder = cases.Fold()

// NormalizeUsername case-folds and trims a username so lookups and social
// lists agree on one canonical form.
func NormalizeUsername(name string) string {
	return usernameFolder.String(strings.TrimSpace(name))
}

// EncodeUsername packs a normalized username into the base-37 long form
// used as a stable social-list key.
func EncodeUsername(name string) uint64 {
	var hash uint64
	for _, r := range NormalizeUsername(name) {
		hash *= 37
		switch {
		case r >= 'a' && r <= 'z':
			hash += uint64(1 + r - 'a')
		case r >= '0' && r <= '9':
			hash += uint64(27 + r - '0')
		}
	}
	for hash != 0 && hash%37 == 0 {
		hash /= 37
	}
	return hash
}

// Credentials is the identity a session authenticates with. The plaintext
// password is held only until a hashed form exists.
type Credentials struct {
	username     string
	usernameHash uint64
	password     string
}

func NewCredentials(username, password string) *Credentials {
	normalized := NormalizeUsername(username)
	return &Credentials{
		username:     normalized,
		usernameHash: EncodeUsername(normalized),
		password:     password,
	}
}

// Username returns the canonical username.
func (c *Credentials) Username() string {
	return c.username
}

// UsernameHash returns the base-37 identity key.
func (c *Credentials) UsernameHash() uint64 {
	return c.usernameHash
}

// Password returns the plaintext password, empty once discarded.
func (c *Credentials) Password() string {
	return c.password
}

// SetPassword replaces the plaintext password.
func (c *Credentials) SetPassword(password string) {
	c.password = password
}
