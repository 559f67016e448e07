package event

import "github.com/natis1/luna/internal/world"

// PlayerLoggedIn fires the tick after a player enters the world.
type PlayerLoggedIn struct {
	Username string
	Index    int
}

// PlayerLoggedOut fires the tick after a player leaves the world.
type PlayerLoggedOut struct {
	Username string
	Index    int
}

// ChatBroadcast carries a public chat message to its observers. Raised
// messages are delivered one tick after they are said, once the speaker's
// position for that tick is final. Observers holds the indexes of every
// player within earshot when the message was spoken, the speaker included.
type ChatBroadcast struct {
	Username  string
	Position  world.Position
	Message   []byte
	Color     int
	Effects   int
	Observers []int
}
