package world

// PresenceListener receives world entry, exit, and movement notifications.
// Hooks fire on the game loop goroutine, after the mutation they describe
// has been committed.
type PresenceListener interface {
	OnLogin(p *Player)
	OnLogout(p *Player)
	OnPositionChange(p *Player, old Position)
}

// ListenerFuncs adapts plain functions to a PresenceListener. Nil fields
// are skipped.
type ListenerFuncs struct {
	Login          func(p *Player)
	Logout         func(p *Player)
	PositionChange func(p *Player, old Position)
}

func (l ListenerFuncs) OnLogin(p *Player) {
	if l.Login != nil {
		l.Login(p)
	}
}

func (l ListenerFuncs) OnLogout(p *Player) {
	if l.Logout != nil {
		l.Logout(p)
	}
}

func (l ListenerFuncs) OnPositionChange(p *Player, old Position) {
	if l.PositionChange != nil {
		l.PositionChange(p, old)
	}
}
