package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/natis1/luna/internal/config"
	"github.com/natis1/luna/internal/data"
	"github.com/natis1/luna/internal/event"
	"github.com/natis1/luna/internal/persist"
	"github.com/natis1/luna/internal/world"
)

// GameService owns the simulation loop. Everything that mutates world
// state happens on its single goroutine; the login, logout, and
// persistence services only ever exchange detached data with it.
type GameService struct {
	world    *world.World
	logins   *LoginService
	logouts  *LogoutService
	saves    *PersistenceService
	filter   *data.AddressFilter
	cfg      config.GameConfig
	startPos world.Position
	bus      *event.Bus
	log      *zap.Logger

	tickCount uint64
	saveEvery uint64

	stop chan struct{}
	done chan struct{}
}

func NewGameService(
	w *world.World,
	logins *LoginService,
	logouts *LogoutService,
	saves *PersistenceService,
	filter *data.AddressFilter,
	cfg config.GameConfig,
	startPos world.Position,
	log *zap.Logger,
) *GameService {
	saveEvery := uint64(cfg.AutoSaveInterval / cfg.TickRate)
	if saveEvery == 0 {
		saveEvery = 1
	}
	return &GameService{
		world:     w,
		logins:    logins,
		logouts:   logouts,
		saves:     saves,
		filter:    filter,
		cfg:       cfg,
		startPos:  startPos,
		bus:       event.NewBus(),
		log:       log.Named("game"),
		saveEvery: saveEvery,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *GameService) Name() string { return "game" }

// Bus exposes the deferred event pipeline for subscriber registration.
// Subscribe before Start; handlers run on the game loop goroutine.
func (s *GameService) Bus() *event.Bus {
	return s.bus
}

func (s *GameService) Start(ctx context.Context) error {
	go s.loop()
	return nil
}

// Stop halts the loop, then flushes a final logout save for every player
// still in the world. World access here is safe once the loop goroutine
// has exited.
func (s *GameService) Stop(ctx context.Context) error {
	close(s.stop)
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var futures []*Future
	var players []*world.Player
	s.world.ForEachPlayer(func(p *world.Player) {
		players = append(players, p)
	})
	for _, p := range players {
		s.world.Deactivate(p)
		fut, err := s.logouts.Submit(p.Username(), persist.Snapshot(p))
		if err != nil {
			s.log.Error("final save submit failed",
				zap.String("username", p.Username()), zap.Error(err))
			continue
		}
		futures = append(futures, fut)
	}
	for _, fut := range futures {
		if err := fut.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *GameService) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.TickRate)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick runs one simulation step: deliver last tick's events, admit
// completed logins, advance the world, hand off logouts, autosave, then
// clear per-tick state.
func (s *GameService) tick() {
	s.tickCount++
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	s.admitLogins()
	s.world.Tick()
	s.processLogouts()
	if s.tickCount%s.saveEvery == 0 {
		s.autosave()
	}
	s.world.ForEachPlayer(func(p *world.Player) {
		if c, ok := p.Chat().Get(); ok {
			var observers []int
			for _, o := range s.world.PlayersNear(p.Position(), world.ChatRadius) {
				observers = append(observers, o.Index())
			}
			event.Emit(s.bus, event.ChatBroadcast{
				Username:  p.Username(),
				Position:  p.Position(),
				Message:   c.Message,
				Color:     c.Color,
				Effects:   c.Effects,
				Observers: observers,
			})
		}
		p.Reset()
	})
}

// admitLogins drains finished loads, bounded per tick so a login storm
// cannot starve the simulation.
func (s *GameService) admitLogins() {
	for i := 0; i < s.cfg.MaxLoginsPerTick; i++ {
		select {
		case res := <-s.logins.Results():
			s.finishLogin(res)
		default:
			return
		}
	}
}

func (s *GameService) finishLogin(res LoginResult) {
	username := world.NormalizeUsername(res.Request.Username)
	if res.Err != nil {
		s.log.Info("login rejected",
			zap.String("username", username), zap.Error(res.Err))
		if res.Request.Conn != nil {
			res.Request.Conn.Deny(res.Err.Error())
		}
		return
	}
	if s.world.Player(username) != nil {
		s.log.Info("login rejected, already online", zap.String("username", username))
		if res.Request.Conn != nil {
			res.Request.Conn.Deny("already online")
		}
		return
	}

	p := world.NewPlayer(s.world.NextPlayerIndex(),
		world.NewCredentials(res.Request.Username, res.Request.Password))
	p.SetLastIP(res.Request.Addr)

	if res.Data == nil {
		// First session: default spawn, plus elevated rights when connecting
		// from an allowlisted address.
		s.world.SetInitialPosition(p, s.startPos)
		if s.filter != nil && s.filter.Allowlisted(res.Request.Addr) {
			p.SetRights(world.RightsDeveloper)
		}
	} else {
		if err := res.Data.Apply(p); err != nil {
			s.log.Error("player data rejected",
				zap.String("username", username), zap.Error(err))
			return
		}
	}

	if err := s.world.Activate(p); err != nil {
		s.log.Error("activation failed",
			zap.String("username", username), zap.Error(err))
		if res.Request.Conn != nil {
			res.Request.Conn.Deny("activation failed")
		}
		return
	}
	if res.Request.Conn != nil {
		res.Request.Conn.Attach(p)
	}
	event.Emit(s.bus, event.PlayerLoggedIn{Username: p.Username(), Index: p.Index()})
}

// processLogouts pulls flagged players out of the world and hands their
// snapshots to the logout workers. The snapshot is taken before anything
// else can touch the player again.
func (s *GameService) processLogouts() {
	for _, p := range s.world.PendingLogouts() {
		s.world.Deactivate(p)
		data := persist.Snapshot(p)
		if _, err := s.logouts.Submit(p.Username(), data); err != nil {
			s.log.Error("logout submit failed",
				zap.String("username", p.Username()), zap.Error(err))
		}
		event.Emit(s.bus, event.PlayerLoggedOut{Username: p.Username(), Index: p.Index()})
	}
}

func (s *GameService) autosave() {
	s.world.ForEachPlayer(func(p *world.Player) {
		if _, err := s.saves.Save(p); err != nil && err != ErrAlreadyPending {
			s.log.Error("autosave submit failed",
				zap.String("username", p.Username()), zap.Error(err))
		}
	})
}
