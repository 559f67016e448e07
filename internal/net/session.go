package net

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/natis1/luna/internal/service"
	"github.com/natis1/luna/internal/world"
)

const outQueueSize = 64

// Session is a single client connection. Network I/O runs in dedicated
// goroutines; the only game state a session ever touches is the attached
// player's logout flag, which is safe from any goroutine.
type Session struct {
	ID   uuid.UUID
	conn net.Conn

	logins *service.LoginService
	player atomic.Pointer[world.Player]

	out chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn net.Conn, logins *service.LoginService, log *zap.Logger) *Session {
	id := uuid.New()
	return &Session{
		ID:      id,
		conn:    conn,
		logins:  logins,
		out:     make(chan []byte, outQueueSize),
		closeCh: make(chan struct{}),
		log:     log.With(zap.String("session", id.String())),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Attach binds the activated player to this session. Called from the game
// loop once login completes.
func (s *Session) Attach(p *world.Player) {
	s.player.Store(p)
	s.Send([]byte("OK\n"))
}

// Deny reports a rejected login and closes the connection.
func (s *Session) Deny(reason string) {
	s.Send([]byte(fmt.Sprintf("DENY %s\n", reason)))
	// Give the writer a moment to flush before tearing the socket down.
	time.AfterFunc(250*time.Millisecond, s.Close)
}

// Send queues outbound data. A full queue disconnects the session rather
// than blocking the caller.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.out <- data:
	default:
		s.log.Warn("output queue full, dropping slow client")
		s.Close()
	}
}

// Close shuts the session down and flags a logout for any attached player.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
		if p := s.player.Load(); p != nil {
			p.SetPendingLogout()
		}
	})
}

// readLoop parses line-oriented commands. The first command must be LOGIN;
// after that only LOGOUT is recognized.
func (s *Session) readLoop() {
	defer s.Close()

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToUpper(fields[0]) {
		case "LOGIN":
			if len(fields) != 3 {
				s.Send([]byte("DENY malformed login\n"))
				return
			}
			if s.player.Load() != nil {
				continue
			}
			req := service.LoginRequest{
				Username: fields[1],
				Password: fields[2],
				Addr:     s.conn.RemoteAddr().String(),
				Conn:     s,
			}
			if _, err := s.logins.Submit(req); err != nil {
				s.log.Info("login submit refused", zap.Error(err))
				s.Send([]byte("DENY try again\n"))
			}
		case "LOGOUT":
			if p := s.player.Load(); p != nil {
				p.SetPendingLogout()
			}
			return
		default:
			s.log.Debug("unknown command", zap.String("cmd", fields[0]))
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if _, err := s.conn.Write(data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write failed", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
