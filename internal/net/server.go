package net

import (
	"net"

	"go.uber.org/zap"

	"github.com/natis1/luna/internal/data"
	"github.com/natis1/luna/internal/service"
)

// Server accepts TCP connections and turns them into Sessions. Parsed
// login attempts are forwarded straight to the login service; everything
// after that flows through the attached player.
type Server struct {
	listener net.Listener
	logins   *service.LoginService
	filter   *data.AddressFilter
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, logins *service.LoginService, filter *data.AddressFilter, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: ln,
		logins:   logins,
		filter:   filter,
		log:      log.Named("net"),
		closeCh:  make(chan struct{}),
	}, nil
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		addr := conn.RemoteAddr().String()
		if s.filter != nil && s.filter.Blocked(addr) {
			s.log.Info("connection refused, address blocked", zap.String("addr", addr))
			conn.Close()
			continue
		}

		sess := NewSession(conn, s.logins, s.log)
		sess.Start()
		s.log.Info("client connected",
			zap.String("session", sess.ID.String()), zap.String("addr", addr))
	}
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
