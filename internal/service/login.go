package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/natis1/luna/internal/persist"
	"github.com/natis1/luna/internal/world"
)

var (
	// ErrInvalidCredentials is reported when a stored password does not
	// match the one supplied at login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrBanned is reported when the account's ban has not yet expired.
	ErrBanned = errors.New("account is banned")
)

const loadTimeout = 30 * time.Second

// Conn is the transport-side half of a login attempt. Attach binds the
// activated player to the connection so a disconnect can flag a logout;
// Deny informs the client and closes the connection.
type Conn interface {
	Attach(p *world.Player)
	Deny(reason string)
}

// LoginRequest identifies one pending login attempt. Conn may be nil for
// non-networked logins.
type LoginRequest struct {
	Username string
	Password string
	Addr     string
	Conn     Conn
}

// LoginResult is handed back to the game loop once the load completes.
// Data is nil for accounts that have never been saved.
type LoginResult struct {
	Request LoginRequest
	Data    *persist.PlayerData
	Err     error
}

// LoginService loads player data on dedicated workers. Results are drained
// by the game loop each tick; at most one load per username is in flight.
type LoginService struct {
	store   persist.PlayerStore
	log     *zap.Logger
	jobs    chan loginJob
	results chan LoginResult
	workers int

	mu      sync.Mutex
	pending map[string]*Future
	stopped bool

	wg sync.WaitGroup
}

type loginJob struct {
	req LoginRequest
	key string
	fut *Future
}

func NewLoginService(store persist.PlayerStore, log *zap.Logger, workers int) *LoginService {
	if workers < 1 {
		workers = 1
	}
	return &LoginService{
		store:   store,
		log:     log.Named("login"),
		jobs:    make(chan loginJob, workers*8),
		results: make(chan LoginResult, 256),
		workers: workers,
		pending: make(map[string]*Future),
	}
}

func (s *LoginService) Name() string { return "login" }

func (s *LoginService) Start(ctx context.Context) error {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.work()
	}
	return nil
}

func (s *LoginService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.jobs)
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

// Submit queues a load for the given request. A second submission for the
// same username while the first is unresolved returns ErrAlreadyPending, and
// a saturated worker queue returns ErrQueueFull rather than blocking the
// caller.
func (s *LoginService) Submit(req LoginRequest) (*Future, error) {
	key := world.NormalizeUsername(req.Username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}
	if _, ok := s.pending[key]; ok {
		return nil, ErrAlreadyPending
	}
	fut := newFuture()
	select {
	case s.jobs <- loginJob{req: req, key: key, fut: fut}:
		s.pending[key] = fut
		return fut, nil
	default:
		return nil, ErrQueueFull
	}
}

// Results delivers completed loads to the game loop.
func (s *LoginService) Results() <-chan LoginResult {
	return s.results
}

func (s *LoginService) work() {
	defer s.wg.Done()
	for job := range s.jobs {
		data, err := s.load(job.key, job.req.Password)
		s.mu.Lock()
		delete(s.pending, job.key)
		s.mu.Unlock()
		job.fut.complete(err)
		s.results <- LoginResult{Request: job.req, Data: data, Err: err}
	}
}

func (s *LoginService) load(key, password string) (*persist.PlayerData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	data, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if !data.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if data.IsBanned() {
		return nil, ErrBanned
	}
	return data, nil
}
