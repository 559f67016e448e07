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
	// ErrAlreadyPending is returned when a keyed request is submitted while
	// an earlier request for the same key is still in flight.
	ErrAlreadyPending = errors.New("request already pending for key")

	// ErrStopped is returned when submitting to a service that has shut down.
	ErrStopped = errors.New("service stopped")

	// ErrQueueFull is returned when every worker is busy and the job buffer
	// has no room. Submission never blocks the caller on backpressure.
	ErrQueueFull = errors.New("worker queue is full")
)

const saveTimeout = 30 * time.Second

type saveJob struct {
	key  string
	data *persist.PlayerData
	fut  *Future
}

// saveQueue fans keyed save jobs out to a fixed worker pool. At most one
// job per key is in flight at a time; password hashing happens on the
// worker, never on the game loop.
type saveQueue struct {
	store   persist.PlayerStore
	log     *zap.Logger
	jobs    chan saveJob
	workers int

	mu      sync.Mutex
	pending map[string]*Future
	stopped bool

	wg sync.WaitGroup
}

func newSaveQueue(store persist.PlayerStore, log *zap.Logger, workers int) *saveQueue {
	if workers < 1 {
		workers = 1
	}
	return &saveQueue{
		store:   store,
		log:     log,
		jobs:    make(chan saveJob, workers*8),
		workers: workers,
		pending: make(map[string]*Future),
	}
}

func (q *saveQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
}

func (q *saveQueue) stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

// submit never blocks on worker backpressure: the callers run on the game
// loop, which must keep ticking while writes drain.
func (q *saveQueue) submit(key string, data *persist.PlayerData) (*Future, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return nil, ErrStopped
	}
	if _, ok := q.pending[key]; ok {
		return nil, ErrAlreadyPending
	}
	fut := newFuture()
	select {
	case q.jobs <- saveJob{key: key, data: data, fut: fut}:
		q.pending[key] = fut
		return fut, nil
	default:
		return nil, ErrQueueFull
	}
}

func (q *saveQueue) work() {
	defer q.wg.Done()
	for job := range q.jobs {
		err := q.save(job.key, job.data)
		q.mu.Lock()
		delete(q.pending, job.key)
		q.mu.Unlock()
		if err != nil {
			q.log.Error("player save failed", zap.String("key", job.key), zap.Error(err))
		}
		job.fut.complete(err)
	}
}

func (q *saveQueue) save(key string, data *persist.PlayerData) error {
	if err := data.EnsureHashed(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return q.store.Save(ctx, key, data)
}

// PersistenceService writes periodic saves for online players without
// blocking the game loop. Snapshots are taken on the caller's goroutine so
// the worker only ever sees detached data.
type PersistenceService struct {
	queue *saveQueue
}

func NewPersistenceService(store persist.PlayerStore, log *zap.Logger, workers int) *PersistenceService {
	return &PersistenceService{queue: newSaveQueue(store, log.Named("persistence"), workers)}
}

func (s *PersistenceService) Name() string { return "persistence" }

func (s *PersistenceService) Start(ctx context.Context) error {
	s.queue.start()
	return nil
}

func (s *PersistenceService) Stop(ctx context.Context) error {
	s.queue.stop()
	return nil
}

// Save snapshots the player and queues the write. A save already in flight
// for the same player is reported as ErrAlreadyPending.
func (s *PersistenceService) Save(p *world.Player) (*Future, error) {
	return s.queue.submit(p.Username(), persist.Snapshot(p))
}
