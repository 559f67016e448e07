package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/natis1/luna/internal/persist"
)

// LogoutService performs the final save for players leaving the world.
// The snapshot must be prepared on the game loop before submission; a nil
// snapshot is a programming error and fails loudly rather than dropping
// the player's progress silently.
type LogoutService struct {
	queue *saveQueue
}

func NewLogoutService(store persist.PlayerStore, log *zap.Logger, workers int) *LogoutService {
	return &LogoutService{queue: newSaveQueue(store, log.Named("logout"), workers)}
}

func (s *LogoutService) Name() string { return "logout" }

func (s *LogoutService) Start(ctx context.Context) error {
	s.queue.start()
	return nil
}

func (s *LogoutService) Stop(ctx context.Context) error {
	s.queue.stop()
	return nil
}

// Submit queues the final save for a player keyed by username.
func (s *LogoutService) Submit(key string, data *persist.PlayerData) (*Future, error) {
	if data == nil {
		panic("logout submitted without prepared save data")
	}
	return s.queue.submit(key, data)
}
