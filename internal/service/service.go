package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is a long-running server component. Start must not return until
// the service is healthy; a failed Start aborts the whole launch.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Supervisor starts a fixed set of services together and stops them in
// reverse registration order.
type Supervisor struct {
	log      *zap.Logger
	services []Service
}

func NewSupervisor(log *zap.Logger, services ...Service) *Supervisor {
	return &Supervisor{log: log, services: services}
}

// StartAll brings every service up concurrently. The first failure cancels
// the remaining starts and is returned wrapped with the service name.
func (s *Supervisor) StartAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, svc := range s.services {
		svc := svc
		g.Go(func() error {
			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("start %s: %w", svc.Name(), err)
			}
			s.log.Info("service started", zap.String("service", svc.Name()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("all services are now running", zap.Int("count", len(s.services)))
	return nil
}

// StopAll shuts services down in reverse order and joins any errors.
func (s *Supervisor) StopAll(ctx context.Context) error {
	var errs []error
	for i := len(s.services) - 1; i >= 0; i-- {
		svc := s.services[i]
		if err := svc.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", svc.Name(), err))
			continue
		}
		s.log.Info("service stopped", zap.String("service", svc.Name()))
	}
	return errors.Join(errs...)
}
