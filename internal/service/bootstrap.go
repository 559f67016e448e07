package service

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BootstrapTask is a unit of startup work, typically loading a definition
// table or resource file from disk.
type BootstrapTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// RunBootstrap executes every task on a bounded pool and waits for all of
// them to finish. Any task failure makes the whole launch fail; the first
// error observed is returned wrapped with the task name.
func RunBootstrap(ctx context.Context, log *zap.Logger, tasks []BootstrapTask) error {
	log.Info("waiting for launch tasks to complete", zap.Int("tasks", len(tasks)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := task.Run(ctx); err != nil {
				return fmt.Errorf("task %s: %w", task.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}
