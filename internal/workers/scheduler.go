package workers

import (
	"context"
	"time"

	"hwmonitor/internal/logger"
)

type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	log logger.Logger
}

func NewScheduler(log logger.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// RunByDuration runs worker every dur until ctx is done. A failed run is
// logged and retried on the next tick.
func (s *Scheduler) RunByDuration(ctx context.Context, dur time.Duration, worker Worker) {
	ticker := time.NewTicker(dur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("worker canceled", "name", worker.Name())
			return
		case <-ticker.C:
			start := time.Now()

			if err := worker.Run(ctx); err != nil {
				s.log.Error("worker failed", "name", worker.Name(), "error", err)
			}

			s.log.Debug("worker finished", "name", worker.Name(), "time", time.Since(start))
		}
	}
}
