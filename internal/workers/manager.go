// Package workers
package workers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hwmonitor/internal/logger"
)

type Manager struct {
	log logger.Logger

	scheduler *Scheduler
	services  *ManagerServices
}

type ManagerServices struct {
	Source     Snapshotter
	Sinks      []Sink
	InstanceID uuid.UUID
	Hostname   string
	Interval   time.Duration
}

func NewManager(log logger.Logger, scheduler *Scheduler, services *ManagerServices) *Manager {
	return &Manager{
		log: log,

		scheduler: scheduler,
		services:  services,
	}
}

// Start blocks until ctx is done. With no sinks configured it returns
// immediately.
func (m *Manager) Start(ctx context.Context) error {
	if len(m.services.Sinks) == 0 {
		m.log.Info("worker: no sinks configured, publishing disabled")
		return nil
	}

	names := make([]string, 0, len(m.services.Sinks))
	for _, s := range m.services.Sinks {
		names = append(names, s.Name())
	}
	m.log.Info("worker: manager started", "sinks", names, "interval", m.services.Interval)

	m.scheduler.RunByDuration(ctx, m.services.Interval, NewSnapshotPublishWorker(
		m.services.Source,
		m.services.Sinks,
		m.services.InstanceID,
		m.services.Hostname,
	))

	return ctx.Err()
}
