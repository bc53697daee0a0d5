// Package poller keeps a hardware.Computer fresh in the background and
// serialises every access to it behind one mutex.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hwmonitor/internal/hardware"
	"hwmonitor/internal/logger"
)

type Poller struct {
	mu       sync.Mutex
	computer hardware.Computer

	interval time.Duration
	log      logger.Logger

	statsMu sync.Mutex
	stats   Stats
}

type Stats struct {
	LastUpdate          time.Time     `json:"last_update"`
	LastDuration        time.Duration `json:"last_duration_ns"`
	Updates             int64         `json:"updates"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	LastError           string        `json:"last_error,omitempty"`
}

func New(computer hardware.Computer, interval time.Duration, log logger.Logger) *Poller {
	return &Poller{
		computer: computer,
		interval: interval,
		log:      log,
	}
}

// Start refreshes the computer every interval until ctx is done. The time
// spent updating is subtracted from the next wait; an update that overruns
// the interval is followed by the next one immediately.
func (p *Poller) Start(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	p.log.Info("poller started", "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopping...")
			return ctx.Err()
		case <-timer.C:
			start := time.Now()
			p.Update(ctx)
			elapsed := time.Since(start)

			timer.Reset(max(0, p.interval-elapsed))
		}
	}
}

// Update runs one refresh under the lock. Failures keep the previous
// readings; they are logged and counted, never returned.
func (p *Poller) Update(ctx context.Context) {
	start := time.Now()
	err := p.locked(ctx)
	elapsed := time.Since(start)

	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	p.stats.LastUpdate = start
	p.stats.LastDuration = elapsed
	p.stats.Updates++

	if err != nil {
		p.stats.ConsecutiveFailures++
		p.stats.LastError = err.Error()
		p.log.Error("sensor update failed, keeping last values",
			"error", err, "consecutive_failures", p.stats.ConsecutiveFailures)
		return
	}

	if p.stats.ConsecutiveFailures > 0 {
		p.log.Info("sensor update recovered", "after_failures", p.stats.ConsecutiveFailures)
	}
	p.stats.ConsecutiveFailures = 0
	p.stats.LastError = ""
}

func (p *Poller) locked(ctx context.Context) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sensor update panic: %v", r)
		}
	}()

	return p.computer.Update(ctx)
}

// View runs fn with exclusive access to the computer. fn must not retain
// references to sensors after it returns.
func (p *Poller) View(fn func(c hardware.Computer)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn(p.computer)
}

func (p *Poller) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	return p.stats
}
