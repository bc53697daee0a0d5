package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwmonitor/internal/hardware"
	"hwmonitor/internal/hardware/hardwaretest"
	"hwmonitor/internal/logger"
)

func run(t *testing.T, p *Poller, d time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	err := p.Start(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStartUpdatesOnInterval(t *testing.T) {
	c := hardwaretest.New()
	p := New(c, 10*time.Millisecond, logger.Discard())

	run(t, p, 105*time.Millisecond)

	assert.GreaterOrEqual(t, c.Updates(), int64(4))
	assert.LessOrEqual(t, c.Updates(), int64(11))
	assert.Equal(t, c.Updates(), p.Stats().Updates)
}

func TestStartStopsOnCancel(t *testing.T) {
	c := hardwaretest.New()
	p := New(c, time.Hour, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Zero(t, c.Updates())
}

func TestSlowUpdateDoesNotDrift(t *testing.T) {
	c := hardwaretest.New()
	c.OnUpdate = func(context.Context) error {
		time.Sleep(30 * time.Millisecond)
		return nil
	}
	p := New(c, 20*time.Millisecond, logger.Discard())

	run(t, p, 330*time.Millisecond)

	// Sleeping a full interval after every update would give at most 7.
	assert.GreaterOrEqual(t, c.Updates(), int64(8))
}

func TestViewNeverSeesPartialUpdate(t *testing.T) {
	a := hardwaretest.Sensor("A", "/test/0/load/0", hardware.Load, 0)
	b := hardwaretest.Sensor("B", "/test/0/load/1", hardware.Load, 0)
	c := hardwaretest.New(&hardware.Hardware{Name: "Test", Sensors: []*hardware.Sensor{a, b}})

	var generation float64
	c.OnUpdate = func(context.Context) error {
		generation++
		a.Set(generation)
		time.Sleep(5 * time.Millisecond)
		b.Set(generation)
		return nil
	}
	p := New(c, time.Millisecond, logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	go p.Start(ctx)

	var mixed atomic.Int64
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				p.View(func(hardware.Computer) {
					if a.Value != b.Value {
						mixed.Add(1)
					}
				})
				time.Sleep(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, mixed.Load())
	assert.Positive(t, c.Updates())
}

func TestUpdateFailureKeepsPolling(t *testing.T) {
	fail := errors.New("sysfs gone")
	var calls atomic.Int64

	c := hardwaretest.New()
	c.OnUpdate = func(context.Context) error {
		if calls.Add(1) <= 2 {
			return fail
		}
		return nil
	}
	p := New(c, time.Millisecond, logger.Discard())

	p.Update(context.Background())
	p.Update(context.Background())

	stats := p.Stats()
	assert.Equal(t, 2, stats.ConsecutiveFailures)
	assert.Equal(t, "sysfs gone", stats.LastError)

	run(t, p, 30*time.Millisecond)

	stats = p.Stats()
	assert.Zero(t, stats.ConsecutiveFailures)
	assert.Empty(t, stats.LastError)
	assert.Greater(t, stats.Updates, int64(2))
}

func TestUpdatePanicIsRecovered(t *testing.T) {
	c := hardwaretest.New()
	c.OnUpdate = func(context.Context) error {
		panic("driver fault")
	}
	p := New(c, time.Millisecond, logger.Discard())

	assert.NotPanics(t, func() { p.Update(context.Background()) })
	assert.Equal(t, 1, p.Stats().ConsecutiveFailures)
	assert.Contains(t, p.Stats().LastError, "driver fault")

	// the lock must have been released
	called := false
	p.View(func(hardware.Computer) { called = true })
	assert.True(t, called)
}

func TestViewPassesComputer(t *testing.T) {
	c := hardwaretest.New(&hardware.Hardware{Name: "CPU", Type: hardware.CPU})
	p := New(c, time.Second, logger.Discard())

	p.View(func(got hardware.Computer) {
		require.Len(t, got.Hardware(), 1)
		assert.Equal(t, "CPU", got.Hardware()[0].Name)
	})
}
