// Package hardwaretest provides a hardware.Computer for tests.
package hardwaretest

import (
	"context"
	"sync/atomic"

	"hwmonitor/internal/hardware"
)

// Computer serves a fixed tree. OnUpdate, when set, runs inside Update.
type Computer struct {
	Tree     []*hardware.Hardware
	OnUpdate func(ctx context.Context) error

	updates atomic.Int64
}

func New(tree ...*hardware.Hardware) *Computer {
	return &Computer{Tree: tree}
}

func (c *Computer) Hardware() []*hardware.Hardware {
	return c.Tree
}

func (c *Computer) Update(ctx context.Context) error {
	c.updates.Add(1)
	if c.OnUpdate != nil {
		return c.OnUpdate(ctx)
	}
	return nil
}

func (c *Computer) Close() error {
	return nil
}

func (c *Computer) Updates() int64 {
	return c.updates.Load()
}

// Sensor builds a sensor that already holds value v.
func Sensor(name, id string, t hardware.SensorType, v float64) *hardware.Sensor {
	s := hardware.NewSensor(name, id, t)
	s.Set(v)
	return s
}
