// Package hardware enumerates hardware devices and their sensors and keeps
// the readings fresh. A Computer is the handle over everything enumerated;
// its Update method refreshes all sensors in place.
package hardware

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoHwmon = errors.New("hwmon class directory not found")

// ErrNoReading is returned by sensor readers that need a second sample
// before they can report. The sensor stays unread.
var ErrNoReading = errors.New("no reading yet")

type Computer interface {
	Hardware() []*Hardware
	Update(ctx context.Context) error
	Close() error
}

type Hardware struct {
	Name        string
	Type        HardwareType
	Identifier  string
	Sensors     []*Sensor
	SubHardware []*Hardware
}

func (h *Hardware) AddSensor(s *Sensor) {
	h.Sensors = append(h.Sensors, s)
}

func (h *Hardware) AddSubHardware(sub *Hardware) {
	h.SubHardware = append(h.SubHardware, sub)
}

func (h *Hardware) update() error {
	var errs []error
	for _, s := range h.Sensors {
		if err := s.refresh(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sub := range h.SubHardware {
		if err := sub.update(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sensor holds the current reading and the range observed since the
// sensor was created. Min, Max and Value are meaningful only when Valid.
type Sensor struct {
	Name       string
	Type       SensorType
	Identifier string

	Value float64
	Min   float64
	Max   float64
	Valid bool

	read func() (float64, error)
}

func NewSensor(name, identifier string, t SensorType) *Sensor {
	return &Sensor{Name: name, Type: t, Identifier: identifier}
}

func (s *Sensor) Set(v float64) {
	if !s.Valid {
		s.Min, s.Max = v, v
		s.Valid = true
	}
	s.Value = v
	s.Min = min(s.Min, v)
	s.Max = max(s.Max, v)
}

func (s *Sensor) refresh() error {
	if s.read == nil {
		return nil
	}

	v, err := s.read()
	if errors.Is(err, ErrNoReading) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sensor %s: %w", s.Identifier, err)
	}

	s.Set(v)
	return nil
}

// GroupByType splits sensors by type. Groups are ordered by the first
// occurrence of their type; sensors keep their relative order.
func GroupByType(sensors []*Sensor) [][]*Sensor {
	index := make(map[SensorType]int)
	var groups [][]*Sensor

	for _, s := range sensors {
		i, ok := index[s.Type]
		if !ok {
			i = len(groups)
			index[s.Type] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], s)
	}

	return groups
}
