package hardware

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// raplMeter turns the cumulative package energy counter from the powercap
// interface into an average power over the last update interval.
type raplMeter struct {
	energyPath string
	maxRange   uint64
	now        func() time.Time

	primed     bool
	lastEnergy uint64
	lastTime   time.Time
}

func newRAPLMeter(sysRoot string) (*raplMeter, error) {
	dir := filepath.Join(sysRoot, "class", "powercap", "intel-rapl:0")

	m := &raplMeter{
		energyPath: filepath.Join(dir, "energy_uj"),
		now:        time.Now,
	}
	if raw, err := readTrimmed(filepath.Join(dir, "max_energy_range_uj")); err == nil {
		m.maxRange, _ = strconv.ParseUint(raw, 10, 64)
	}

	if _, err := m.energy(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *raplMeter) energy() (uint64, error) {
	raw, err := readTrimmed(m.energyPath)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", m.energyPath, err)
	}
	return v, nil
}

// watts reads the counter and returns the power since the previous call.
// The first call only records the baseline and returns ErrNoReading. The
// counter wraps at max_energy_range_uj.
func (m *raplMeter) watts() (float64, error) {
	energy, err := m.energy()
	if err != nil {
		return 0, err
	}
	now := m.now()

	if !m.primed {
		m.primed = true
		m.lastEnergy = energy
		m.lastTime = now
		return 0, ErrNoReading
	}

	elapsed := now.Sub(m.lastTime).Seconds()
	if elapsed <= 0 {
		return 0, errors.New("rapl: no time elapsed since last sample")
	}

	var delta uint64
	if energy >= m.lastEnergy {
		delta = energy - m.lastEnergy
	} else if m.maxRange > 0 {
		delta = m.maxRange - m.lastEnergy + energy
	} else {
		delta = energy
	}

	m.lastEnergy = energy
	m.lastTime = now

	return float64(delta) / 1e6 / elapsed, nil
}

// attachRAPL adds a package power sensor to the first CPU when the
// powercap interface is present.
func attachRAPL(hw []*Hardware, sysRoot string) error {
	var cpu *Hardware
	for _, h := range hw {
		if h.Type == CPU {
			cpu = h
			break
		}
	}
	if cpu == nil {
		return nil
	}

	meter, err := newRAPLMeter(sysRoot)
	if err != nil {
		return err
	}

	s := NewSensor("CPU Package", fmt.Sprintf("%s/power/%d", cpu.Identifier, countType(cpu.Sensors, Power)), Power)
	s.read = meter.watts
	cpu.AddSensor(s)

	return nil
}
