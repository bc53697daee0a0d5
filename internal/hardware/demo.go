package hardware

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

// DemoComputer produces a fixed hardware tree with random-walk readings.
// It stands in for real sensors on hosts without hwmon.
type DemoComputer struct {
	rng      *rand.Rand
	hardware []*Hardware
	walkers  []walker
}

type walker struct {
	sensor   *Sensor
	lo, hi   float64
	maxDelta float64
}

func NewDemoComputer(seed uint64) *DemoComputer {
	d := &DemoComputer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}

	superIO := &Hardware{Name: "NCT6798D", Type: SuperIO, Identifier: "/lpc/nct6798d/0"}
	d.add(superIO, "Vcore", Voltage, 0.8, 1.4, 0.02)
	d.add(superIO, "+12V", Voltage, 11.8, 12.2, 0.01)
	d.add(superIO, "System", Temperature, 28, 45, 0.5)
	d.add(superIO, "Fan #1", Fan, 600, 1400, 25)
	d.add(superIO, "Fan Control #1", Control, 20, 80, 2)

	board := &Hardware{Name: "Demo Board", Type: Motherboard, Identifier: "/motherboard"}
	board.AddSubHardware(superIO)

	cpu := &Hardware{Name: "Demo CPU", Type: CPU, Identifier: "/cpu/0"}
	d.add(cpu, "Core #1", Clock, 800, 4800, 150)
	d.add(cpu, "Core #2", Clock, 800, 4800, 150)
	d.add(cpu, "Package", Temperature, 35, 85, 1.5)
	d.add(cpu, "Core #1", Temperature, 33, 85, 1.5)
	d.add(cpu, "Core #2", Temperature, 33, 85, 1.5)
	d.add(cpu, "CPU Total", Load, 0, 100, 6)
	d.add(cpu, "Package", Power, 5, 125, 4)

	memory := &Hardware{Name: "Generic Memory", Type: Memory, Identifier: "/ram"}
	d.add(memory, "Memory", Load, 20, 90, 1)
	d.add(memory, "Memory Used", Data, 3, 14, 0.1)
	d.add(memory, "Memory Available", Data, 2, 13, 0.1)

	gpu := &Hardware{Name: "Demo GPU", Type: GpuAmd, Identifier: "/gpu-amd/0"}
	d.add(gpu, "GPU Core", Temperature, 30, 90, 1)
	d.add(gpu, "GPU Fan", Fan, 0, 3000, 50)
	d.add(gpu, "GPU Core", Load, 0, 100, 8)
	d.add(gpu, "GPU Package", Power, 10, 250, 6)

	d.hardware = []*Hardware{board, cpu, memory, gpu}

	d.step()
	return d
}

func (d *DemoComputer) add(h *Hardware, name string, t SensorType, lo, hi, maxDelta float64) {
	id := fmt.Sprintf("%s/%s/%d", h.Identifier, strings.ToLower(t.String()), countType(h.Sensors, t))
	s := NewSensor(name, id, t)
	h.AddSensor(s)

	d.walkers = append(d.walkers, walker{sensor: s, lo: lo, hi: hi, maxDelta: maxDelta})
}

func (d *DemoComputer) Hardware() []*Hardware {
	return d.hardware
}

func (d *DemoComputer) Update(_ context.Context) error {
	d.step()
	return nil
}

func (d *DemoComputer) Close() error {
	return nil
}

func (d *DemoComputer) step() {
	for _, w := range d.walkers {
		v := w.sensor.Value
		if !w.sensor.Valid {
			v = w.lo + (w.hi-w.lo)*d.rng.Float64()
		}
		v += (d.rng.Float64()*2 - 1) * w.maxDelta
		w.sensor.Set(min(max(v, w.lo), w.hi))
	}
}
