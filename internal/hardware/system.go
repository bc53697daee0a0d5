package hardware

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"hwmonitor/internal/logger"
)

const bytesPerGB = 1024 * 1024 * 1024

// systemSource samples OS-wide counters once per update; the sensors it
// creates read from the cached sample.
type systemSource struct {
	log logger.Logger

	totalLoad float64
	coreLoads []float64
	memory    memorySample
	temps     map[string]float64
	withTemps bool
}

type memorySample struct {
	usedGB, availableGB           float64
	virtualUsedGB, virtualAvailGB float64
	usedPercent, virtualPercent   float64
}

func newSystemSource(log logger.Logger) *systemSource {
	return &systemSource{log: log, temps: make(map[string]float64)}
}

func (s *systemSource) refresh(ctx context.Context) error {
	var errs []error

	if total, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		errs = append(errs, fmt.Errorf("cpu load: %w", err))
	} else if len(total) > 0 {
		s.totalLoad = total[0]
	}

	if perCore, err := cpu.PercentWithContext(ctx, 0, true); err != nil {
		errs = append(errs, fmt.Errorf("cpu core load: %w", err))
	} else {
		s.coreLoads = perCore
	}

	if err := s.refreshMemory(ctx); err != nil {
		errs = append(errs, err)
	}

	if s.withTemps {
		temps, err := host.SensorsTemperaturesWithContext(ctx)
		if err != nil && len(temps) == 0 {
			errs = append(errs, fmt.Errorf("host temperatures: %w", err))
		}
		for _, t := range temps {
			s.temps[t.SensorKey] = t.Temperature
		}
	}

	return errors.Join(errs...)
}

func (s *systemSource) refreshMemory(ctx context.Context) error {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return fmt.Errorf("virtual memory: %w", err)
	}
	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return fmt.Errorf("swap memory: %w", err)
	}

	used := float64(vm.Total - vm.Available)
	avail := float64(vm.Available)
	vUsed := used + float64(swap.Used)
	vAvail := avail + float64(swap.Free)

	s.memory = memorySample{
		usedGB:         used / bytesPerGB,
		availableGB:    avail / bytesPerGB,
		virtualUsedGB:  vUsed / bytesPerGB,
		virtualAvailGB: vAvail / bytesPerGB,
		usedPercent:    vm.UsedPercent,
	}
	if total := vUsed + vAvail; total > 0 {
		s.memory.virtualPercent = vUsed / total * 100
	}

	return nil
}

// attach adds CPU load, memory and, when hwmon offered no temperature
// at all, host temperature hardware to the enumerated tree.
func (s *systemSource) attach(ctx context.Context, hw []*Hardware, names *productNames) []*Hardware {
	s.withTemps = !hasSensorType(hw, Temperature)
	if err := s.refresh(ctx); err != nil {
		s.log.Warn("system sensors partially unavailable", "error", err)
	}

	idx := slices.IndexFunc(hw, func(h *Hardware) bool { return h.Type == CPU })
	if idx < 0 {
		hw = append(hw, &Hardware{Name: "CPU", Type: CPU, Identifier: "/cpu/0"})
		idx = len(hw) - 1
	}
	cpuHW := hw[idx]
	if names != nil && names.cpu != "" {
		cpuHW.Name = names.cpu
	}
	s.attachCPULoad(cpuHW)

	hw = append(hw, s.memoryHardware())

	if s.withTemps && len(s.temps) > 0 {
		hw = append(hw, s.thermalHardware())
	}

	slices.SortStableFunc(hw, func(a, b *Hardware) int {
		return int(a.Type) - int(b.Type)
	})

	return hw
}

func (s *systemSource) attachCPULoad(h *Hardware) {
	ordinal := countType(h.Sensors, Load)

	total := NewSensor("CPU Total", fmt.Sprintf("%s/load/%d", h.Identifier, ordinal), Load)
	total.read = func() (float64, error) { return s.totalLoad, nil }
	h.AddSensor(total)

	for i := range s.coreLoads {
		ordinal++
		core := NewSensor(fmt.Sprintf("CPU Core #%d", i+1), fmt.Sprintf("%s/load/%d", h.Identifier, ordinal), Load)
		core.read = func() (float64, error) {
			if i >= len(s.coreLoads) {
				return 0, fmt.Errorf("core %d not sampled", i)
			}
			return s.coreLoads[i], nil
		}
		h.AddSensor(core)
	}
}

func (s *systemSource) memoryHardware() *Hardware {
	h := &Hardware{Name: "Generic Memory", Type: Memory, Identifier: "/ram"}

	add := func(name, id string, t SensorType, v func() float64) {
		sensor := NewSensor(name, id, t)
		sensor.read = func() (float64, error) { return v(), nil }
		h.AddSensor(sensor)
	}

	add("Memory", "/ram/load/0", Load, func() float64 { return s.memory.usedPercent })
	add("Virtual Memory", "/ram/load/1", Load, func() float64 { return s.memory.virtualPercent })
	add("Memory Used", "/ram/data/0", Data, func() float64 { return s.memory.usedGB })
	add("Memory Available", "/ram/data/1", Data, func() float64 { return s.memory.availableGB })
	add("Virtual Memory Used", "/ram/data/2", Data, func() float64 { return s.memory.virtualUsedGB })
	add("Virtual Memory Available", "/ram/data/3", Data, func() float64 { return s.memory.virtualAvailGB })

	return h
}

func (s *systemSource) thermalHardware() *Hardware {
	h := &Hardware{Name: "Thermal Sensors", Type: EmbeddedController, Identifier: "/thermal/0"}

	keys := make([]string, 0, len(s.temps))
	for k := range s.temps {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for i, key := range keys {
		sensor := NewSensor(key, fmt.Sprintf("/thermal/0/temperature/%d", i), Temperature)
		sensor.read = func() (float64, error) {
			v, ok := s.temps[key]
			if !ok {
				return 0, fmt.Errorf("temperature %s not sampled", key)
			}
			return v, nil
		}
		h.AddSensor(sensor)
	}

	return h
}

// productNames resolves marketing names that hwmon does not expose.
type productNames struct {
	cpu   string
	gpus  map[string]string
	disks map[string]string
}

func lookupProductNames(log logger.Logger) *productNames {
	names := &productNames{
		gpus:  make(map[string]string),
		disks: make(map[string]string),
	}

	if info, err := ghw.CPU(); err != nil {
		log.Debug("ghw cpu lookup failed", "error", err)
	} else if len(info.Processors) > 0 {
		names.cpu = strings.TrimSpace(info.Processors[0].Model)
	}
	if names.cpu == "" {
		if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
			names.cpu = strings.TrimSpace(infos[0].ModelName)
		}
	}

	if info, err := ghw.GPU(); err != nil {
		log.Debug("ghw gpu lookup failed", "error", err)
	} else {
		for _, card := range info.GraphicsCards {
			if card.DeviceInfo != nil && card.DeviceInfo.Product != nil {
				names.gpus[card.Address] = card.DeviceInfo.Product.Name
			}
		}
	}

	if info, err := ghw.Block(); err != nil {
		log.Debug("ghw block lookup failed", "error", err)
	} else {
		for _, disk := range info.Disks {
			if disk.Model != "" && disk.Model != "unknown" {
				names.disks[disk.Name] = strings.ReplaceAll(disk.Model, "_", " ")
			}
		}
	}

	return names
}

// forDevice looks up a name by the basename of a hwmon device link, a PCI
// address for GPUs or a controller name such as nvme0 for storage.
func (n *productNames) forDevice(kind HardwareType, dev string) string {
	switch kind {
	case GpuAmd, GpuNvidia, GpuIntel:
		return n.gpus[dev]
	case Storage:
		for name, model := range n.disks {
			if name == dev || strings.HasPrefix(name, dev+"n") {
				return model
			}
		}
	}
	return ""
}

func hasSensorType(hw []*Hardware, t SensorType) bool {
	for _, h := range hw {
		if countType(h.Sensors, t) > 0 || hasSensorType(h.SubHardware, t) {
			return true
		}
	}
	return false
}

func countType(sensors []*Sensor, t SensorType) int {
	n := 0
	for _, s := range sensors {
		if s.Type == t {
			n++
		}
	}
	return n
}
