package hardware

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"hwmonitor/internal/logger"
)

const bytesPerMB = 1024 * 1024

// amdgpuSensors reads the load and VRAM counters amdgpu exposes next to
// its hwmon directory, below device/.
func amdgpuSensors(dir string, hw *Hardware) []*Sensor {
	dev := filepath.Join(dir, "device")
	loads := countType(hw.Sensors, Load)
	var out []*Sensor

	busy := filepath.Join(dev, "gpu_busy_percent")
	if _, err := readTrimmed(busy); err == nil {
		s := NewSensor("GPU Core", fmt.Sprintf("%s/load/%d", hw.Identifier, loads), Load)
		s.read = fileReader(busy, func(v float64) float64 { return v })
		out = append(out, s)
		loads++
	}

	usedPath := filepath.Join(dev, "mem_info_vram_used")
	totalPath := filepath.Join(dev, "mem_info_vram_total")
	if _, err := readTrimmed(totalPath); err != nil {
		return out
	}

	used := fileReader(usedPath, func(v float64) float64 { return v / bytesPerMB })
	total := fileReader(totalPath, func(v float64) float64 { return v / bytesPerMB })

	memLoad := NewSensor("GPU Memory", fmt.Sprintf("%s/load/%d", hw.Identifier, loads), Load)
	memLoad.read = func() (float64, error) {
		u, err := used()
		if err != nil {
			return 0, err
		}
		t, err := total()
		if err != nil {
			return 0, err
		}
		if t == 0 {
			return 0, errors.New("vram total is zero")
		}
		return u / t * 100, nil
	}

	memUsed := NewSensor("GPU Memory Used", hw.Identifier+"/smalldata/0", SmallData)
	memUsed.read = used
	memFree := NewSensor("GPU Memory Free", hw.Identifier+"/smalldata/1", SmallData)
	memFree.read = func() (float64, error) {
		u, err := used()
		if err != nil {
			return 0, err
		}
		t, err := total()
		if err != nil {
			return 0, err
		}
		return t - u, nil
	}
	memTotal := NewSensor("GPU Memory Total", hw.Identifier+"/smalldata/2", SmallData)
	memTotal.read = total

	return append(out, memLoad, memUsed, memFree, memTotal)
}

var nvidiaQuery = []string{
	"--query-gpu=name,temperature.gpu,utilization.gpu,utilization.memory,memory.used,memory.total,power.draw,clocks.gr,clocks.mem,fan.speed",
	"--format=csv,noheader,nounits",
}

type nvidiaSample struct {
	name   string
	values [9]float64
	valid  [9]bool
}

// nvidiaSource polls nvidia-smi once per update. The proprietary driver
// registers no hwmon device, so this is the only way to reach its sensors.
type nvidiaSource struct {
	log     logger.Logger
	run     func(ctx context.Context) ([]byte, error)
	samples []nvidiaSample
}

func newNvidiaSource(log logger.Logger) *nvidiaSource {
	return &nvidiaSource{
		log: log,
		run: func(ctx context.Context) ([]byte, error) {
			return exec.CommandContext(ctx, "nvidia-smi", nvidiaQuery...).Output()
		},
	}
}

func (n *nvidiaSource) refresh(ctx context.Context) error {
	out, err := n.run(ctx)
	if err != nil {
		return fmt.Errorf("nvidia-smi: %w", err)
	}

	samples, err := parseNvidiaSMI(string(out))
	if err != nil {
		return err
	}
	n.samples = samples

	return nil
}

var nvidiaFields = []struct {
	name string
	kind SensorType
	id   string
}{
	{"GPU Core", Temperature, "temperature/0"},
	{"GPU Core", Load, "load/0"},
	{"GPU Memory Controller", Load, "load/1"},
	{"GPU Memory Used", SmallData, "smalldata/0"},
	{"GPU Memory Total", SmallData, "smalldata/1"},
	{"GPU Package", Power, "power/0"},
	{"GPU Core", Clock, "clock/0"},
	{"GPU Memory", Clock, "clock/1"},
	{"GPU Fan", Control, "control/0"},
}

// hardware returns one node per GPU found by the first refresh. Sensors
// whose field reads "[N/A]" stay unread.
func (n *nvidiaSource) hardware() []*Hardware {
	var out []*Hardware

	for i, sample := range n.samples {
		hw := &Hardware{
			Name:       sample.name,
			Type:       GpuNvidia,
			Identifier: fmt.Sprintf("/gpu-nvidia/%d", i),
		}

		for field, f := range nvidiaFields {
			if !sample.valid[field] {
				continue
			}
			s := NewSensor(f.name, hw.Identifier+"/"+f.id, f.kind)
			s.read = func() (float64, error) {
				if i >= len(n.samples) || !n.samples[i].valid[field] {
					return 0, fmt.Errorf("gpu %d %s not sampled", i, f.id)
				}
				return n.samples[i].values[field], nil
			}
			hw.AddSensor(s)
		}

		out = append(out, hw)
	}

	return out
}

func parseNvidiaSMI(out string) ([]nvidiaSample, error) {
	var samples []nvidiaSample

	for line := range strings.SplitSeq(strings.TrimSpace(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != len(nvidiaFields)+1 {
			return nil, fmt.Errorf("nvidia-smi: unexpected line %q", line)
		}

		sample := nvidiaSample{name: strings.TrimSpace(fields[0])}
		for i, raw := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				continue
			}
			sample.values[i] = v
			sample.valid[i] = true
		}
		samples = append(samples, sample)
	}

	return samples, nil
}
