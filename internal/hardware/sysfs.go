package hardware

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"hwmonitor/internal/logger"
)

type Options struct {
	// SysRoot is the sysfs mount point, "/sys" outside of tests.
	SysRoot string
	// SystemSensors adds CPU load, memory and host temperature sensors
	// and resolves product names through gopsutil and ghw.
	SystemSensors bool
	Log           logger.Logger
}

type SysfsComputer struct {
	log      logger.Logger
	hardware []*Hardware
	system   *systemSource
	nvidia   *nvidiaSource
}

var channelFileRe = regexp.MustCompile(`^(in|curr|power|freq|temp|fan|pwm|energy|humidity)(\d+)(_input|_average)?$`)

// Open enumerates hwmon chips below opts.SysRoot and takes a first reading
// of every sensor.
func Open(ctx context.Context, opts Options) (*SysfsComputer, error) {
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.SysRoot == "" {
		opts.SysRoot = "/sys"
	}

	c := &SysfsComputer{log: opts.Log}

	var names *productNames
	if opts.SystemSensors {
		names = lookupProductNames(opts.Log)
	}

	chips, err := enumerateChips(opts.SysRoot, names, opts.Log)
	if err != nil {
		if !errors.Is(err, ErrNoHwmon) || !opts.SystemSensors {
			return nil, fmt.Errorf("open hardware: %w", err)
		}
		opts.Log.Warn("hwmon not available, using system sensors only", "sys_root", opts.SysRoot)
	}

	c.hardware = arrange(chips, readBoardName(opts.SysRoot))

	if opts.SystemSensors {
		c.system = newSystemSource(opts.Log)
		c.hardware = c.system.attach(ctx, c.hardware, names)
		c.attachNvidia(ctx, newNvidiaSource(opts.Log))
	}

	if err := attachRAPL(c.hardware, opts.SysRoot); err != nil {
		opts.Log.Debug("rapl package power unavailable", "error", err)
	}

	if err := c.Update(ctx); err != nil {
		opts.Log.Debug("initial sensor read incomplete", "error", err)
	}

	opts.Log.Info("hardware enumerated", "hardware", len(c.hardware), "sensors", countSensors(c.hardware))

	return c, nil
}

func (c *SysfsComputer) Hardware() []*Hardware {
	return c.hardware
}

func (c *SysfsComputer) Update(ctx context.Context) error {
	var errs []error

	if c.system != nil {
		if err := c.system.refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.nvidia != nil {
		if err := c.nvidia.refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	for _, h := range c.hardware {
		if err := h.update(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (c *SysfsComputer) Close() error {
	return nil
}

// attachNvidia adds GPUs reported by nvidia-smi unless hwmon already
// covers an NVIDIA card through nouveau.
func (c *SysfsComputer) attachNvidia(ctx context.Context, n *nvidiaSource) {
	if slices.ContainsFunc(c.hardware, func(h *Hardware) bool { return h.Type == GpuNvidia }) {
		return
	}
	if err := n.refresh(ctx); err != nil {
		c.log.Debug("nvidia-smi not available", "error", err)
		return
	}

	gpus := n.hardware()
	if len(gpus) == 0 {
		return
	}

	c.nvidia = n
	c.hardware = append(c.hardware, gpus...)
	slices.SortStableFunc(c.hardware, func(a, b *Hardware) int {
		return int(a.Type) - int(b.Type)
	})
}

func enumerateChips(sysRoot string, names *productNames, log logger.Logger) ([]*Hardware, error) {
	classDir := filepath.Join(sysRoot, "class", "hwmon")

	entries, err := os.ReadDir(classDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoHwmon
		}
		return nil, fmt.Errorf("read %s: %w", classDir, err)
	}

	var dirs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "hwmon") {
			dirs = append(dirs, e.Name())
		}
	}
	slices.SortFunc(dirs, func(a, b string) int {
		return trailingNumber(a) - trailingNumber(b)
	})

	seen := make(map[string]int)
	var chips []*Hardware

	for _, d := range dirs {
		dir := filepath.Join(classDir, d)

		chip, err := readTrimmed(filepath.Join(dir, "name"))
		if err != nil {
			log.Debug("skipping hwmon without name", "dir", dir, "error", err)
			continue
		}

		kind, name := identifyChip(chip)
		if model := deviceModel(dir, kind, names); model != "" {
			name = model
		}

		ordinal := seen[chip]
		seen[chip]++

		hw := &Hardware{
			Name:       name,
			Type:       kind,
			Identifier: fmt.Sprintf("/%s/%d", chip, ordinal),
		}
		hw.Sensors = readChannels(dir, hw.Identifier)
		if kind == GpuAmd {
			hw.Sensors = append(hw.Sensors, amdgpuSensors(dir, hw)...)
		}

		chips = append(chips, hw)
	}

	return chips, nil
}

type channel struct {
	kind  channelKind
	index int
	file  string
}

func readChannels(dir, hwID string) []*Sensor {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	found := make(map[string]channel)
	for _, e := range entries {
		m := channelFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		// pwm channels have no suffix, every other channel needs one
		if (m[1] == "pwm") != (m[3] == "") {
			continue
		}
		if m[3] == "_average" && m[1] != "power" {
			continue
		}

		key := m[1] + m[2]
		if prev, ok := found[key]; ok && strings.HasSuffix(prev.file, "_input") {
			continue
		}

		idx, _ := strconv.Atoi(m[2])
		found[key] = channel{kind: kindByPrefix(m[1]), index: idx, file: filepath.Join(dir, e.Name())}
	}

	channels := make([]channel, 0, len(found))
	for _, ch := range found {
		channels = append(channels, ch)
	}
	slices.SortFunc(channels, func(a, b channel) int {
		if a.kind.kind != b.kind.kind {
			return kindOrder(a.kind) - kindOrder(b.kind)
		}
		return a.index - b.index
	})

	ordinals := make(map[SensorType]int)
	sensors := make([]*Sensor, 0, len(channels))

	for _, ch := range channels {
		name, err := readTrimmed(filepath.Join(dir, fmt.Sprintf("%s%d_label", ch.kind.prefix, ch.index)))
		if err != nil || name == "" {
			name = fmt.Sprintf("%s #%d", ch.kind.label, ch.index)
		}

		id := fmt.Sprintf("%s/%s/%d", hwID, strings.ToLower(ch.kind.kind.String()), ordinals[ch.kind.kind])
		ordinals[ch.kind.kind]++

		s := NewSensor(name, id, ch.kind.kind)
		s.read = fileReader(ch.file, ch.kind.scale)
		sensors = append(sensors, s)
	}

	return sensors
}

func fileReader(path string, scale func(float64) float64) func() (float64, error) {
	return func() (float64, error) {
		raw, err := readTrimmed(path)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", path, err)
		}
		return scale(v), nil
	}
}

// arrange places chips under a motherboard node where appropriate and
// orders the top level by hardware type.
func arrange(chips []*Hardware, board string) []*Hardware {
	var top []*Hardware
	var mb *Hardware

	if board != "" {
		mb = &Hardware{Name: board, Type: Motherboard, Identifier: "/motherboard"}
	}

	for _, hw := range chips {
		if !nestedUnderMotherboard(hw.Type) {
			top = append(top, hw)
			continue
		}
		if mb == nil {
			mb = &Hardware{Name: "Motherboard", Type: Motherboard, Identifier: "/motherboard"}
		}
		mb.AddSubHardware(hw)
	}

	if mb != nil {
		top = append(top, mb)
	}

	slices.SortStableFunc(top, func(a, b *Hardware) int {
		return int(a.Type) - int(b.Type)
	})

	return top
}

func readBoardName(sysRoot string) string {
	dmi := filepath.Join(sysRoot, "class", "dmi", "id")
	vendor, _ := readTrimmed(filepath.Join(dmi, "board_vendor"))
	name, _ := readTrimmed(filepath.Join(dmi, "board_name"))
	return strings.TrimSpace(vendor + " " + name)
}

func deviceModel(dir string, kind HardwareType, names *productNames) string {
	if model, err := readTrimmed(filepath.Join(dir, "device", "model")); err == nil && model != "" {
		return model
	}
	if names == nil {
		return ""
	}

	dev, err := filepath.EvalSymlinks(filepath.Join(dir, "device"))
	if err != nil {
		return ""
	}
	return names.forDevice(kind, filepath.Base(dev))
}

func kindByPrefix(prefix string) channelKind {
	for _, k := range channelKinds {
		if k.prefix == prefix {
			return k
		}
	}
	return channelKinds[0]
}

func kindOrder(k channelKind) int {
	return slices.IndexFunc(channelKinds, func(c channelKind) bool { return c.prefix == k.prefix })
}

func trailingNumber(s string) int {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n, _ := strconv.Atoi(s[i:])
	return n
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func countSensors(hw []*Hardware) int {
	n := 0
	for _, h := range hw {
		n += len(h.Sensors) + countSensors(h.SubHardware)
	}
	return n
}
