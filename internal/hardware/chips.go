package hardware

import "strings"

type chipIdentity struct {
	prefix string
	kind   HardwareType
	name   string
}

// chipIdentities maps hwmon chip name prefixes to a hardware type and a
// display name. An empty name means the upper-cased chip name is used.
var chipIdentities = []chipIdentity{
	{"coretemp", CPU, "Intel CPU"},
	{"k10temp", CPU, "AMD CPU"},
	{"zenpower", CPU, "AMD CPU"},
	{"amdgpu", GpuAmd, "AMD Radeon"},
	{"radeon", GpuAmd, "AMD Radeon"},
	{"nouveau", GpuNvidia, "NVIDIA GPU"},
	{"nvidia", GpuNvidia, "NVIDIA GPU"},
	{"i915", GpuIntel, "Intel Graphics"},
	{"xe", GpuIntel, "Intel Graphics"},
	{"nvme", Storage, "NVMe SSD"},
	{"drivetemp", Storage, "Drive"},
	{"it87", SuperIO, ""},
	{"nct", SuperIO, ""},
	{"w83", SuperIO, ""},
	{"f71", SuperIO, ""},
	{"iwlwifi", Network, "Intel Wi-Fi"},
	{"ath", Network, "Atheros Wi-Fi"},
	{"mt7", Network, "MediaTek Wi-Fi"},
	{"rtw", Network, "Realtek Wi-Fi"},
	{"bat", Battery, "Battery"},
	{"acpitz", EmbeddedController, "ACPI Thermal Zone"},
}

func identifyChip(chip string) (HardwareType, string) {
	lower := strings.ToLower(chip)
	for _, entry := range chipIdentities {
		if !strings.HasPrefix(lower, entry.prefix) {
			continue
		}
		if entry.name == "" {
			return entry.kind, strings.ToUpper(chip)
		}
		return entry.kind, entry.name
	}
	return EmbeddedController, chip
}

// nestedUnderMotherboard reports whether hardware of this type is shown
// as a child of the motherboard instead of at the top level.
func nestedUnderMotherboard(t HardwareType) bool {
	return t == SuperIO || t == EmbeddedController
}

type channelKind struct {
	prefix string
	kind   SensorType
	label  string
	scale  func(raw float64) float64
}

// channelKinds lists the hwmon sysfs channels in display order.
var channelKinds = []channelKind{
	{"in", Voltage, "Voltage", func(v float64) float64 { return v / 1e3 }},
	{"curr", Current, "Current", func(v float64) float64 { return v / 1e3 }},
	{"power", Power, "Power", func(v float64) float64 { return v / 1e6 }},
	{"freq", Clock, "Clock", func(v float64) float64 { return v / 1e6 }},
	{"temp", Temperature, "Temperature", func(v float64) float64 { return v / 1e3 }},
	{"fan", Fan, "Fan", func(v float64) float64 { return v }},
	{"pwm", Control, "Fan Control", func(v float64) float64 { return v * 100 / 255 }},
	{"energy", Energy, "Energy", func(v float64) float64 { return v / 3.6e6 }},
	{"humidity", Humidity, "Humidity", func(v float64) float64 { return v / 1e3 }},
}
