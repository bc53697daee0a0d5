package hardware

import "strconv"

type SensorType int

const (
	Voltage SensorType = iota
	Current
	Power
	Clock
	Temperature
	Load
	Frequency
	Fan
	Flow
	Control
	Level
	Factor
	Data
	SmallData
	Throughput
	TimeSpan
	Energy
	Noise
	Conductivity
	Humidity
)

var sensorTypeStrings = map[SensorType]string{
	Voltage:      "Voltage",
	Current:      "Current",
	Power:        "Power",
	Clock:        "Clock",
	Temperature:  "Temperature",
	Load:         "Load",
	Frequency:    "Frequency",
	Fan:          "Fan",
	Flow:         "Flow",
	Control:      "Control",
	Level:        "Level",
	Factor:       "Factor",
	Data:         "Data",
	SmallData:    "SmallData",
	Throughput:   "Throughput",
	TimeSpan:     "TimeSpan",
	Energy:       "Energy",
	Noise:        "Noise",
	Conductivity: "Conductivity",
	Humidity:     "Humidity",
}

// sensorTypePlurals holds group labels. Types missing here are labelled
// with their singular name.
var sensorTypePlurals = map[SensorType]string{
	Voltage:     "Voltages",
	Current:     "Currents",
	Clock:       "Clocks",
	Load:        "Loads",
	Temperature: "Temperatures",
	Fan:         "Fans",
	Level:       "Levels",
	Power:       "Powers",
	Frequency:   "Frequencies",
	Flow:        "Flows",
	Control:     "Controls",
	Factor:      "Factors",
	Data:        "Data",
	SmallData:   "SmallData",
	Throughput:  "Throughputs",
	TimeSpan:    "TimeSpans",
	Energy:      "Energies",
	Noise:       "Noises",
}

func (t SensorType) String() string {
	if s, ok := sensorTypeStrings[t]; ok {
		return s
	}
	return "SensorType(" + strconv.Itoa(int(t)) + ")"
}

func (t SensorType) Plural() string {
	if s, ok := sensorTypePlurals[t]; ok {
		return s
	}
	return t.String()
}

type HardwareType int

const (
	Motherboard HardwareType = iota
	SuperIO
	CPU
	Memory
	GpuNvidia
	GpuAmd
	GpuIntel
	Storage
	Network
	Cooler
	EmbeddedController
	Psu
	Battery
)

var hardwareTypeStrings = map[HardwareType]string{
	Motherboard:        "Motherboard",
	SuperIO:            "SuperIO",
	CPU:                "CPU",
	Memory:             "Memory",
	GpuNvidia:          "GPU NVIDIA",
	GpuAmd:             "GPU AMD",
	GpuIntel:           "GPU Intel",
	Storage:            "Storage",
	Network:            "Network",
	Cooler:             "Cooler",
	EmbeddedController: "Embedded Controller",
	Psu:                "PSU",
	Battery:            "Battery",
}

func (t HardwareType) String() string {
	if s, ok := hardwareTypeStrings[t]; ok {
		return s
	}
	return "HardwareType(" + strconv.Itoa(int(t)) + ")"
}
