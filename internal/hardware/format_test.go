package hardware

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	f := NewValueFormatter("en")

	tests := []struct {
		v    float64
		kind SensorType
		want string
	}{
		{1.2, Voltage, "1.200 V"},
		{0.5, Current, "0.500 A"},
		{65, Power, "65.0 W"},
		{3600, Clock, "3,600.0 MHz"},
		{45, Temperature, "45.0 °C"},
		{12.34, Load, "12.3 %"},
		{50, Control, "50.0 %"},
		{1200, Fan, "1,200 RPM"},
		{0.987, Factor, "0.987"},
		{7.5, Data, "7.5 GB"},
		{512, SmallData, "512.0 MB"},
		{512, Throughput, "512.0 B/s"},
		{2048, Throughput, "2.0 KB/s"},
		{3 * 1024 * 1024, Throughput, "3.0 MB/s"},
		{3725, TimeSpan, "1:02:05"},
		{12, Energy, "12 mWh"},
		{35, Noise, "35 dBA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Format(tt.v, tt.kind), tt.kind.String())
	}

	assert.Equal(t, "-", f.Format(math.NaN(), Temperature))
}

func TestFormatLocale(t *testing.T) {
	f := NewValueFormatter("de")
	assert.Equal(t, "45,0 °C", f.Format(45, Temperature))

	fallback := NewValueFormatter("not a locale!")
	assert.Equal(t, "45.0 °C", fallback.Format(45, Temperature))
}

func TestFormatSensor(t *testing.T) {
	f := NewValueFormatter("en")

	s := NewSensor("Core 1", "/cpu/0/temperature/0", Temperature)
	minStr, valStr, maxStr := f.Sensor(s)
	assert.Equal(t, []string{"-", "-", "-"}, []string{minStr, valStr, maxStr})

	s.Set(50)
	s.Set(45)
	minStr, valStr, maxStr = f.Sensor(s)
	assert.Equal(t, []string{"45.0 °C", "45.0 °C", "50.0 °C"}, []string{minStr, valStr, maxStr})
}
