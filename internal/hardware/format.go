package hardware

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const noValue = "-"

type ValueFormatter struct {
	p *message.Printer
}

func NewValueFormatter(locale string) *ValueFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &ValueFormatter{p: message.NewPrinter(tag)}
}

// Sensor returns the formatted min, current and max readings.
func (f *ValueFormatter) Sensor(s *Sensor) (minStr, valueStr, maxStr string) {
	if !s.Valid {
		return noValue, noValue, noValue
	}
	return f.Format(s.Min, s.Type), f.Format(s.Value, s.Type), f.Format(s.Max, s.Type)
}

func (f *ValueFormatter) Format(v float64, t SensorType) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return noValue
	}

	switch t {
	case Voltage:
		return f.p.Sprintf("%.3f V", v)
	case Current:
		return f.p.Sprintf("%.3f A", v)
	case Power:
		return f.p.Sprintf("%.1f W", v)
	case Clock:
		return f.p.Sprintf("%.1f MHz", v)
	case Temperature:
		return f.p.Sprintf("%.1f °C", v)
	case Load, Control, Level, Humidity:
		return f.p.Sprintf("%.1f %%", v)
	case Frequency:
		return f.p.Sprintf("%.1f Hz", v)
	case Fan:
		return f.p.Sprintf("%.0f RPM", v)
	case Flow:
		return f.p.Sprintf("%.1f L/h", v)
	case Factor:
		return f.p.Sprintf("%.3f", v)
	case Data:
		return f.p.Sprintf("%.1f GB", v)
	case SmallData:
		return f.p.Sprintf("%.1f MB", v)
	case Throughput:
		return f.throughput(v)
	case TimeSpan:
		return timeSpan(v)
	case Energy:
		return f.p.Sprintf("%.0f mWh", v)
	case Noise:
		return f.p.Sprintf("%.0f dBA", v)
	case Conductivity:
		return f.p.Sprintf("%.1f µS/cm", v)
	default:
		return f.p.Sprintf("%.1f", v)
	}
}

func (f *ValueFormatter) throughput(bytesPerSec float64) string {
	switch {
	case bytesPerSec < 1024:
		return f.p.Sprintf("%.1f B/s", bytesPerSec)
	case bytesPerSec < 1024*1024:
		return f.p.Sprintf("%.1f KB/s", bytesPerSec/1024)
	default:
		return f.p.Sprintf("%.1f MB/s", bytesPerSec/(1024*1024))
	}
}

func timeSpan(seconds float64) string {
	total := int64(math.Max(seconds, 0))
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}
