package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"urbanpulse/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorGray    = "\x1b[90m"
	colorBlue    = "\x1b[34m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorRed     = "\x1b[31m"
)

// StdoutWriter prints snapshots to stdout: one colorized line per district
// on a terminal, JSON lines otherwise.
type StdoutWriter struct {
	out      io.Writer
	colorize bool
}

// NewStdoutWriter creates a stdout writer, enabling color when stdout is a
// terminal.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{
		out:      os.Stdout,
		colorize: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// WriteSnapshot implements SnapshotWriter.
func (w *StdoutWriter) WriteSnapshot(snap *telemetry.Snapshot) error {
	if !w.colorize {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		fmt.Fprintln(w.out, string(data))
		return nil
	}

	fmt.Fprintf(w.out, "%s[%05.2fh]%s %sweather=%s%s %shealth=%.1f%s\n",
		colorGray, snap.SimulatedHour, colorReset,
		colorCyan, snap.Weather, colorReset,
		colorGreen, snap.CityHealthScore, colorReset)
	for _, d := range snap.Districts {
		trafficColor := colorGreen
		switch {
		case d.TrafficDensity >= 70:
			trafficColor = colorRed
		case d.TrafficDensity >= 40:
			trafficColor = colorYellow
		}
		fmt.Fprintf(w.out, "  %s%-20s%s %straffic=%.1f%%%s %sforecast=%.1f%%%s %saqi=%.0f%s %sresp=%.1fmin%s %sincidents=%d%s %senergy=%.0fkWh%s\n",
			colorBlue, d.Name, colorReset,
			trafficColor, d.TrafficDensity, colorReset,
			colorMagenta, d.ForecastedTraffic, colorReset,
			colorYellow, d.AirQualityIndex, colorReset,
			colorCyan, d.EmergencyResponseTime, colorReset,
			colorRed, d.ActiveIncidents, colorReset,
			colorGray, d.EnergyDemand, colorReset)
	}
	return nil
}
