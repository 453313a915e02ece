// Threshold alert rules evaluated against the latest city snapshot.
package alerts

import (
	"fmt"

	"urbanpulse/internal/telemetry"
)

// Alert severity kinds.
const (
	KindCritical = "critical"
	KindWarning  = "warning"
)

// Alert is one derived operator-facing condition. Alerts are recomputed in
// full on every frame; they carry no identity across frames.
type Alert struct {
	Kind    string
	Message string
}

// Rule thresholds.
const (
	aqiCritical      = 150.0
	responseWarning  = 15.0
	incidentCritical = 2
)

// Evaluate applies the fixed rule set to every district in snapshot order.
// Output order is district order, then rule order: AQI, response time,
// incidents. The function is pure: identical snapshots yield identical
// alert lists.
func Evaluate(snap *telemetry.Snapshot) []Alert {
	var out []Alert
	for _, d := range snap.Districts {
		if d.AirQualityIndex > aqiCritical {
			out = append(out, Alert{
				Kind:    KindCritical,
				Message: fmt.Sprintf("Severe AQI in %s (%.0f)", d.Name, d.AirQualityIndex),
			})
		}
		if d.EmergencyResponseTime > responseWarning {
			out = append(out, Alert{
				Kind:    KindWarning,
				Message: fmt.Sprintf("Slow Response in %s (%.1f min)", d.Name, d.EmergencyResponseTime),
			})
		}
		if d.ActiveIncidents > incidentCritical {
			out = append(out, Alert{
				Kind:    KindCritical,
				Message: fmt.Sprintf("Multiple Incidents in %s", d.Name),
			})
		}
	}
	return out
}
