package telemetry

import (
	"os"
	"time"
)

// DistrictRow represents one per-district metric record for GreptimeDB.
type DistrictRow struct {
	CityID                string    `json:"city_id"`  // TAG
	District              string    `json:"district"` // TAG
	TrafficDensity        float64   `json:"traffic_density"`
	ForecastedTraffic     float64   `json:"forecasted_traffic"`
	EnergyDemand          float64   `json:"energy_demand"`
	AirQualityIndex       float64   `json:"air_quality_index"`
	NoiseLevel            float64   `json:"noise_level"`
	EmergencyResponseTime float64   `json:"emergency_response_time"`
	ActiveIncidents       int       `json:"active_incidents"`
	Weather               string    `json:"weather"`
	Timestamp             time.Time `json:"ts"` // TIME INDEX
}

// DistrictTableName holds the table name used when writing to GreptimeDB.
// It defaults to "city_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var DistrictTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "city_telemetry"
}()

func (DistrictRow) TableName() string {
	return DistrictTableName
}

// Rows flattens a snapshot into per-district records for time-series export.
func (s *Snapshot) Rows(cityID string) []DistrictRow {
	ts := time.Unix(0, int64(s.Timestamp*float64(time.Second))).UTC()
	rows := make([]DistrictRow, 0, len(s.Districts))
	for _, d := range s.Districts {
		rows = append(rows, DistrictRow{
			CityID:                cityID,
			District:              d.Name,
			TrafficDensity:        d.TrafficDensity,
			ForecastedTraffic:     d.ForecastedTraffic,
			EnergyDemand:          d.EnergyDemand,
			AirQualityIndex:       d.AirQualityIndex,
			NoiseLevel:            d.NoiseLevel,
			EmergencyResponseTime: d.EmergencyResponseTime,
			ActiveIncidents:       d.ActiveIncidents,
			Weather:               s.Weather,
			Timestamp:             ts,
		})
	}
	return rows
}
