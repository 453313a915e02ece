// Telemetry wire types shared by the dashboard pipeline and the simulator.
package telemetry

// Weather conditions carried in a snapshot.
const (
	WeatherClear  = "Clear"
	WeatherCloudy = "Cloudy"
	WeatherRain   = "Rain"
	WeatherStorm  = "Storm"
)

// District holds one urban zone's metrics at one simulated instant.
// Values are immutable once decoded; a new frame carries new District values.
type District struct {
	Name                  string  `json:"name"`
	TrafficDensity        float64 `json:"traffic_density"`
	ForecastedTraffic     float64 `json:"forecasted_traffic"`
	EnergyDemand          float64 `json:"energy_demand"`
	AirQualityIndex       float64 `json:"air_quality_index"`
	NoiseLevel            float64 `json:"noise_level"`
	EmergencyResponseTime float64 `json:"emergency_response_time"`
	ActiveIncidents       int     `json:"active_incidents"`
}

// Snapshot is the decoded form of one telemetry frame.
type Snapshot struct {
	Timestamp       float64    `json:"timestamp"`
	SimulatedHour   float64    `json:"simulated_hour"`
	Weather         string     `json:"weather"`
	CityHealthScore float64    `json:"city_health_score"`
	Districts       []District `json:"districts"`
}

// IsNight reports whether the snapshot's simulated hour falls outside
// daylight (06:00..18:00).
func (s *Snapshot) IsNight() bool {
	return s.SimulatedHour < 6 || s.SimulatedHour > 18
}

// District returns the district with the given name, if present.
func (s *Snapshot) District(name string) (District, bool) {
	for _, d := range s.Districts {
		if d.Name == name {
			return d, true
		}
	}
	return District{}, false
}
