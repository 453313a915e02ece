// City telemetry generator: per-district metrics correlated with time of
// day, weather, and active operator interventions.
package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"urbanpulse/internal/config"
	"urbanpulse/internal/control"
	"urbanpulse/internal/forecast"
	"urbanpulse/internal/telemetry"
)

const (
	hoursPerTick      = 0.25
	interventionHours = 6.0
	startHour         = 6.0
)

var weathers = []string{
	telemetry.WeatherClear,
	telemetry.WeatherRain,
	telemetry.WeatherCloudy,
	telemetry.WeatherStorm,
}

// intervention is one applied control action with its simulated expiry.
type intervention struct {
	action    control.Action
	expiresAt float64
}

// Generator produces one snapshot per tick and tracks simulation state
// (simulated clock, weather, interventions) across ticks.
type Generator struct {
	mu            sync.Mutex
	cityID        string
	districts     []config.District
	weatherChance float64
	hour          float64
	weather       string
	interventions map[string]intervention
	rand          *rand.Rand
	now           func() time.Time
}

// NewGenerator builds a generator starting at 06:00 under clear skies.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{
		cityID:        cfg.CityID,
		districts:     cfg.Districts,
		weatherChance: cfg.WeatherChangeChance,
		hour:          startHour,
		weather:       telemetry.WeatherClear,
		interventions: make(map[string]intervention),
		rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
	}
}

// Tick advances the simulated clock by 15 minutes and produces the next
// snapshot.
func (g *Generator) Tick() *telemetry.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.hour += hoursPerTick
	if g.hour >= 24 {
		g.hour = 0
	}
	if g.rand.Float64() < g.weatherChance {
		g.weather = weathers[g.rand.Intn(len(weathers))]
	}

	var trafficAdd, responseAdd float64
	incidentMult := 1.0
	switch g.weather {
	case telemetry.WeatherRain:
		trafficAdd, responseAdd, incidentMult = 10, 2, 1.5
	case telemetry.WeatherStorm:
		trafficAdd, responseAdd, incidentMult = 20, 5, 3.0
	}

	districts := make([]telemetry.District, 0, len(g.districts))
	totalHealth := 0.0
	for _, dc := range g.districts {
		d := g.generateDistrict(dc, trafficAdd, responseAdd, incidentMult)
		districts = append(districts, d)
		totalHealth += districtHealth(d)
	}

	score := totalHealth / float64(len(g.districts))
	return &telemetry.Snapshot{
		Timestamp:       float64(g.now().UnixNano()) / float64(time.Second),
		SimulatedHour:   g.hour,
		Weather:         g.weather,
		CityHealthScore: roundTenth(score),
		Districts:       districts,
	}
}

func (g *Generator) generateDistrict(dc config.District, trafficAdd, responseAdd, incidentMult float64) telemetry.District {
	offset := dc.PeakOffsetHours
	active := g.interventionEffect(dc.Name)

	trafficModifier := 0.0
	switch active {
	case control.OptimizeTraffic:
		trafficModifier = -20
	case control.EmergencyRoute:
		trafficModifier = -50
	}

	traffic := forecast.Traffic(g.hour+offset) + g.uniform(-5, 5) + trafficModifier + trafficAdd
	traffic = clamp(traffic, 0, 100)

	aqi := 30 + traffic*1.2 + g.uniform(-10, 20)
	if aqi < 20 {
		aqi = 20
	}
	noise := 40 + traffic*0.5 + g.uniform(-5, 5)

	response := 5 + traffic*0.15 + g.uniform(0, 5) + responseAdd
	if active == control.EmergencyRoute {
		response *= 0.5
	}

	incidents := 0
	if active != control.ResolveIncident {
		if g.rand.Float64() < (traffic/200.0)*incidentMult {
			incidents = 1
		}
		if traffic > 80 {
			incidents += g.rand.Intn(3)
		}
	}

	return telemetry.District{
		Name:                  dc.Name,
		TrafficDensity:        traffic,
		ForecastedTraffic:     forecast.Traffic(g.hour + 1 + offset),
		EnergyDemand:          traffic*2 + g.uniform(20, 50),
		AirQualityIndex:       aqi,
		NoiseLevel:            noise,
		EmergencyResponseTime: response,
		ActiveIncidents:       incidents,
	}
}

// Apply registers an operator intervention that shapes the district's
// metrics for the next six simulated hours.
func (g *Generator) Apply(district string, action control.Action) (string, error) {
	switch action {
	case control.OptimizeTraffic, control.ResolveIncident, control.EmergencyRoute:
	default:
		return "", fmt.Errorf("unknown action %q", action)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.hasDistrict(district) {
		return "", fmt.Errorf("unknown district %q", district)
	}
	g.interventions[district] = intervention{
		action:    action,
		expiresAt: wrapHour(g.hour + interventionHours),
	}
	return fmt.Sprintf("%s applied to %s", action, district), nil
}

func (g *Generator) hasDistrict(name string) bool {
	for _, d := range g.districts {
		if d.Name == name {
			return true
		}
	}
	return false
}

// interventionEffect returns the active action for a district, expiring
// entries whose window has passed. The wraparound check is deliberately
// loose, matching the six-hour window against a 24h clock.
func (g *Generator) interventionEffect(district string) control.Action {
	iv, ok := g.interventions[district]
	if !ok {
		return ""
	}
	if g.hour > iv.expiresAt && g.hour-iv.expiresAt < 20 {
		delete(g.interventions, district)
		return ""
	}
	return iv.action
}

// districtHealth converts one district's metrics into a 0..100 score,
// weighting traffic 40%, air quality 30%, and response time 30%.
func districtHealth(d telemetry.District) float64 {
	normTraffic := d.TrafficDensity / 100.0
	normAQI := clamp(d.AirQualityIndex/200.0, 0, 1)
	normResponse := clamp(d.EmergencyResponseTime/30.0, 0, 1)
	penalty := normTraffic*0.4 + normAQI*0.3 + normResponse*0.3
	return (1.0 - penalty) * 100
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rand.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wrapHour(h float64) float64 {
	for h >= 24 {
		h -= 24
	}
	return h
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
