// Hour-of-day traffic model used for both current conditions and the
// one-hour-ahead forecast.
package forecast

import "math"

const (
	dayBase   = 20.0
	nightBase = 5.0

	morningPeakHour = 8.0
	morningPeakAmp  = 60.0
	eveningPeakHour = 17.0
	eveningPeakAmp  = 70.0
	peakSpread      = 2.0
)

// Traffic returns the expected traffic density (0..100 percent) for the
// given simulated hour. The curve combines a day/night base level with
// gaussian commute peaks around 08:00 and 17:00. Hours outside [0,24) wrap.
func Traffic(hour float64) float64 {
	h := math.Mod(hour, 24)
	if h < 0 {
		h += 24
	}

	base := nightBase
	if h >= 6 && h <= 22 {
		base = dayBase
	}
	morning := morningPeakAmp * math.Exp(-0.5*math.Pow((h-morningPeakHour)/peakSpread, 2))
	evening := eveningPeakAmp * math.Exp(-0.5*math.Pow((h-eveningPeakHour)/peakSpread, 2))

	level := base + morning + evening
	return math.Max(0, math.Min(100, level))
}
