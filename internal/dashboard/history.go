package dashboard

import "urbanpulse/internal/telemetry"

// HistoryCapacity bounds the number of retained points per district.
const HistoryCapacity = 20

// Point is one district's metrics plus the snapshot timestamp it came from.
type Point struct {
	telemetry.District
	Time float64
}

// History maps district name to its ordered recent points, oldest first.
// Values are treated as immutable: Append returns a new mapping and leaves
// the receiver untouched, so readers holding an old History stay valid.
type History map[string][]Point

// Append adds one point per district in the snapshot, creating sequences
// lazily and evicting the oldest point once a sequence would exceed
// HistoryCapacity. Districts absent from the snapshot keep their sequences
// unchanged.
func (h History) Append(snap *telemetry.Snapshot) History {
	next := make(History, len(h)+len(snap.Districts))
	for name, points := range h {
		next[name] = points
	}
	for _, d := range snap.Districts {
		prev := next[d.Name]
		points := make([]Point, 0, len(prev)+1)
		points = append(points, prev...)
		points = append(points, Point{District: d, Time: snap.Timestamp})
		if len(points) > HistoryCapacity {
			points = points[len(points)-HistoryCapacity:]
		}
		next[d.Name] = points
	}
	return next
}
