// Dashboard state store: the single mutation point for all operator-facing
// state derived from the telemetry stream.
package dashboard

import (
	"sync"

	"urbanpulse/internal/alerts"
	"urbanpulse/internal/telemetry"
)

// Connection status values.
type Status string

const (
	StatusDisconnected Status = "Disconnected"
	StatusConnected    Status = "Connected"
)

// Store owns the latest snapshot, per-district history, current alerts,
// connection status, district selection, and transient action feedback.
// Every mutation runs under one mutex so each event is applied in full
// before the next is observed.
type Store struct {
	mu         sync.Mutex
	latest     *telemetry.Snapshot
	history    History
	alerts     []alerts.Alert
	status     Status
	weather    string
	selected   string
	feedback   string
	feedbackID string
}

// NewStore returns a store in the initial Disconnected state.
func NewStore() *Store {
	return &Store{
		history: make(History),
		status:  StatusDisconnected,
		weather: telemetry.WeatherClear,
	}
}

// ApplySnapshot installs a decoded frame: latest snapshot, weather when
// present, recomputed alerts, and the grown history mapping.
func (s *Store) ApplySnapshot(snap *telemetry.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snap
	if snap.Weather != "" {
		s.weather = snap.Weather
	}
	s.alerts = alerts.Evaluate(snap)
	s.history = s.history.Append(snap)
}

// SetConnected flips the connection status on stream open/close events.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if connected {
		s.status = StatusConnected
	} else {
		s.status = StatusDisconnected
	}
}

// Select records the operator's district selection. Purely local state.
func (s *Store) Select(district string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = district
}

// SetFeedback publishes transient action feedback. The id identifies the
// dispatch that owns the message so a later expiry cannot clear feedback
// published by a newer dispatch.
func (s *Store) SetFeedback(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbackID = id
	s.feedback = message
}

// ClearFeedback removes the feedback message if id still owns it.
func (s *Store) ClearFeedback(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.feedbackID != id {
		return
	}
	s.feedbackID = ""
	s.feedback = ""
}

// Latest returns the most recent snapshot, or nil before the first frame.
func (s *Store) Latest() *telemetry.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// History returns the current history mapping. The mapping is never mutated
// after publication, so callers may read it without copying.
func (s *Store) History() History {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// Alerts returns the current alert list.
func (s *Store) Alerts() []alerts.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]alerts.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Status returns the connection status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Weather returns the last weather condition seen on the stream.
func (s *Store) Weather() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weather
}

// Selected returns the operator's current district selection.
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Feedback returns the transient action feedback message, empty when none.
func (s *Store) Feedback() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedback
}
