package dashboard

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"urbanpulse/internal/telemetry"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreInitialState(t *testing.T) {
	s := NewStore()
	if s.Status() != StatusDisconnected {
		t.Errorf("initial status must be Disconnected, got %v", s.Status())
	}
	if s.Latest() != nil {
		t.Errorf("expected no snapshot before first frame")
	}
	if s.Feedback() != "" {
		t.Errorf("expected empty feedback")
	}
}

func TestStoreApplySnapshot(t *testing.T) {
	s := NewStore()
	snap := &telemetry.Snapshot{
		Timestamp: 10,
		Weather:   telemetry.WeatherStorm,
		Districts: []telemetry.District{
			{Name: "Downtown", AirQualityIndex: 200},
		},
	}
	s.ApplySnapshot(snap)
	if s.Latest() != snap {
		t.Errorf("latest snapshot not replaced")
	}
	if s.Weather() != telemetry.WeatherStorm {
		t.Errorf("weather not updated: %q", s.Weather())
	}
	if got := s.Alerts(); len(got) != 1 || got[0].Message != "Severe AQI in Downtown (200)" {
		t.Errorf("alerts not recomputed: %+v", got)
	}
	if len(s.History()["Downtown"]) != 1 {
		t.Errorf("history not appended")
	}
}

func TestStoreWeatherKeptWhenAbsent(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(&telemetry.Snapshot{Weather: telemetry.WeatherRain, Districts: []telemetry.District{}})
	s.ApplySnapshot(&telemetry.Snapshot{Districts: []telemetry.District{}})
	if s.Weather() != telemetry.WeatherRain {
		t.Errorf("weather should persist when frame omits it, got %q", s.Weather())
	}
}

func TestStoreAlertsReplacedEachFrame(t *testing.T) {
	s := NewStore()
	s.ApplySnapshot(&telemetry.Snapshot{Districts: []telemetry.District{
		{Name: "A", ActiveIncidents: 5},
	}})
	s.ApplySnapshot(&telemetry.Snapshot{Districts: []telemetry.District{
		{Name: "A", ActiveIncidents: 0},
	}})
	if got := s.Alerts(); len(got) != 0 {
		t.Errorf("alert list must be replaced, not merged: %+v", got)
	}
}

func TestStoreConnectionTransitions(t *testing.T) {
	s := NewStore()
	s.SetConnected(true)
	if s.Status() != StatusConnected {
		t.Fatalf("expected Connected")
	}
	s.SetConnected(false)
	if s.Status() != StatusDisconnected {
		t.Fatalf("expected Disconnected")
	}
}

func TestStoreFeedbackOwnership(t *testing.T) {
	s := NewStore()
	s.SetFeedback("a", "first")
	s.SetFeedback("b", "second")
	// Expiry of the stale dispatch must not clear the newer feedback.
	s.ClearFeedback("a")
	if s.Feedback() != "second" {
		t.Errorf("stale clear removed newer feedback: %q", s.Feedback())
	}
	s.ClearFeedback("b")
	if s.Feedback() != "" {
		t.Errorf("owning clear did not remove feedback: %q", s.Feedback())
	}
}

func TestPipelineDropsMalformedFrame(t *testing.T) {
	s := NewStore()
	p := NewPipeline(s, discard(), nil)
	good := []byte(`{"timestamp": 1, "districts": [{"name": "A", "active_incidents": 4}]}`)
	p.HandleFrame(good)

	before := s.Latest()
	alertsBefore := s.Alerts()
	historyBefore := s.History()

	p.HandleFrame([]byte(`{"timestamp": 2}`)) // missing districts
	p.HandleFrame([]byte(`{"timestamp`))      // not JSON

	if s.Latest() != before {
		t.Errorf("latest snapshot changed on malformed frame")
	}
	if !reflect.DeepEqual(s.Alerts(), alertsBefore) {
		t.Errorf("alerts changed on malformed frame")
	}
	if !reflect.DeepEqual(s.History(), historyBefore) {
		t.Errorf("history changed on malformed frame")
	}
}

func TestPipelineStatusEvents(t *testing.T) {
	s := NewStore()
	notified := 0
	p := NewPipeline(s, discard(), func() { notified++ })
	p.HandleOpen()
	if s.Status() != StatusConnected {
		t.Fatalf("open event ignored")
	}
	p.HandleClose(nil)
	if s.Status() != StatusDisconnected {
		t.Fatalf("close event ignored")
	}
	if notified != 2 {
		t.Errorf("expected 2 notifications, got %d", notified)
	}
}
