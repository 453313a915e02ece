// Control action dispatch against the city control endpoint, with
// correlated transient feedback.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Action kinds accepted by the control endpoint.
type Action string

const (
	OptimizeTraffic Action = "OPTIMIZE_TRAFFIC"
	ResolveIncident Action = "RESOLVE_INCIDENT"
	EmergencyRoute  Action = "EMERGENCY_ROUTE"
)

// FeedbackTTL is how long a dispatch result stays visible.
const FeedbackTTL = 3 * time.Second

// Request is the control request body.
type Request struct {
	District string `json:"district"`
	Action   Action `json:"action"`
}

// Response is the expected control response body.
type Response struct {
	Message string `json:"message"`
}

// FeedbackSink receives transient dispatch feedback. The id correlates a
// message with its later expiry so a stale timer cannot clear feedback
// owned by a newer dispatch.
type FeedbackSink interface {
	SetFeedback(id, message string)
	ClearFeedback(id string)
}

// Dispatcher sends operator control actions and publishes the outcome.
type Dispatcher struct {
	endpoint      string
	client        *http.Client
	sink          FeedbackSink
	log           *slog.Logger
	surfaceErrors bool

	// after schedules the feedback expiry; replaced in tests.
	after func(time.Duration, func()) *time.Timer
}

// NewDispatcher builds a dispatcher for the control endpoint. When
// surfaceErrors is set, failures are published through the feedback sink
// instead of being visible only in the diagnostic log.
func NewDispatcher(endpoint string, sink FeedbackSink, log *slog.Logger, surfaceErrors bool) *Dispatcher {
	return &Dispatcher{
		endpoint:      endpoint,
		client:        &http.Client{Timeout: 10 * time.Second},
		sink:          sink,
		log:           log,
		surfaceErrors: surfaceErrors,
		after:         time.AfterFunc,
	}
}

// Dispatch sends one control action for the selected district. An empty
// district is a no-op: no network call is made and no error is returned.
// Failures never propagate to the caller; they are logged and, when
// configured, surfaced as transient feedback.
func (d *Dispatcher) Dispatch(ctx context.Context, district string, action Action) {
	if district == "" {
		return
	}
	msg, err := d.send(ctx, district, action)
	if err != nil {
		d.log.Error("control action failed", "district", district, "action", action, "err", err)
		if d.surfaceErrors {
			d.publish(fmt.Sprintf("%s failed for %s", action, district))
		}
		return
	}
	d.publish(msg)
}

func (d *Dispatcher) send(ctx context.Context, district string, action Action) (string, error) {
	body, err := json.Marshal(Request{District: district, Action: action})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("control endpoint returned %s", resp.Status)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode control response: %w", err)
	}
	return out.Message, nil
}

// publish installs the feedback message and schedules its expiry. Each
// dispatch owns its message via a fresh id; a newer dispatch replaces the
// message and the old expiry becomes a no-op.
func (d *Dispatcher) publish(message string) {
	id := uuid.NewString()
	d.sink.SetFeedback(id, message)
	d.after(FeedbackTTL, func() {
		d.sink.ClearFeedback(id)
	})
}
