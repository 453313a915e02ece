// Stream client owning the single websocket connection to the telemetry
// source. Payloads are forwarded verbatim; interpretation happens upstream.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Events receives connection lifecycle callbacks. HandleFrame gets the raw
// frame bytes without any parsing here.
type Events interface {
	HandleOpen()
	HandleFrame(data []byte)
	HandleClose(err error)
}

// Backoff configures the optional reconnect policy. When disabled, loss of
// the connection ends Run and the session stays down.
type Backoff struct {
	Enabled bool
	Min     time.Duration
	Max     time.Duration
}

// Client dials the telemetry endpoint and pumps frames to Events.
type Client struct {
	url     string
	events  Events
	log     *slog.Logger
	backoff Backoff
	dialer  *websocket.Dialer
}

// NewClient builds a stream client for the given websocket URL.
func NewClient(url string, events Events, log *slog.Logger, backoff Backoff) *Client {
	if backoff.Min <= 0 {
		backoff.Min = time.Second
	}
	if backoff.Max < backoff.Min {
		backoff.Max = 30 * time.Second
	}
	return &Client{
		url:     url,
		events:  events,
		log:     log,
		backoff: backoff,
		dialer:  websocket.DefaultDialer,
	}
}

// Run connects and reads frames until the context is cancelled or the
// connection is lost with reconnect disabled. The connection is closed on
// every exit path, including cancellation before the dial completes.
func (c *Client) Run(ctx context.Context) error {
	delay := c.backoff.Min
	for {
		opened, err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !c.backoff.Enabled {
			return err
		}
		if opened {
			delay = c.backoff.Min
		}
		c.log.Warn("telemetry connection lost, retrying", "delay", delay, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.backoff.Max {
			delay = c.backoff.Max
		}
	}
}

// runOnce performs one connect/read cycle. opened reports whether the
// connection was established, so the caller can reset its backoff.
func (c *Client) runOnce(ctx context.Context) (opened bool, err error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	c.events.HandleOpen()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.events.HandleClose(err)
			return true, err
		}
		c.events.HandleFrame(data)
	}
}
