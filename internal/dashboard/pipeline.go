package dashboard

import (
	"log/slog"

	"urbanpulse/internal/telemetry"
)

// Pipeline consumes stream events, decodes frames, and applies them to the
// store. A malformed frame is logged and dropped; published state is never
// touched by a frame that fails to decode.
type Pipeline struct {
	store  *Store
	log    *slog.Logger
	notify func()
}

// NewPipeline wires stream events to the store. notify, when non-nil, is
// invoked after every state change so a presentation layer can redraw.
func NewPipeline(store *Store, log *slog.Logger, notify func()) *Pipeline {
	if notify == nil {
		notify = func() {}
	}
	return &Pipeline{store: store, log: log, notify: notify}
}

// HandleOpen marks the stream connected.
func (p *Pipeline) HandleOpen() {
	p.store.SetConnected(true)
	p.log.Info("telemetry stream connected")
	p.notify()
}

// HandleFrame decodes one raw frame and applies the snapshot.
func (p *Pipeline) HandleFrame(data []byte) {
	snap, err := telemetry.DecodeSnapshot(data)
	if err != nil {
		p.log.Warn("dropping malformed frame", "err", err)
		return
	}
	p.store.ApplySnapshot(snap)
	p.notify()
}

// HandleClose marks the stream disconnected.
func (p *Pipeline) HandleClose(err error) {
	p.store.SetConnected(false)
	if err != nil {
		p.log.Info("telemetry stream closed", "err", err)
	} else {
		p.log.Info("telemetry stream closed")
	}
	p.notify()
}
