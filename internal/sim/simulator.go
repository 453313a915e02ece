// Simulator orchestrating city ticks and snapshot writers.
package sim

import (
	"context"
	"time"

	"urbanpulse/internal/logging"
	"urbanpulse/internal/telemetry"
)

// SnapshotWriter is an interface to support different snapshot sinks.
type SnapshotWriter interface {
	WriteSnapshot(*telemetry.Snapshot) error
}

// Simulator drives the generator on a fixed tick and fans snapshots out to
// the configured writer.
type Simulator struct {
	gen          *Generator
	writer       SnapshotWriter
	tickInterval time.Duration
}

// NewSimulator wires a generator to its writer.
func NewSimulator(gen *Generator, writer SnapshotWriter, tickInterval time.Duration) *Simulator {
	return &Simulator{gen: gen, writer: writer, tickInterval: tickInterval}
}

// Generator exposes the underlying generator for the control endpoint.
func (s *Simulator) Generator() *Generator {
	return s.gen
}

// Run starts the tick loop and stops when the context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting city simulator", "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping city simulator")
			return
		}
	}
}

func (s *Simulator) tick(ctx context.Context) {
	snap := s.gen.Tick()
	if err := s.writer.WriteSnapshot(snap); err != nil {
		logging.FromContext(ctx).Error("snapshot write failed", "err", err)
	}
}
