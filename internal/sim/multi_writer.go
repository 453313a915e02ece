package sim

import "urbanpulse/internal/telemetry"

// MultiWriter fans snapshots out to multiple writers.
type MultiWriter struct {
	writers []SnapshotWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(writers ...SnapshotWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSnapshot sends a snapshot to all writers, stopping at the first error.
func (mw *MultiWriter) WriteSnapshot(snap *telemetry.Snapshot) error {
	for _, w := range mw.writers {
		if err := w.WriteSnapshot(snap); err != nil {
			return err
		}
	}
	return nil
}
