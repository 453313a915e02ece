package sim

import (
	"encoding/json"
	"os"

	"urbanpulse/internal/telemetry"
)

// FileWriter logs snapshots to a JSONL file.
type FileWriter struct {
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates a FileWriter for the given path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// WriteSnapshot logs a single snapshot.
func (f *FileWriter) WriteSnapshot(snap *telemetry.Snapshot) error {
	return f.enc.Encode(snap)
}

// Close flushes and closes the underlying file.
func (f *FileWriter) Close() error {
	return f.file.Close()
}
