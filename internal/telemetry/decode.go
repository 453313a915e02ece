package telemetry

import (
	"encoding/json"
	"fmt"
)

// DecodeSnapshot parses one raw telemetry frame. A frame must be valid JSON
// and carry a districts array; anything else is rejected so the caller can
// drop the frame without touching published state.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}
	if snap.Districts == nil {
		return nil, fmt.Errorf("frame missing districts")
	}
	for i, d := range snap.Districts {
		if d.Name == "" {
			return nil, fmt.Errorf("district %d missing name", i)
		}
	}
	return &snap, nil
}
