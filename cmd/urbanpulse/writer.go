package main

import (
	"os"

	"urbanpulse/internal/config"
	"urbanpulse/internal/sim"
)

// newWriters assembles the snapshot sinks for the serve command: the
// websocket broadcaster always, stdout or GreptimeDB depending on flags and
// env, and an optional JSONL export. It returns the combined writer and a
// cleanup function to close any resources.
func newWriters(cfg *config.Config, broadcast sim.SnapshotWriter, printOnly bool, logFile string) (sim.SnapshotWriter, func(), error) {
	cleanup := func() {}
	writers := []sim.SnapshotWriter{broadcast}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if printOnly || endpoint == "" {
		writers = append(writers, sim.NewStdoutWriter())
	} else {
		gw, err := sim.NewGreptimeDBWriter(endpoint, greptimeDatabase(), cfg.CityID)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, gw)
	}

	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		cleanup = func() { fw.Close() }
	}

	if len(writers) == 1 {
		return writers[0], cleanup, nil
	}
	return sim.NewMultiWriter(writers...), cleanup, nil
}

func greptimeDatabase() string {
	if db := os.Getenv("GREPTIMEDB_DATABASE"); db != "" {
		return db
	}
	return "public"
}
