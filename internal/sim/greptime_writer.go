package sim

import (
	"context"
	"log"

	"urbanpulse/internal/telemetry"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeDBWriter exports per-district metric rows to GreptimeDB via the
// ingester client. The table is auto-created on first write.
type GreptimeDBWriter struct {
	client *greptime.Client
	cityID string
	table  string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer.
func NewGreptimeDBWriter(endpoint, database, cityID string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(endpoint).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client: client,
		cityID: cityID,
		table:  telemetry.DistrictTableName,
	}, nil
}

// WriteSnapshot flattens the snapshot into district rows and inserts them.
func (w *GreptimeDBWriter) WriteSnapshot(snap *telemetry.Snapshot) error {
	rows := snap.Rows(w.cityID)
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("city_id", types.STRING)
	tbl.AddTagColumn("district", types.STRING)
	tbl.AddFieldColumn("traffic_density", types.FLOAT)
	tbl.AddFieldColumn("forecasted_traffic", types.FLOAT)
	tbl.AddFieldColumn("energy_demand", types.FLOAT)
	tbl.AddFieldColumn("air_quality_index", types.FLOAT)
	tbl.AddFieldColumn("noise_level", types.FLOAT)
	tbl.AddFieldColumn("emergency_response_time", types.FLOAT)
	tbl.AddFieldColumn("active_incidents", types.INT64)
	tbl.AddFieldColumn("weather", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.CityID, r.District,
			r.TrafficDensity, r.ForecastedTraffic, r.EnergyDemand,
			r.AirQualityIndex, r.NoiseLevel, r.EmergencyResponseTime,
			int64(r.ActiveIncidents), r.Weather, r.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}
	return nil
}
