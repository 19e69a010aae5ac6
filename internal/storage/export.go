package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/racesim/internal/telemetry"
)

// ExportData is the JSON shape of an exported run.
type ExportData struct {
	ID          string               `json:"id"`
	Track       string               `json:"track"`
	Dt          float64              `json:"dt"`
	Samples     int                  `json:"samples"`
	LapTimeS    float64              `json:"lap_time_s"`
	DistanceM   float64              `json:"distance_m"`
	EnergyUsedJ float64              `json:"energy_used_j"`
	Outcome     string               `json:"outcome"`
	Series      map[string][]float64 `json:"series"`
}

// ExportJSON writes a saved run's metadata and sample columns to w.
func ExportJSON(w io.Writer, meta *RunMetadata, columns map[telemetry.Series][]float64) error {
	data := ExportData{
		ID:          meta.ID,
		Track:       meta.Track,
		Dt:          meta.Dt,
		Samples:     meta.Samples,
		LapTimeS:    meta.LapTimeS,
		DistanceM:   meta.DistanceM,
		EnergyUsedJ: meta.EnergyUsedJ,
		Outcome:     meta.Outcome,
		Series:      make(map[string][]float64, len(columns)),
	}
	for name, col := range columns {
		data.Series[string(name)] = col
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
