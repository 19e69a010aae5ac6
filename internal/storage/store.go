// Package storage persists completed runs: one directory per run holding a
// metadata summary and the full committed sample table as CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/racesim/internal/telemetry"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarizes one saved run.
type RunMetadata struct {
	ID          string    `json:"id"`
	Track       string    `json:"track"`
	Timestamp   time.Time `json:"timestamp"`
	Dt          float64   `json:"dt"`
	Samples     int       `json:"samples"`
	LapTimeS    float64   `json:"lap_time_s"`
	DistanceM   float64   `json:"distance_m"`
	EnergyUsedJ float64   `json:"energy_used_j"`
	Outcome     string    `json:"outcome"` // finished, battery_flat, stopped
}

// Save writes the committed prefix of ts plus a metadata summary and returns
// the run ID. Only committed records are persisted: the read range is
// bounded by a single CurrentIndex snapshot.
func (s *Store) Save(trackName string, dt float64, energyUsedJ float64, outcome string, ts *telemetry.Store) (string, error) {
	runID := fmt.Sprintf("%s_%d", trackName, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	last := ts.CurrentIndex()

	meta := RunMetadata{
		ID:          runID,
		Track:       trackName,
		Timestamp:   time.Now(),
		Dt:          dt,
		Samples:     last + 1,
		EnergyUsedJ: energyUsedJ,
		Outcome:     outcome,
	}
	if last >= 0 {
		final, err := ts.ReadRecord(last)
		if err != nil {
			return "", err
		}
		meta.LapTimeS = final.Time
		meta.DistanceM = final.Distance
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	names := telemetry.AllSeries()
	header := make([]string, len(names))
	for i, name := range names {
		header[i] = string(name)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	if last < 0 {
		return runID, nil
	}

	columns := make([][]float64, len(names))
	for i, name := range names {
		col, err := ts.ReadRange(0, last, name)
		if err != nil {
			return "", err
		}
		columns[i] = col
	}

	row := make([]string, len(names))
	for i := 0; i <= last; i++ {
		for j := range names {
			row[j] = strconv.FormatFloat(columns[j][i], 'f', 6, 64)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every saved run.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// Load returns the metadata for one run.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads a saved run's sample table back as one column per series.
func (s *Store) LoadSamples(runID string) (map[telemetry.Series][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return map[telemetry.Series][]float64{}, nil
	}

	header := records[0]
	columns := make(map[telemetry.Series][]float64, len(header))
	for _, name := range header {
		columns[telemetry.Series(name)] = make([]float64, 0, len(records)-1)
	}

	for _, record := range records[1:] {
		for j, field := range record {
			if j >= len(header) {
				break
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			name := telemetry.Series(header[j])
			columns[name] = append(columns[name], v)
		}
	}
	return columns, nil
}
