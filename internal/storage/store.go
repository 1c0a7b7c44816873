// Package storage persists simulation runs on disk.
//
// Each run gets its own directory under the store's base directory holding a
// metadata.json and a states.csv with one row per sample:
//
//	t, x1..xN, v1..vN
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/oscillab/internal/sim"
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

type RunMetadata struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"` // "mode" or "system"
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Masses      int                `json:"masses"`
	Mass        float64            `json:"mass"`
	Stiffness   float64            `json:"stiffness"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	EnergyDrift float64            `json:"energy_drift"`
}

func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Kind, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Metrics = result.Metrics
	meta.EnergyDrift = result.EnergyDrift

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

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	n := 0
	if len(result.Trajectory) > 0 {
		n = len(result.Trajectory[0].X)
	}
	header := []string{"t"}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("v%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	row := make([]string, 0, 2*n+1)
	for _, sample := range result.Trajectory {
		row = row[:0]
		row = append(row, strconv.FormatFloat(sample.T, 'g', -1, 64))
		for _, x := range sample.X {
			row = append(row, strconv.FormatFloat(x, 'g', -1, 64))
		}
		for _, v := range sample.V {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return runID, w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue // skip foreign directories
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

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

// LoadTrajectory reads the states.csv of a run back into a trajectory.
func (s *Store) LoadTrajectory(runID string) (sim.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return sim.Trajectory{}, nil
	}

	n := (len(records[0]) - 1) / 2
	traj := make(sim.Trajectory, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 2*n+1 {
			return nil, fmt.Errorf("storage: malformed row with %d fields, want %d", len(record), 2*n+1)
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, err
		}
		sample := sim.Sample{T: t, X: make([]float64, n), V: make([]float64, n)}
		for i := 0; i < n; i++ {
			if sample.X[i], err = strconv.ParseFloat(record[1+i], 64); err != nil {
				return nil, err
			}
			if sample.V[i], err = strconv.ParseFloat(record[1+n+i], 64); err != nil {
				return nil, err
			}
		}
		traj = append(traj, sample)
	}
	return traj, nil
}
