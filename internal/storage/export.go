package storage

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is the self-contained JSON form of a stored run.
type ExportData struct {
	RunMetadata
	Times      []float64   `json:"times"`
	Positions  [][]float64 `json:"positions"`
	Velocities [][]float64 `json:"velocities"`
}

// Export writes a run as indented JSON.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       make([]float64, len(traj)),
		Positions:   make([][]float64, len(traj)),
		Velocities:  make([][]float64, len(traj)),
	}
	for i, sample := range traj {
		data.Times[i] = sample.T
		data.Positions[i] = sample.X
		data.Velocities[i] = sample.V
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportFile writes a run as indented JSON to the given path.
func (s *Store) ExportFile(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.Export(runID, file)
}
