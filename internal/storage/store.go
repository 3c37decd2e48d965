package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/smoroz/ledfluid/internal/config"
	"github.com/smoroz/ledfluid/internal/telemetry"
)

// Store persists finished runs under a base directory, one subdirectory
// per run holding metadata.json and telemetry.csv.
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
	ID        string            `json:"id"`
	Preset    string            `json:"preset,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Config    config.Config     `json:"config"`
	Summary   telemetry.Summary `json:"summary"`
}

// Save writes one run to disk and returns its ID.
func (s *Store) Save(preset string, cfg *config.Config, collector *telemetry.Collector) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: time.Now(),
		Config:    *cfg,
		Summary:   collector.Summarize(),
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

	if err := collector.WriteCSV(filepath.Join(runDir, "telemetry.csv")); err != nil {
		return "", err
	}
	return runID, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// List returns the metadata of every stored run, newest first. A missing
// base directory is an empty list, not an error.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// TelemetryPath returns the csv path of a stored run.
func (s *Store) TelemetryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "telemetry.csv")
}
