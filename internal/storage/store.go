// Package storage keeps finished headless runs on disk, one directory per
// run holding metadata.json and positions.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/sim"
)

var (
	ErrNoPositions = errors.New("storage: run has no position samples")
	ErrBadHeader   = errors.New("storage: malformed positions header")
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

// RunInfo is what the caller knows about a run before it is saved.
type RunInfo struct {
	Preset     string
	Integrator string
	Dt         float64
	Duration   float64
	Speed      float64
	Substeps   int
	Epoch      time.Time
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset"`
	Timestamp   time.Time          `json:"timestamp"`
	Epoch       time.Time          `json:"epoch"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Speed       float64            `json:"speed"`
	Substeps    int                `json:"substeps"`
	Integrator  string             `json:"integrator"`
	Bodies      []string           `json:"bodies"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

func (s *Store) newRunDir(preset string) (string, string, error) {
	now := time.Now()
	for i := 0; ; i++ {
		runID := fmt.Sprintf("%s_%d", preset, now.Unix())
		if i > 0 {
			runID = fmt.Sprintf("%s_%d_%d", preset, now.Unix(), i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	runID, runDir, err := s.newRunDir(info.Preset)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Preset:      info.Preset,
		Timestamp:   time.Now(),
		Epoch:       info.Epoch,
		Dt:          info.Dt,
		Duration:    info.Duration,
		Speed:       info.Speed,
		Substeps:    info.Substeps,
		Integrator:  info.Integrator,
		Bodies:      result.Names,
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
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

	csvFile, err := os.Create(filepath.Join(runDir, "positions.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WritePositionsCSV(csvFile, result); err != nil {
		return "", err
	}

	log.Debug("run saved", "id", runID, "samples", len(result.Times))
	return runID, nil
}

// WritePositionsCSV writes one row per sample: time in days, then x,y,z for
// every body. A removed body is written as NaN.
func WritePositionsCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)

	header := []string{"time"}
	for _, name := range result.Names {
		header = append(header, name+"_x", name+"_y", name+"_z")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range result.Positions {
		rec := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, p := range row {
			for _, c := range p {
				rec = append(rec, strconv.FormatFloat(c, 'g', 12, 64))
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns saved runs, newest first. Unreadable runs are skipped.
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

		meta, err := s.Load(entry.Name())
		if err != nil {
			log.Warn("skipping run", "id", entry.Name(), "err", err)
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
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

// LoadPositions reads a run's samples back. Body names come from the CSV
// header.
func (s *Store) LoadPositions(runID string) (names []string, times []float64, positions [][]mgl64.Vec3, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "positions.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil, ErrNoPositions
	}

	header := records[0]
	for i := 1; i+2 < len(header); i += 3 {
		name, ok := strings.CutSuffix(header[i], "_x")
		if !ok || name == "" {
			return nil, nil, nil, fmt.Errorf("%w: column %d is %q", ErrBadHeader, i, header[i])
		}
		names = append(names, name)
	}

	for _, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		row := make([]mgl64.Vec3, len(names))
		for b := range names {
			for c := 0; c < 3; c++ {
				idx := 1 + 3*b + c
				if idx >= len(record) {
					break
				}
				row[b][c], _ = strconv.ParseFloat(record[idx], 64)
			}
		}
		times = append(times, t)
		positions = append(positions, row)
	}

	return names, times, positions, nil
}

// LoadResult rebuilds the parts of a sim.Result that were saved.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	names, times, positions, err := s.LoadPositions(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &sim.Result{
		Names:       names,
		Times:       times,
		Positions:   positions,
		Metrics:     meta.Metrics,
		EnergyDrift: meta.EnergyDrift,
		StepsTaken:  meta.Steps,
	}, nil
}
