package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/sim"
	"github.com/san-kum/mpmsim/internal/telemetry"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	framesFile   = "frames.csv"
	perfFile     = "perf.csv"
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

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Preset       string             `json:"preset"`
	Timestamp    time.Time          `json:"timestamp"`
	Ticks        int                `json:"ticks"`
	Dt           float64            `json:"dt"`
	GridWidth    int                `json:"grid_width"`
	SpaceWidth   float64            `json:"space_width"`
	Particles    int                `json:"particles"`
	ParticleMass float64            `json:"particle_mass"`
	Backend      string             `json:"backend"`
	Workers      int                `json:"workers"`
	ElapsedMS    int64              `json:"elapsed_ms"`
	Frames       int                `json:"frames"`
	Metrics      map[string]float64 `json:"metrics"`
	Errors       []string           `json:"errors,omitempty"`
}

// FrameRecord is one particle of one stored frame.
type FrameRecord struct {
	Tick  int     `csv:"tick"`
	Time  float64 `csv:"time"`
	ID    int     `csv:"id"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Color float64 `csv:"color"`
}

// Save writes metadata, the run config and every frame of result under a new
// run directory and returns its id.
func (s *Store) Save(cfg *config.Config, backend string, workers int, particleMass float64, result *sim.Result) (string, error) {
	name := cfg.Preset
	if name == "" {
		name = "custom"
	}
	runID, err := s.createRunDir(fmt.Sprintf("%s_%d", name, time.Now().Unix()))
	if err != nil {
		return "", err
	}
	runDir := s.Dir(runID)

	particles := 0
	if len(result.Frames) > 0 {
		particles = len(result.Frames[0].Particles)
	}
	meta := RunMetadata{
		ID:           runID,
		Preset:       cfg.Preset,
		Timestamp:    time.Now(),
		Ticks:        result.TicksTaken,
		Dt:           cfg.Simulation.Dt,
		GridWidth:    cfg.Simulation.GridWidth,
		SpaceWidth:   cfg.Simulation.SpaceWidth,
		Particles:    particles,
		ParticleMass: particleMass,
		Backend:      backend,
		Workers:      workers,
		ElapsedMS:    result.Elapsed.Milliseconds(),
		Frames:       len(result.Frames),
		Metrics:      make(map[string]float64, len(result.Metrics)),
	}
	for name, v := range result.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.Errors = append(meta.Errors, fmt.Sprintf("metric %s is not finite", name))
			continue
		}
		meta.Metrics[name] = v
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", fmt.Errorf("writing %s: %w", configFile, err)
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

// createRunDir makes a fresh directory for id, suffixing it when a run with
// the same id already exists.
func (s *Store) createRunDir(id string) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	candidate := id
	for i := 2; ; i++ {
		err := os.Mkdir(s.Dir(candidate), 0755)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", id, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []sim.Frame) error {
	records := make([]*FrameRecord, 0)
	for _, f := range frames {
		for _, p := range f.Particles {
			records = append(records, &FrameRecord{
				Tick:  f.Tick,
				Time:  f.Time,
				ID:    p.ID,
				X:     p.Pos.X,
				Y:     p.Pos.Y,
				Color: p.Color,
			})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", framesFile, err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&records, file); err != nil {
		return fmt.Errorf("writing %s: %w", framesFile, err)
	}
	return nil
}

// WritePerf stores perf window rows alongside a saved run.
func (s *Store) WritePerf(runID string, rows []telemetry.PerfStatsCSV) error {
	if len(rows) == 0 {
		return nil
	}
	file, err := os.Create(filepath.Join(s.Dir(runID), perfFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", perfFile, err)
	}
	defer file.Close()

	return gocsv.MarshalFile(&rows, file)
}

func (s *Store) LoadPerf(runID string) ([]telemetry.PerfStatsCSV, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), perfFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []telemetry.PerfStatsCSV
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns every readable run, newest first.
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}
