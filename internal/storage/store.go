package storage

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	// Run index.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"

	"github.com/san-kum/nbody/internal/prefs"
	"github.com/san-kum/nbody/internal/sim"
	"github.com/san-kum/nbody/internal/vec"
)

const (
	metadataFile  = "metadata.json"
	prefsFile     = "prefs.bin"
	particlesFile = "particles.csv"
	historyFile   = "history.json"
	indexFile     = "runs.db"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	db      *sql.DB
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates the data directory and opens the run index.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite3", filepath.Join(s.baseDir, indexFile))
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		generator  TEXT NOT NULL,
		backend    TEXT NOT NULL,
		timestamp  INTEGER NOT NULL,
		seed       INTEGER NOT NULL,
		steps      INTEGER NOT NULL,
		timestep   REAL NOT NULL,
		damping    REAL NOT NULL,
		softening_sqr REAL NOT NULL,
		particles  INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return fmt.Errorf("create run index: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Generator string             `json:"generator"`
	Backend   string             `json:"backend"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Steps     int                `json:"steps"`
	Time      float64            `json:"time"`
	Timestep  float32            `json:"timestep"`
	Damping   float32            `json:"damping"`
	Softening float32            `json:"softening_sqr"`
	Particles uint32             `json:"particles"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is everything recorded about one simulation.
type Run struct {
	Name      string
	Generator string
	Backend   string
	Seed      int64
	Prefs     prefs.Prefs
	Result    *sim.Result
	Position  []vec.Float4
	Velocity  []vec.Float4
}

// Save writes the run directory and indexes it. Non-finite metric values are
// left out since JSON cannot represent them. On failure nothing is left on disk.
func (s *Store) Save(run Run) (_ string, err error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	runID := xid.New().String()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	meta := RunMetadata{
		ID:        runID,
		Name:      run.Name,
		Generator: run.Generator,
		Backend:   run.Backend,
		Timestamp: time.Now(),
		Seed:      run.Seed,
		Timestep:  run.Prefs.Timestep,
		Damping:   run.Prefs.Damping,
		Softening: run.Prefs.SofteningSqr,
		Particles: run.Prefs.Particles,
		Metrics:   map[string]float64{},
	}
	if run.Result != nil {
		meta.Steps = run.Result.StepsTaken
		meta.Time = run.Result.Time
		meta.Metrics = finiteMetrics(runID, run.Result.Metrics)
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	data, err := run.Prefs.MarshalBinary()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, prefsFile), data, 0644); err != nil {
		return "", err
	}

	if err := writeParticles(filepath.Join(runDir, particlesFile), run.Position, run.Velocity); err != nil {
		return "", err
	}

	if run.Result != nil && len(run.Result.History) > 0 {
		history := make([]sim.Sample, len(run.Result.History))
		for i, sample := range run.Result.History {
			sample.Metrics = finiteMetrics(runID, sample.Metrics)
			history[i] = sample
		}
		if err := writeJSON(filepath.Join(runDir, historyFile), history); err != nil {
			return "", err
		}
	}

	_, err = s.db.Exec(`INSERT INTO runs
		(id, name, generator, backend, timestamp, seed, steps, timestep, damping, softening_sqr, particles)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Generator, meta.Backend, meta.Timestamp.UnixNano(), meta.Seed,
		meta.Steps, meta.Timestep, meta.Damping, meta.Softening, meta.Particles)
	if err != nil {
		return "", fmt.Errorf("index run %s: %w", runID, err)
	}

	return runID, nil
}

// List returns indexed runs, newest first. Metrics are not populated.
func (s *Store) List() ([]RunMetadata, error) {
	if _, err := os.Stat(s.baseDir); os.IsNotExist(err) {
		return []RunMetadata{}, nil
	}
	if err := s.Init(); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT id, name, generator, backend, timestamp, seed, steps,
		timestep, damping, softening_sqr, particles FROM runs ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var meta RunMetadata
		var ts int64
		if err := rows.Scan(&meta.ID, &meta.Name, &meta.Generator, &meta.Backend, &ts, &meta.Seed,
			&meta.Steps, &meta.Timestep, &meta.Damping, &meta.Softening, &meta.Particles); err != nil {
			return nil, err
		}
		meta.Timestamp = time.Unix(0, ts)
		runs = append(runs, meta)
	}

	return runs, rows.Err()
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := s.readFile(runID, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadPrefs decodes the 16-byte record the run was integrated with.
func (s *Store) LoadPrefs(runID string) (prefs.Prefs, error) {
	data, err := s.readFile(runID, prefsFile)
	if err != nil {
		return prefs.Prefs{}, err
	}

	var p prefs.Prefs
	if err := p.UnmarshalBinary(data); err != nil {
		return prefs.Prefs{}, fmt.Errorf("run %s: %w", runID, err)
	}
	return p, nil
}

func (s *Store) LoadHistory(runID string) ([]sim.Sample, error) {
	data, err := s.readFile(runID, historyFile)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			return []sim.Sample{}, nil
		}
		return nil, err
	}

	var history []sim.Sample
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *Store) LoadParticles(runID string) ([]vec.Float4, []vec.Float4, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 8

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []vec.Float4{}, []vec.Float4{}, nil
	}

	pos := make([]vec.Float4, 0, len(records)-1)
	vel := make([]vec.Float4, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		var row [8]float32
		for j, field := range records[i] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", particlesFile, i+1, err)
			}
			row[j] = float32(v)
		}
		pos = append(pos, vec.Float4{row[0], row[1], row[2], row[3]})
		vel = append(vel, vec.Float4{row[4], row[5], row[6], row[7]})
	}

	return pos, vel, nil
}

func (s *Store) readFile(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrRunNotFound, runID, name)
		}
		return nil, err
	}
	return data, nil
}

// finiteMetrics returns m without NaN or infinite values.
func finiteMetrics(runID string, m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for name, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			slog.Warn("dropping non-finite metric", "component", "storage", "run", runID, "metric", name, "value", v)
			continue
		}
		out[name] = v
	}
	return out
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

func writeParticles(path string, pos, vel []vec.Float4) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"x", "y", "z", "mass", "vx", "vy", "vz", "vw"}); err != nil {
		return err
	}

	row := make([]string, 8)
	for i := range pos {
		for k := 0; k < 4; k++ {
			row[k] = strconv.FormatFloat(float64(pos[i][k]), 'g', -1, 32)
			row[4+k] = strconv.FormatFloat(float64(vel[i][k]), 'g', -1, 32)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
