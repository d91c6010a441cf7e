package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/sweep"
)

const (
	KindRun   = "run"
	KindSweep = "sweep"

	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	recordsFile  = "records.csv"
)

var ErrWrongKind = errors.New("wrong run kind")

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
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Topology   string             `json:"topology"`
	Species    int                `json:"species"`
	K          []float64          `json:"k,omitempty"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Window     int                `json:"window"`
	Integrator string             `json:"integrator"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// SaveRun writes one trajectory. ID, Kind and Timestamp of meta are set by
// the store.
func (s *Store) SaveRun(meta RunMetadata, result *dynamo.Result) (string, error) {
	runDir, meta, err := s.create(KindRun, meta)
	if err != nil {
		return "", err
	}
	if meta.Metrics == nil {
		meta.Metrics = result.Metrics
	}
	meta.Metrics = finite(meta.Metrics)
	if err := writeMetadata(runDir, meta); err != nil {
		return "", err
	}

	header := []string{"time"}
	if len(result.States) > 0 {
		for i := range result.States[0] {
			header = append(header, fmt.Sprintf("b%d", i))
		}
	}
	rows := make([][]string, 0, len(result.States))
	for i, x := range result.States {
		row := make([]string, 0, len(x)+1)
		row = append(row, formatFloat(result.Times[i]))
		for _, v := range x {
			row = append(row, formatFloat(v))
		}
		rows = append(rows, row)
	}
	if err := writeCSV(filepath.Join(runDir, statesFile), header, rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveSweep writes a table of sweep records in sweep order.
func (s *Store) SaveSweep(meta RunMetadata, records []sweep.Record) (string, error) {
	runDir, meta, err := s.create(KindSweep, meta)
	if err != nil {
		return "", err
	}
	if meta.K == nil {
		meta.K = make([]float64, len(records))
		for i, r := range records {
			meta.K[i] = r.K
		}
	}
	if err := writeMetadata(runDir, meta); err != nil {
		return "", err
	}

	header := []string{"k", "biomass", "persistence", "growth", "variability", "err"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		}
		rows = append(rows, []string{
			formatFloat(r.K),
			formatFloat(r.Biomass),
			formatFloat(r.Persistence),
			formatFloat(r.Growth),
			formatFloat(r.Variability),
			msg,
		})
	}
	if err := writeCSV(filepath.Join(runDir, recordsFile), header, rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) create(kind string, meta RunMetadata) (string, RunMetadata, error) {
	now := time.Now()
	name := meta.Name
	if name == "" {
		name = kind
	}
	meta.Kind = kind
	meta.Timestamp = now
	meta.ID = fmt.Sprintf("%s_%d", name, now.UnixNano())

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", meta, err
	}
	return runDir, meta, nil
}

// List returns the metadata of every stored run, oldest first.
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata of %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates rebuilds the trajectory of a single run.
func (s *Store) LoadStates(runID string) (*dynamo.Result, error) {
	rows, err := s.readCSV(runID, KindRun, statesFile)
	if err != nil {
		return nil, err
	}

	res := &dynamo.Result{
		States:  make([]dynamo.State, 0, len(rows)),
		Times:   make([]float64, 0, len(rows)),
		Metrics: make(map[string]float64),
	}
	for i, row := range rows {
		vals, err := parseFloats(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statesFile, i+2, err)
		}
		res.Times = append(res.Times, vals[0])
		res.States = append(res.States, dynamo.State(vals[1:]))
	}
	if len(res.States) > 0 {
		res.StepsTaken = len(res.States) - 1
	}
	return res, nil
}

// LoadRecords reads back a stored sweep table.
func (s *Store) LoadRecords(runID string) ([]sweep.Record, error) {
	rows, err := s.readCSV(runID, KindSweep, recordsFile)
	if err != nil {
		return nil, err
	}

	records := make([]sweep.Record, 0, len(rows))
	for i, row := range rows {
		if len(row) != 6 {
			return nil, fmt.Errorf("%s line %d: expected 6 fields, got %d", recordsFile, i+2, len(row))
		}
		vals, err := parseFloats(row[:5])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", recordsFile, i+2, err)
		}
		rec := sweep.Record{K: vals[0], Biomass: vals[1], Persistence: vals[2], Growth: vals[3], Variability: vals[4]}
		if row[5] != "" {
			rec.Err = errors.New(row[5])
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) readCSV(runID, kind, name string) ([][]string, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	if meta.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongKind, runID, meta.Kind)
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return [][]string{}, nil
	}
	return rows[1:], nil
}

func writeMetadata(runDir string, meta RunMetadata) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// finite drops NaN and infinite values, which JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
