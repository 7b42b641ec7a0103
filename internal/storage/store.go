package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/mpmsim/internal/solver"
)

var ErrNoField = errors.New("storage: field not recorded for run")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Scheme     string             `json:"scheme"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Gravity    []float64          `json:"gravity,omitempty"`
	Particles  int                `json:"particles"`
	Fields     []string           `json:"fields"`
	Metrics    map[string]float64 `json:"metrics"`
}

// FieldData is one recorded field over time: Values[k] is the flattened
// particle data at Steps[k], Times[k].
type FieldData struct {
	Steps  []int
	Times  []float64
	Values [][]float64
}

// Series returns component k over time.
func (f *FieldData) Series(k int) []float64 {
	out := make([]float64, 0, len(f.Values))
	for _, row := range f.Values {
		if k < len(row) {
			out = append(out, row[k])
		}
	}
	return out
}

// Save writes metadata.json and one <field>.csv per recorded field. ID,
// Timestamp, StepsTaken, Fields and Metrics are filled from the result.
func (s *Store) Save(meta RunMetadata, result *solver.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.StepsTaken = result.StepsTaken
	meta.Metrics = result.Metrics
	meta.Fields = recordedFields(result)

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	for _, field := range meta.Fields {
		if err := writeField(filepath.Join(runDir, field+".csv"), field, result); err != nil {
			return "", fmt.Errorf("write %s: %w", field, err)
		}
	}

	return runID, nil
}

func recordedFields(result *solver.Result) []string {
	if len(result.Snapshots) == 0 {
		return []string{}
	}
	fields := make([]string, 0, len(result.Snapshots[0].Fields))
	for f := range result.Snapshots[0].Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func writeField(path, field string, result *solver.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)

	width := len(result.Snapshots[0].Fields[field])
	header := []string{"step", "time"}
	for i := 0; i < width; i++ {
		header = append(header, fmt.Sprintf("v%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range result.Snapshots {
		row := []string{
			strconv.Itoa(snap.Step),
			strconv.FormatFloat(snap.Time, 'g', -1, 64),
		}
		for _, val := range snap.Fields[field] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every run under the base directory, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) fieldPath(runID, field string) string {
	return filepath.Join(s.baseDir, runID, field+".csv")
}

// LoadField reads one recorded field of a run.
func (s *Store) LoadField(runID, field string) (*FieldData, error) {
	file, err := os.Open(s.fieldPath(runID, field))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNoField, runID, field)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	data := &FieldData{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		values := make([]float64, 0, len(record)-2)
		for _, cell := range record[2:] {
			val, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			values = append(values, val)
		}

		data.Steps = append(data.Steps, step)
		data.Times = append(data.Times, t)
		data.Values = append(data.Values, values)
	}

	return data, nil
}
