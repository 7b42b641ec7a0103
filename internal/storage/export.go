package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Data map[string]ExportField `json:"data"`
}

type ExportField struct {
	Steps  []int       `json:"steps"`
	Times  []float64   `json:"times"`
	Values [][]float64 `json:"values"`
}

// ExportJSON writes a run's metadata and every recorded field to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Data:        make(map[string]ExportField, len(meta.Fields)),
	}
	for _, field := range meta.Fields {
		fd, err := s.LoadField(runID, field)
		if err != nil {
			return err
		}
		data.Data[field] = ExportField{Steps: fd.Steps, Times: fd.Times, Values: fd.Values}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies a recorded field's CSV to w.
func (s *Store) ExportCSV(w io.Writer, runID, field string) error {
	file, err := os.Open(s.fieldPath(runID, field))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoField
		}
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}
