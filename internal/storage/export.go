package storage

import (
	"encoding/hex"
	"encoding/json"
	"io"

	"github.com/san-kum/nbody/internal/sim"
)

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Prefs   string       `json:"prefs_hex"`
	History []sim.Sample `json:"history"`
}

// ExportJSON writes a run's metadata, encoded prefs, and metric history.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	p, err := s.LoadPrefs(runID)
	if err != nil {
		return err
	}
	history, err := s.LoadHistory(runID)
	if err != nil {
		return err
	}

	raw, _ := p.MarshalBinary()
	data := ExportData{
		Run:     *meta,
		Prefs:   hex.EncodeToString(raw),
		History: history,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
