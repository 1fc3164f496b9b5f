package stats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// statsPermissions is the file permission mode for reports.
const statsPermissions = 0o644

// ReadFile reads and parses a report from fs.
func ReadFile(fs afero.Fs, path string) (*Stats, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return Parse(data)
}

// Parse parses report JSON data.
func Parse(data []byte) (*Stats, error) {
	var s Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse stats JSON: %w", err)
	}
	if s.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported stats version %d (max %d)", s.Version, CurrentVersion)
	}

	// Initialize nil maps to empty maps for consistency
	if s.Assets == nil {
		s.Assets = make(map[string]Asset)
	}
	if s.Chunks == nil {
		s.Chunks = make(map[string]Chunk)
	}
	return &s, nil
}

// WriteFile writes the report to path on fs with deterministic formatting.
func (s *Stats) WriteFile(fs afero.Fs, path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return afero.WriteFile(fs, path, data, statsPermissions)
}

// WriteTo writes the report to the given writer.
func (s *Stats) WriteTo(w io.Writer) (int64, error) {
	data, err := s.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Marshal serializes the report to indented JSON. Map keys are sorted, so
// equal reports always produce identical bytes.
func (s *Stats) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
