package stats

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/albertocavalcante/gopack"
)

// CurrentVersion is the report format version written by this package.
const CurrentVersion = 1

// Stats is a build report.
type Stats struct {
	// Version is the report format version.
	Version int `json:"statsVersion"`

	// OutputDir is the directory the assets were written to.
	OutputDir string `json:"outputDir"`

	// Assets maps each emitted file name to its size and digest.
	Assets map[string]Asset `json:"assets"`

	// Chunks maps each chunk name to its entry and members.
	Chunks map[string]Chunk `json:"chunks"`

	// Summary holds aggregate counts.
	Summary gopack.BuildSummary `json:"summary"`

	// DurationMillis is the wall time of the build.
	DurationMillis int64 `json:"durationMillis"`
}

// Asset describes one emitted file.
type Asset struct {
	Size   int    `json:"size"`
	SHA256 string `json:"sha256"`
}

// Chunk describes one chunk.
type Chunk struct {
	File    string   `json:"file"`
	Entry   string   `json:"entry"`
	Modules []string `json:"modules"`
}

// New creates an empty report.
func New() *Stats {
	return &Stats{
		Version: CurrentVersion,
		Assets:  make(map[string]Asset),
		Chunks:  make(map[string]Chunk),
	}
}

// FromResult builds a report from a build result.
func FromResult(res *gopack.Result) *Stats {
	s := New()
	s.OutputDir = res.OutputDir
	s.Summary = res.Summary
	s.DurationMillis = res.Duration.Milliseconds()

	for _, c := range res.Chunks {
		ids := make([]string, len(c.Modules))
		for i, m := range c.Modules {
			ids[i] = m.ID.String()
		}
		s.Chunks[c.Name.String()] = Chunk{
			File:    c.File,
			Entry:   c.EntryID.String(),
			Modules: ids,
		}
		s.Assets[c.File] = Asset{Size: len(c.Source), SHA256: Digest(c.Source)}
	}

	// Assets emitted without a chunk, if any, keep their size only.
	for file, size := range res.Assets {
		if _, ok := s.Assets[file]; !ok {
			s.Assets[file] = Asset{Size: size}
		}
	}
	return s
}

// Digest returns the hex SHA-256 of content.
func Digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
