package gopack

import (
	"time"

	"github.com/albertocavalcante/gopack/label"
)

// Entry declares one bundle entry point.
type Entry struct {
	// Context is the directory anchoring relative lookups for the entry's
	// whole closure. Module IDs are computed relative to it.
	Context string `json:"context"`

	// Request is the raw entry request, e.g. "./src/index.js". It is joined
	// onto Context; the default extension is appended when it has none.
	Request string `json:"request"`

	// Name names the entry. It is the affinity tag inherited by every module
	// reachable from the entry and the base name of the emitted chunk.
	Name string `json:"name"`
}

// Dependency is one resolved reference found inside a module, carrying
// everything needed to build the referenced module.
type Dependency struct {
	// Request is the raw request text as written in the source.
	Request string `json:"request"`

	// ID is the canonical id the reference was rewritten to.
	ID label.ModuleID `json:"-"`

	// Resource is the resolved resource path.
	Resource string `json:"resource"`

	// Context is the resolution context inherited from the referrer.
	Context string `json:"context"`

	// Affinity is the entry name inherited from the referrer.
	Affinity label.Name `json:"-"`
}

// Module is a built unit of source. Modules are immutable once built and
// may be shared by reference.
type Module struct {
	// ID is the canonical module address.
	ID label.ModuleID

	// Affinity names the entry whose closure this module belongs to.
	Affinity label.Name

	// Context is the resolution context of the module's entry.
	Context string

	// Request is the raw request the module was first reached by.
	Request string

	// Resource is the resolved resource path.
	Resource string

	// Original is the source text as read.
	Original string

	// Source is the rewritten source text, with every require call
	// redirected to the runtime loader and pointed at a module id.
	Source string

	// Dependencies lists the module's resolved references in source order.
	Dependencies []Dependency
}

// Chunk is one bundle output unit. There is one chunk per entry.
type Chunk struct {
	// Name is the entry name (affinity tag) the chunk groups.
	Name label.Name

	// EntryID is the id of the entry module, invoked when the bundle runs.
	EntryID label.ModuleID

	// File is the output file name, "<name><extension>".
	File string

	// Modules are the members, entry first, then dependencies depth-first in
	// extraction order.
	Modules []*Module

	// Source is the rendered runtime bundle.
	Source string
}

// Result summarizes a finished build.
type Result struct {
	// OutputDir is the directory the assets were written to.
	OutputDir string `json:"output_dir"`

	// Assets maps each emitted file name to its size in bytes.
	Assets map[string]int `json:"assets"`

	// Chunks are the sealed chunks in entry declaration order.
	Chunks []*Chunk `json:"-"`

	// Summary provides aggregate counts.
	Summary BuildSummary `json:"summary"`

	// Duration is the wall time of the whole build.
	Duration time.Duration `json:"duration"`
}

// BuildSummary provides aggregate statistics about a build.
type BuildSummary struct {
	Entries int `json:"entries"`
	Modules int `json:"modules"`
	Chunks  int `json:"chunks"`
	Bytes   int `json:"bytes"`
}

// ProgressEventType identifies a ProgressEvent.
type ProgressEventType string

const (
	ProgressModuleStart  ProgressEventType = "module_start"
	ProgressModuleDone   ProgressEventType = "module_done"
	ProgressChunkDone    ProgressEventType = "chunk_done"
	ProgressAssetWritten ProgressEventType = "asset_written"
)

// ProgressEvent reports build progress to the callback set with WithProgress.
// Module events are delivered from builder goroutines concurrently.
type ProgressEvent struct {
	Type     ProgressEventType
	Entry    string
	ModuleID string
	File     string
}
