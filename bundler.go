package gopack

import (
	"context"
	"fmt"
	"time"

	"github.com/albertocavalcante/gopack/jsast"
)

// Bundler builds bundles. A Bundler is safe for concurrent use; every call
// to Compile or Run works on its own Compilation and only the module cache
// is shared between them.
type Bundler struct {
	cfg      *bundlerConfig
	resolver *Resolver
	builder  *ModuleBuilder
}

// New creates a bundler configured by opts.
func New(opts ...Option) (*Bundler, error) {
	cfg, err := newBundlerConfig(opts...)
	if err != nil {
		return nil, err
	}
	resolver := NewResolver(cfg.extension)
	extractor := jsast.NewExtractor().WithRuntimeName(cfg.runtimeName)
	return &Bundler{
		cfg:      cfg,
		resolver: resolver,
		builder:  NewModuleBuilder(cfg.fs, resolver, extractor, cfg.cache, cfg.log()),
	}, nil
}

// Hooks returns the bundler's lifecycle hooks.
func (b *Bundler) Hooks() *Hooks {
	return b.cfg.hooks
}

// NewCompilation returns an empty compilation using the bundler's
// configuration.
func (b *Bundler) NewCompilation() *Compilation {
	return newCompilation(b.cfg, b.resolver, b.builder)
}

// Compile builds the graph of entries and seals it.
func (b *Bundler) Compile(ctx context.Context, entries []Entry) (*Compilation, error) {
	c := b.NewCompilation()
	if err := c.Build(ctx, entries); err != nil {
		return nil, err
	}
	if err := c.Seal(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Run compiles entries and writes one chunk per entry to outputDir.
// When Run fails, chunks written before the failure may remain in outputDir.
func (b *Bundler) Run(ctx context.Context, entries []Entry, outputDir string) (*Result, error) {
	start := time.Now()
	log := b.cfg.log()

	c, err := b.Compile(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	sizes, err := c.Emit(ctx, outputDir)
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}

	res := &Result{
		OutputDir: outputDir,
		Assets:    sizes,
		Chunks:    c.Chunks(),
		Duration:  time.Since(start),
	}
	res.Summary.Entries = len(c.Entries())
	res.Summary.Modules = len(c.Modules())
	res.Summary.Chunks = len(res.Chunks)
	for _, n := range sizes {
		res.Summary.Bytes += n
	}

	b.cfg.hooks.callDone(res)
	log.Info("build finished",
		"entries", res.Summary.Entries,
		"modules", res.Summary.Modules,
		"chunks", res.Summary.Chunks,
		"bytes", res.Summary.Bytes,
		"duration", res.Duration)
	return res, nil
}
