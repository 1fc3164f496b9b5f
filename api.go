// Package gopack provides a minimal JavaScript module bundler core.
//
// Starting from one or more entry files, gopack discovers the transitive
// graph of require("...") references, rewrites each reference to a stable
// module id, groups the modules reachable from each entry into a chunk and
// renders every chunk as a self-executing bundle with a small CommonJS-style
// runtime.
//
// # Overview
//
// The package is organized around a few components:
//
//   - Resolver: maps a raw request onto a resource path and a module id
//   - ModuleBuilder: loads, parses and rewrites a single module
//   - Compilation: builds the module graph concurrently, then seals it into chunks
//   - Emitter: writes the rendered chunks through the file system
//
// # Quick Start
//
//	result, err := gopack.Bundle(ctx, []gopack.Entry{
//	    {Context: "/src/app", Request: "./index.js", Name: "main"},
//	}, "/src/app/dist")
//
//	// From a BUNDLE.bazel manifest
//	result, err := gopack.BundleManifest(ctx, "BUNDLE.bazel")
//
// # Module identity
//
// Module ids have the form "./" followed by the resource path relative to the
// entry's context directory. Every module reachable from an entry carries the
// entry's name as its affinity, and a module is built once per (id, affinity)
// pair. Two entries reaching the same file each get their own copy.
//
// # Thread Safety
//
// Bundler is safe for concurrent use. Module builds within a compilation run
// concurrently; hooks registered for AfterModule must tolerate that.
package gopack

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/albertocavalcante/gopack/manifest"
)

// Bundle builds entries and writes one bundle per entry to outputDir.
func Bundle(ctx context.Context, entries []Entry, outputDir string, opts ...Option) (*Result, error) {
	b, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return b.Run(ctx, entries, outputDir)
}

// BundleManifest builds the entries declared in the manifest at path.
// Paths in the manifest are relative to its directory. Options passed by the
// caller take precedence over settings declared in the manifest.
func BundleManifest(ctx context.Context, path string, opts ...Option) (*Result, error) {
	cfg, err := newBundlerConfig(opts...)
	if err != nil {
		return nil, err
	}
	entries, outputDir, mopts, err := LoadManifest(cfg.fs, path)
	if err != nil {
		return nil, err
	}
	return Bundle(ctx, entries, outputDir, append(mopts, opts...)...)
}

// LoadManifest reads the manifest at path and returns its entries, its
// output directory and the options it declares.
func LoadManifest(fs afero.Fs, path string) ([]Entry, string, []Option, error) {
	result, err := manifest.ParseFile(fs, path)
	if err != nil {
		return nil, "", nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := result.Err(); err != nil {
		return nil, "", nil, fmt.Errorf("parse manifest: %w", err)
	}
	return entriesFromManifest(result.File, filepath.Dir(path))
}

func entriesFromManifest(f *manifest.File, dir string) ([]Entry, string, []Option, error) {
	decls := f.Entries()
	if len(decls) == 0 {
		return nil, "", nil, fmt.Errorf("%s: %w", f.Path, ErrNoEntries)
	}

	entries := make([]Entry, 0, len(decls))
	for _, d := range decls {
		ctxDir := dir
		if d.Context != "" {
			ctxDir = joinUnder(dir, d.Context)
		}
		entries = append(entries, Entry{
			Context: ctxDir,
			Request: d.Path,
			Name:    d.Name.String(),
		})
	}

	var opts []Option
	if b := f.Bundle(); b != nil {
		if b.Extension != "" {
			opts = append(opts, WithExtension(b.Extension))
		}
		if b.RuntimeName != "" {
			opts = append(opts, WithRuntimeName(b.RuntimeName))
		}
	}
	return entries, joinUnder(dir, f.Output()), opts, nil
}

func joinUnder(dir, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
