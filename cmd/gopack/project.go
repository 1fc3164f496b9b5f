package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/gopack"
	"github.com/albertocavalcante/gopack/manifest"
)

// project is what a command builds: the entries, where the bundles go and
// the options that configure the bundler.
type project struct {
	entries   []gopack.Entry
	outputDir string
	options   []gopack.Option
}

// addEntryFlag registers the repeatable --entry flag on cmd.
func addEntryFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("entry", "e", nil, "entry as name=path (repeatable); overrides the manifest")
}

// parseEntryFlag splits a name=path flag value.
func parseEntryFlag(v string) (name, path string, err error) {
	name, path, ok := strings.Cut(v, "=")
	if !ok || name == "" || path == "" {
		return "", "", fmt.Errorf("invalid entry %q: want name=path", v)
	}
	return name, path, nil
}

// loadProject resolves the entries from --entry flags or, without them,
// from the manifest. Configuration values override the manifest's.
func (a *app) loadProject(cmd *cobra.Command) (*project, error) {
	flags, err := cmd.Flags().GetStringArray("entry")
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	p := &project{}
	if len(flags) > 0 {
		for _, f := range flags {
			name, path, err := parseEntryFlag(f)
			if err != nil {
				return nil, err
			}
			p.entries = append(p.entries, gopack.Entry{Context: cwd, Request: path, Name: name})
		}
		p.outputDir = filepath.Join(cwd, manifest.DefaultOutput)
	} else {
		path, err := filepath.Abs(a.cfg.Manifest)
		if err != nil {
			return nil, err
		}
		entries, out, opts, err := gopack.LoadManifest(afero.NewOsFs(), path)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("loaded manifest", "path", path, "entries", len(entries))
		p.entries, p.outputDir, p.options = entries, out, opts
	}

	if a.cfg.Output != "" {
		out, err := filepath.Abs(a.cfg.Output)
		if err != nil {
			return nil, err
		}
		p.outputDir = out
	}

	p.options = append(p.options, gopack.WithLogger(a.logger))
	if a.cfg.Concurrency > 0 {
		p.options = append(p.options, gopack.WithMaxConcurrency(a.cfg.Concurrency))
	}
	if a.cfg.Extension != "" {
		p.options = append(p.options, gopack.WithExtension(a.cfg.Extension))
	}
	if a.cfg.RuntimeName != "" {
		p.options = append(p.options, gopack.WithRuntimeName(a.cfg.RuntimeName))
	}
	if a.cfg.CacheSize > 0 {
		p.options = append(p.options, gopack.WithCacheSize(a.cfg.CacheSize))
	}
	return p, nil
}
