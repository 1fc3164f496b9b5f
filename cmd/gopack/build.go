package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/gopack"
	"github.com/albertocavalcante/gopack/internal/config"
	"github.com/albertocavalcante/gopack/stats"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Bundle every entry and write the chunks",
		Example: `  gopack build
  gopack build --manifest web/BUNDLE.bazel --output web/dist
  gopack build -e main=./src/index.js --stats stats.json
  gopack build --compare old-stats.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd)
		},
	}

	addEntryFlag(cmd)
	cmd.Flags().StringP(config.KeyOutput, "o", "", "output directory (default from manifest)")
	cmd.Flags().String(config.KeyStats, "", "write a build report to this file")
	cmd.Flags().String(config.KeyCompare, "", "compare the build against a previous report")
	cmd.Flags().Int(config.KeyConcurrency, 0, "max modules parsed at once (0 = default)")
	cmd.Flags().String(config.KeyExtension, "", "module and bundle file extension")
	cmd.Flags().String(config.KeyRuntimeName, "", "runtime loader identifier")
	cmd.Flags().Int(config.KeyCacheSize, 0, "module cache size (0 = no cache)")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command) error {
	p, err := a.loadProject(cmd)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	var previous *stats.Stats
	if a.cfg.Compare != "" {
		previous, err = stats.ReadFile(fs, a.cfg.Compare)
		if err != nil {
			return err
		}
	}

	res, err := gopack.Bundle(cmd.Context(), p.entries, p.outputDir, p.options...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printResult(out, res)

	report := stats.FromResult(res)
	if a.cfg.Stats != "" {
		if err := report.WriteFile(fs, a.cfg.Stats); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
		a.logger.Info("wrote stats", "file", a.cfg.Stats)
	}
	if previous != nil {
		printDiff(out, stats.Diff(previous, report))
	}
	return nil
}

func printResult(w io.Writer, res *gopack.Result) {
	files := make([]string, 0, len(res.Assets))
	for f := range res.Assets {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		fmt.Fprintf(w, "  %-30s %8d B\n", filepath.Join(res.OutputDir, f), res.Assets[f])
	}
	fmt.Fprintf(w, "%d entries, %d modules, %d chunks, %d bytes in %s\n",
		res.Summary.Entries, res.Summary.Modules, res.Summary.Chunks, res.Summary.Bytes,
		res.Duration.Round(time.Millisecond))
}

func printDiff(w io.Writer, d *stats.BuildDiff) {
	fmt.Fprintf(w, "compared to previous build: %s\n", d.Summary())
	for _, c := range d.Added {
		fmt.Fprintf(w, "  + %s (%d B)\n", c.File, c.Size)
	}
	for _, c := range d.Removed {
		fmt.Fprintf(w, "  - %s (%d B)\n", c.File, c.Size)
	}
	for _, c := range d.Changed {
		fmt.Fprintf(w, "  ~ %s (%+d B)\n", c.File, c.SizeDelta())
	}
	for _, m := range d.ModulesAdded {
		fmt.Fprintf(w, "  + %s in %s\n", m.ID, m.Chunk)
	}
	for _, m := range d.ModulesRemoved {
		fmt.Fprintf(w, "  - %s in %s\n", m.ID, m.Chunk)
	}
}
