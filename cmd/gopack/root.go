package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/gopack/internal/config"
)

// app carries state shared by every command of one invocation.
type app struct {
	cfgFile string
	loader  *config.Loader
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{loader: config.NewLoader()}

	cmd := &cobra.Command{
		Use:   "gopack",
		Short: "A minimal JavaScript module bundler",
		Long: `gopack follows require("...") references from entry files, rewrites them
to stable module ids and writes one self-executing bundle per entry.

Entries are read from a BUNDLE.bazel manifest:

  bundle(output = "dist")
  entry(name = "main", path = "./src/index.js")

or given on the command line with --entry name=path.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./gopack.{yaml,toml,json})")
	cmd.PersistentFlags().String(config.KeyLogLevel, "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(config.KeyManifest, "BUNDLE.bazel", "bundle manifest")

	cmd.AddCommand(newBuildCmd(a))
	cmd.AddCommand(newGraphCmd(a))
	cmd.AddCommand(newInitCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := a.loader.BindFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	cfg, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	if used := a.loader.ConfigFileUsed(); used != "" {
		logger.Debug("loaded config", "file", used)
	}
	return nil
}
