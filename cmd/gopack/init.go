package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/gopack/label"
	"github.com/albertocavalcante/gopack/manifest"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a bundle manifest",
		Example: `  gopack init
  gopack init -e main=./src/index.js -e admin=./src/admin.js --output public`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags, err := cmd.Flags().GetStringArray("entry")
			if err != nil {
				return err
			}
			if len(flags) == 0 {
				flags = []string{"main=./src/index.js"}
			}

			var decls []manifest.EntryDecl
			for _, f := range flags {
				name, path, err := parseEntryFlag(f)
				if err != nil {
					return err
				}
				n, err := label.NewName(name)
				if err != nil {
					return err
				}
				decls = append(decls, manifest.EntryDecl{Name: n, Path: path})
			}

			path := a.cfg.Manifest
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			data := manifest.Generate(manifest.BundleDecl{Output: output}, decls)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s with %d entries\n", path, len(decls))
			return nil
		},
	}

	addEntryFlag(cmd)
	cmd.Flags().StringVar(&output, "output", manifest.DefaultOutput, "output directory recorded in the manifest")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing manifest")
	return cmd
}
