package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/gopack"
	"github.com/albertocavalcante/gopack/graph"
)

func newGraphCmd(a *app) *cobra.Command {
	var (
		format string
		why    string
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the module graph without writing bundles",
		Example: `  gopack graph
  gopack graph --format dot | dot -Tsvg > graph.svg
  gopack graph --why main:./src/util.js`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadProject(cmd)
			if err != nil {
				return err
			}
			b, err := gopack.New(p.options...)
			if err != nil {
				return err
			}
			c, err := b.Compile(cmd.Context(), p.entries)
			if err != nil {
				return err
			}
			g := graph.FromCompilation(c)

			out := cmd.OutOrStdout()
			if why != "" {
				text, err := g.ToExplainText(graph.ParseModuleKey(why))
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, text)
				return err
			}

			switch format {
			case "text":
				_, err = fmt.Fprint(out, g.ToText())
			case "dot":
				_, err = fmt.Fprint(out, g.ToDOT())
			case "json":
				var data []byte
				data, err = g.ToJSON()
				if err == nil {
					_, err = fmt.Fprintln(out, string(data))
				}
			default:
				err = fmt.Errorf("unknown format %q: want text, json or dot", format)
			}
			return err
		},
	}

	addEntryFlag(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or dot")
	cmd.Flags().StringVar(&why, "why", "", "explain why a module (affinity:id) is bundled")
	return cmd
}
