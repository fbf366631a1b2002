package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/launchpad/internal/api"
)

// routeJSON is the --json rendering of a route.
type routeJSON struct {
	Name    string `json:"name"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Feature string `json:"feature"`
	Kind    string `json:"kind"`
}

func newRoutesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			routes := api.Table()

			if a.flags.jsonMode {
				out := make([]routeJSON, len(routes))
				for i, r := range routes {
					out[i] = routeJSON{Name: r.Name, Method: r.Method, Path: r.Path, Feature: string(r.Feature), Kind: r.Kind.String()}
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			t := newTable("NAME", "METHOD", "PATH", "FEATURE", "KIND")
			for _, r := range routes {
				t.AddRow(r.Name, r.Method, r.Path, r.Feature, r.Kind)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
