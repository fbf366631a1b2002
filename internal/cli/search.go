package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

const searchEndpoint = "search.query"

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search exercises, recipes and articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			s, err := a.openSession()
			if err != nil {
				return err
			}
			out, err := s.api.Call(cmd.Context(), searchEndpoint, &types.Request{Body: types.Document{"query": query}})
			if closeErr := s.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return sysError("%w", err)
			}
			if a.flags.jsonMode {
				return printOutcome(cmd.OutOrStdout(), true, searchEndpoint, out)
			}

			doc, _ := types.AsDocument(out.Body)
			results, _ := doc["results"].([]any)
			w := cmd.OutOrStdout()
			if out.Fallback {
				fmt.Fprintf(w, "# no live results for %q, showing suggestions\n", query)
			}
			t := newTable("TYPE", "TITLE", "DESCRIPTION")
			for _, r := range results {
				d, ok := types.AsDocument(r)
				if !ok {
					continue
				}
				t.AddRow(d.String("type"), d.String("title"), d.String("description"))
			}
			fmt.Fprintln(w, t)
			fmt.Fprintf(w, "%d results\n", len(results))
			return nil
		},
	}
}
