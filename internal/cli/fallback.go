package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/launchpad/internal/api"
	"github.com/mesh-intelligence/launchpad/internal/fallback"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

func newFallbackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fallback",
		Short: "Inspect the canned fallback payloads",
	}
	cmd.AddCommand(newFallbackListCmd(a), newFallbackShowCmd(a))
	return cmd
}

// registry returns the payloads for the selected api version: the fallback
// registry for v2, the v1 mocks over it for v1.
func (a *app) registry() (fallback.Catalog, error) {
	reg, err := fallback.DefaultRegistry()
	if err != nil {
		return nil, sysError("load fallback payloads: %w", err)
	}
	if a.apiVersion() != api.V1 {
		return reg, nil
	}
	mocks, err := api.MocksV1(reg)
	if err != nil {
		return nil, sysError("%w", err)
	}
	return mocks, nil
}

func newFallbackListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the features that have fallback payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			steps := reg.StepFeatures()

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"features": reg.Features(),
					"steps":    steps,
				})
			}

			t := newTable("FEATURE", "STEPS")
			for _, f := range reg.Features() {
				t.AddRow(f, "-")
			}
			for _, f := range fallback.StepFeatures {
				nums := steps[string(f)]
				strs := make([]string, len(nums))
				for i, n := range nums {
					strs[i] = strconv.Itoa(n)
				}
				t.AddRow(f, strings.Join(strs, ","))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func newFallbackShowCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "show <feature> [step]",
		Short: "Print a fallback payload",
		Long: `Show prints the canned payload for a feature, or for one step of a step
feature, as the fallback policy would substitute it. --query sets the search
text echoed by search_results. With --api v1 the v1 mocks are consulted first.

Example:
  launchpad fallback show home
  launchpad fallback show search_results --query yoga
  launchpad fallback show onboarding 2`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			feature := args[0]

			var (
				doc types.Document
				ok  bool
			)
			if len(args) == 2 {
				step, err := strconv.Atoi(args[1])
				if err != nil {
					return userError("invalid step %q: %w", args[1], err)
				}
				doc, ok = reg.GetStep(feature, step)
				if !ok {
					return userError("no fallback payload for %s step %d", feature, step)
				}
			} else {
				if _, ok = reg.Get(feature); !ok {
					return userError("no fallback payload for %s", feature)
				}
				req := &types.Request{}
				if query != "" {
					req.Body = types.Document{"query": query}
				}
				doc = fallback.NewPolicy(reg).Substitute(fallback.Feature(feature), req)
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "search text for search_results")
	return cmd
}
