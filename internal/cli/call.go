package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/launchpad/internal/api"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	var user, query string
	cmd := &cobra.Command{
		Use:   "get <endpoint> [step]",
		Short: "Call an endpoint and print its response",
		Long: `Get calls a named endpoint (see "launchpad routes") for a user and prints
the response body. Step endpoints take the step number as second argument.

Example:
  launchpad get home --user u1
  launchpad get onboarding.step 2 --user u1
  launchpad get search.query --query yoga`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &types.Request{UserID: user}
			if query != "" {
				req.Body = types.Document{"query": query}
			}
			return a.call(cmd, args, req)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&query, "query", "", "search text for search.query")
	return cmd
}

func newSaveCmd(a *app) *cobra.Command {
	var user, data, file string
	cmd := &cobra.Command{
		Use:   "save <endpoint> [step]",
		Short: "Send a request body to an endpoint",
		Long: `Save calls a named endpoint with a JSON or YAML request body.

Example:
  launchpad save profile.save 2 --user u1 --data '{"userResponses":{"height":180}}'
  launchpad save activity.log --user u1 --file activity.yaml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), data, file)
			if err != nil {
				return err
			}
			return a.call(cmd, args, &types.Request{UserID: user, Body: body})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&data, "data", "", "request body as inline JSON or YAML")
	cmd.Flags().StringVar(&file, "file", "", "request body file (- for stdin)")
	return cmd
}

// call resolves args to an endpoint and step, calls it and prints the
// outcome.
func (a *app) call(cmd *cobra.Command, args []string, req *types.Request) error {
	name := args[0]
	route, ok := findRoute(name)
	if !ok {
		return userError("unknown endpoint %q (see launchpad routes)", name)
	}
	switch {
	case route.Kind.Stepped() && len(args) < 2:
		return userError("endpoint %s requires a step", name)
	case !route.Kind.Stepped() && len(args) > 1:
		return userError("endpoint %s does not take a step", name)
	case route.Kind.Stepped():
		step, err := strconv.Atoi(args[1])
		if err != nil {
			return userError("invalid step %q: %w", args[1], err)
		}
		req.Step = step
	}

	s, err := a.openSession()
	if err != nil {
		return err
	}
	out, err := s.api.Call(cmd.Context(), name, req)
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return sysError("%w", err)
	}
	return printOutcome(cmd.OutOrStdout(), a.flags.jsonMode, name, out)
}

func findRoute(name string) (api.Route, bool) {
	for _, r := range api.Table() {
		if r.Name == name {
			return r, true
		}
	}
	return api.Route{}, false
}
