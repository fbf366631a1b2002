package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/launchpad/internal/launchpad"
)

func newSeedCmd(a *app) *cobra.Command {
	var user, file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data into the store",
		Long: `Seed upserts the home page configuration, search documents and search
suggestions. With --user it also writes demo documents for that user.

Example:
  launchpad seed
  launchpad seed --user demo
  launchpad seed --file seed.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadSeed(file)
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			result, err := launchpad.New(st).Seed(cmd.Context(), data, user)
			if detachErr := st.Detach(); err == nil && detachErr != nil {
				err = sysError("detach store: %w", detachErr)
			}
			if err != nil {
				return sysError("seed: %w", err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), result)
			}
			names := make([]string, 0, len(result))
			for name := range result {
				names = append(names, name)
			}
			sort.Strings(names)
			t := newTable("COLLECTION", "DOCUMENTS")
			for _, name := range names {
				t.AddRow(name, result[name])
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d documents\n", result.Total())
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "also seed demo documents for this user id")
	cmd.Flags().StringVar(&file, "file", "", "seed YAML file (default: built-in seed data)")
	return cmd
}

func loadSeed(file string) (*launchpad.SeedData, error) {
	if file == "" {
		data, err := launchpad.DefaultSeedData()
		if err != nil {
			return nil, sysError("%w", err)
		}
		return data, nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, userError("read %s: %w", file, err)
	}
	data, err := launchpad.LoadSeedData(raw)
	if err != nil {
		return nil, userError("%s: %w", file, err)
	}
	return data, nil
}
