package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/launchpad/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize launchpad configuration and storage",
		Long: "Create the configuration directory with a default config.yaml, then\n" +
			"attach and detach the configured store so its data files exist.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.Detach(); err != nil {
				return sysError("finalize storage: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Launchpad initialized (config: %s)\n", paths.ConfigFile(a.configDir))
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), s)
			}
			t := newTable("KEY", "VALUE")
			t.AddRow("config_dir", s.ConfigDir)
			t.AddRow("api_version", s.APIVersion)
			t.AddRow("log_level", s.LogLevel)
			t.AddRow("backend", s.Store.Backend)
			t.AddRow("data_dir", s.Store.DataDir)
			t.AddRow("sqlite.sync_strategy", s.Store.SQLiteConfig.GetSyncStrategy())
			t.AddRow("sqlite.batch_size", s.Store.SQLiteConfig.GetBatchSize())
			t.AddRow("sqlite.batch_interval", s.Store.SQLiteConfig.GetBatchInterval())
			t.AddRow("mongo.hosts", s.Store.MongoConfig.Hosts)
			t.AddRow("mongo.database", s.Store.MongoConfig.GetDatabase())
			t.AddRow("mongo.username", s.Store.MongoConfig.Username)
			t.AddRow("mongo.password", s.Store.MongoConfig.Password)
			t.AddRow("mongo.timeout", s.Store.MongoConfig.GetTimeout())
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
}
