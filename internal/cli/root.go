// Package cli implements the launchpad command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/juju/loggo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/launchpad/internal/paths"
)

var logger = loggo.GetLogger("launchpad.cli")

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds the global flag values shared by all subcommands.
type rootFlags struct {
	configDir  string
	dataDir    string
	apiVersion string
	jsonMode   bool
}

// app is the state of one CLI invocation.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps a command error to a process exit code. Errors without an
// explicit code (flag and argument errors from cobra) are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "launchpad" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "launchpad",
		Short: "Wellness onboarding backend with fallback payloads",
		Long: "Launchpad serves the onboarding, profile, goals, trackers, HRA, activity,\n" +
			"search, navigation and progress endpoints from a document store, falling\n" +
			"back to canned payloads when the store has nothing to offer.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.loadConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.launchpad or the platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.launchpad-db)")
	root.PersistentFlags().StringVar(&a.flags.apiVersion, "api", "", "api version to serve: v1 or v2 (default from config)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newConfigCmd(a),
		newRoutesCmd(a),
		newGetCmd(a),
		newSaveCmd(a),
		newSearchCmd(a),
		newSeedCmd(a),
		newFallbackCmd(a),
		newProbeCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "launchpad:", err)
	}
	return exitCode(err)
}

func (a *app) loadConfig() error {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	v, err := loadConfig(dir)
	if err != nil {
		return sysError("%w", err)
	}
	a.configDir = dir
	a.config = v
	if err := configureLogging(v.GetString(cfgKeyLogLevel)); err != nil {
		return userError("%w", err)
	}
	logger.Debugf("config loaded from %s", dir)
	return nil
}
