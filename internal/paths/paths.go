// Package paths resolves where launchpad keeps its configuration and its
// document store.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user platform directories.
const AppName = "launchpad"

// Working-directory relative defaults.
const (
	DefaultConfigDirName = ".launchpad"
	DefaultDataDirName   = ".launchpad-db"
)

// Environment overrides.
const (
	EnvConfigDir = "LAUNCHPAD_CONFIG_DIR"
	EnvDataDir   = "LAUNCHPAD_DATA_DIR"
)

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// platformDir is swapped out in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/launchpad (fallback ~/.config/launchpad)
// Others:  os.UserConfigDir()/launchpad
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the per-user data directory.
//
// Linux:   $XDG_DATA_HOME/launchpad (fallback ~/.local/share/launchpad)
// Others:  os.UserConfigDir()/launchpad
func DefaultDataDir() (string, error) {
	return userDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func userDir(xdgEnv, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir picks the configuration directory: flag, then
// LAUNCHPAD_CONFIG_DIR, then ./.launchpad when it exists, then
// DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	dir, err := resolve(flag, "", EnvConfigDir, DefaultConfigDirName)
	if err != nil || flag != "" || os.Getenv(EnvConfigDir) != "" {
		return dir, err
	}
	if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
		return dir, nil
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory: flag, then the data_dir value
// from config.yaml, then LAUNCHPAD_DATA_DIR, then ./.launchpad-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(flag, configValue, EnvDataDir, DefaultDataDirName)
}

// ConfigFile returns the config.yaml path inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

func resolve(flag, configValue, env, cwdName string) (string, error) {
	for _, v := range []string{flag, configValue, os.Getenv(env)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, cwdName), nil
}
