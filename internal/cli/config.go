package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/loggo"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/launchpad/internal/api"
	"github.com/mesh-intelligence/launchpad/internal/paths"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "LAUNCHPAD"

	cfgKeyBackend         = "backend"
	cfgKeyDataDir         = "data_dir"
	cfgKeyAPIVersion      = "api_version"
	cfgKeyLogLevel        = "log_level"
	cfgKeyMongoHosts      = "mongo.hosts"
	cfgKeyMongoDatabase   = "mongo.database"
	cfgKeyMongoUsername   = "mongo.username"
	cfgKeyMongoPassword   = "mongo.password"
	cfgKeyMongoTimeout    = "mongo.timeout"
	cfgKeySyncStrategy    = "sqlite.sync_strategy"
	cfgKeyBatchSize       = "sqlite.batch_size"
	cfgKeyBatchInterval   = "sqlite.batch_interval"
	defaultLogLevel       = "<root>=WARNING"
	defaultMongoHost      = "localhost:27017"
	defaultSyncStrategy   = types.SyncImmediate
	redactedConfigPattern = "********"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Launchpad configuration

# Storage backend: sqlite or mongo
backend: sqlite

# Data directory for the sqlite backend (overridable by --data-dir)
# data_dir:

# Endpoint table: v1 serves static mocks, v2 serves the store with fallbacks
api_version: v2

# loggo logging spec, for example "<root>=INFO;launchpad.fallback=DEBUG"
log_level: "<root>=WARNING"

sqlite:
  # immediate, on_close or batch
  sync_strategy: immediate
  batch_size: 10
  # seconds
  batch_interval: 5

mongo:
  hosts:
    - localhost:27017
  database: launchpad_db
  timeout: 30s
`

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run. LAUNCHPAD_* environment variables override
// file values (mongo.hosts reads LAUNCHPAD_MONGO_HOSTS).
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyAPIVersion, api.V2)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyMongoHosts, []string{defaultMongoHost})
	v.SetDefault(cfgKeyMongoDatabase, types.DefaultMongoDatabase)
	v.SetDefault(cfgKeyMongoTimeout, types.DefaultMongoTimeout)
	v.SetDefault(cfgKeySyncStrategy, defaultSyncStrategy)
	v.SetDefault(cfgKeyBatchSize, types.DefaultBatchSize)
	v.SetDefault(cfgKeyBatchInterval, types.DefaultBatchInterval)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// configureLogging applies a loggo spec such as "<root>=INFO".
func configureLogging(spec string) error {
	if spec == "" {
		return nil
	}
	if err := loggo.ConfigureLoggers(spec); err != nil {
		return fmt.Errorf("log_level %q: %w", spec, err)
	}
	return nil
}

// apiVersion returns the --api flag or the configured api_version.
func (a *app) apiVersion() string {
	if a.flags.apiVersion != "" {
		return a.flags.apiVersion
	}
	return a.config.GetString(cfgKeyAPIVersion)
}

// storeConfig builds and validates the store configuration.
func (a *app) storeConfig() (types.Config, error) {
	v := a.config
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError("resolve data dir: %w", err)
	}
	cfg := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: dataDir,
		MongoConfig: types.MongoConfig{
			Hosts:    v.GetStringSlice(cfgKeyMongoHosts),
			Database: v.GetString(cfgKeyMongoDatabase),
			Username: v.GetString(cfgKeyMongoUsername),
			Password: v.GetString(cfgKeyMongoPassword),
			Timeout:  v.GetDuration(cfgKeyMongoTimeout),
		},
		SQLiteConfig: types.SQLiteConfig{
			SyncStrategy:  v.GetString(cfgKeySyncStrategy),
			BatchSize:     v.GetInt(cfgKeyBatchSize),
			BatchInterval: v.GetInt(cfgKeyBatchInterval),
		},
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError("invalid config in %s: %w", filepath.Join(a.configDir, configFileName+"."+configFileType), err)
	}
	return cfg, nil
}

// settings is the effective configuration shown by "launchpad config".
type settings struct {
	ConfigDir  string       `json:"config_dir" yaml:"config_dir"`
	APIVersion string       `json:"api_version" yaml:"api_version"`
	LogLevel   string       `json:"log_level" yaml:"log_level"`
	Store      types.Config `json:"store" yaml:"store"`
}

func (a *app) settings() (settings, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return settings{}, err
	}
	if cfg.MongoConfig.Password != "" {
		cfg.MongoConfig.Password = redactedConfigPattern
	}
	return settings{
		ConfigDir:  a.configDir,
		APIVersion: a.apiVersion(),
		LogLevel:   a.config.GetString(cfgKeyLogLevel),
		Store:      cfg,
	}, nil
}
