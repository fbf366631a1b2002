package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend      string       `json:"backend" yaml:"backend"`
	DataDir      string       `json:"data_dir" yaml:"data_dir"`
	MongoConfig  MongoConfig  `json:"mongo" yaml:"mongo"`
	SQLiteConfig SQLiteConfig `json:"sqlite" yaml:"sqlite"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Sync strategies for the SQLite backend. They control when collection
// writes reach the JSONL files.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
	SyncBatch     = "batch"
)

// Defaults applied when the corresponding field is zero.
const (
	DefaultBatchSize     = 10
	DefaultBatchInterval = 5
	DefaultMongoDatabase = "launchpad_db"
	DefaultMongoTimeout  = 30 * time.Second
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrSyncStrategyUnknown  = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid     = errors.New("batch size must be positive")
	ErrBatchIntervalInvalid = errors.New("batch interval must be positive")
	ErrMongoHostsEmpty      = errors.New("mongo backend requires at least one host")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMongo:  true,
}

// MongoConfig holds connection parameters for the MongoDB backend.
type MongoConfig struct {
	Hosts    []string      `json:"hosts" yaml:"hosts"`
	Database string        `json:"database" yaml:"database"`
	Username string        `json:"username,omitempty" yaml:"username,omitempty"`
	Password string        `json:"password,omitempty" yaml:"password,omitempty"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// GetDatabase returns the database name, defaulting to DefaultMongoDatabase.
func (m MongoConfig) GetDatabase() string {
	if m.Database == "" {
		return DefaultMongoDatabase
	}
	return m.Database
}

// GetTimeout returns the dial timeout, defaulting to DefaultMongoTimeout.
func (m MongoConfig) GetTimeout() time.Duration {
	if m.Timeout <= 0 {
		return DefaultMongoTimeout
	}
	return m.Timeout
}

// SQLiteConfig holds the write-persistence knobs for the SQLite backend.
type SQLiteConfig struct {
	SyncStrategy  string `json:"sync_strategy" yaml:"sync_strategy"`
	BatchSize     int    `json:"batch_size" yaml:"batch_size"`
	BatchInterval int    `json:"batch_interval" yaml:"batch_interval"` // seconds
}

// GetSyncStrategy returns the configured strategy or SyncImmediate.
func (s SQLiteConfig) GetSyncStrategy() string {
	if s.SyncStrategy == "" {
		return SyncImmediate
	}
	return s.SyncStrategy
}

// GetBatchSize returns the configured batch size or DefaultBatchSize.
func (s SQLiteConfig) GetBatchSize() int {
	if s.BatchSize == 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

// GetBatchInterval returns the configured interval in seconds or
// DefaultBatchInterval.
func (s SQLiteConfig) GetBatchInterval() int {
	if s.BatchInterval == 0 {
		return DefaultBatchInterval
	}
	return s.BatchInterval
}

// Validate checks the sync settings.
func (s SQLiteConfig) Validate() error {
	switch s.GetSyncStrategy() {
	case SyncImmediate, SyncOnClose:
		return nil
	case SyncBatch:
		if s.BatchSize < 0 {
			return ErrBatchSizeInvalid
		}
		if s.BatchInterval < 0 {
			return ErrBatchIntervalInvalid
		}
		return nil
	default:
		return ErrSyncStrategyUnknown
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Backend {
	case BackendSQLite:
		return c.SQLiteConfig.Validate()
	case BackendMongo:
		if len(c.MongoConfig.Hosts) == 0 {
			return ErrMongoHostsEmpty
		}
	}
	return nil
}
