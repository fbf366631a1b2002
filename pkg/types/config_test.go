package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
		},
		{
			name:   "sqlite with empty DataDir is valid at config level",
			config: Config{Backend: BackendSQLite},
		},
		{
			name:    "sqlite with unknown sync strategy",
			config:  Config{Backend: BackendSQLite, SQLiteConfig: SQLiteConfig{SyncStrategy: "sometimes"}},
			wantErr: ErrSyncStrategyUnknown,
		},
		{
			name:    "batch with negative size",
			config:  Config{Backend: BackendSQLite, SQLiteConfig: SQLiteConfig{SyncStrategy: SyncBatch, BatchSize: -1}},
			wantErr: ErrBatchSizeInvalid,
		},
		{
			name:    "batch with negative interval",
			config:  Config{Backend: BackendSQLite, SQLiteConfig: SQLiteConfig{SyncStrategy: SyncBatch, BatchInterval: -3}},
			wantErr: ErrBatchIntervalInvalid,
		},
		{
			name:    "mongo without hosts",
			config:  Config{Backend: BackendMongo},
			wantErr: ErrMongoHostsEmpty,
		},
		{
			name:   "mongo with hosts",
			config: Config{Backend: BackendMongo, MongoConfig: MongoConfig{Hosts: []string{"localhost:27017"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSQLiteConfigDefaults(t *testing.T) {
	var s SQLiteConfig
	assert.Equal(t, SyncImmediate, s.GetSyncStrategy())
	assert.Equal(t, DefaultBatchSize, s.GetBatchSize())
	assert.Equal(t, DefaultBatchInterval, s.GetBatchInterval())

	s = SQLiteConfig{SyncStrategy: SyncBatch, BatchSize: 3, BatchInterval: 9}
	assert.Equal(t, SyncBatch, s.GetSyncStrategy())
	assert.Equal(t, 3, s.GetBatchSize())
	assert.Equal(t, 9, s.GetBatchInterval())
}

func TestMongoConfigDefaults(t *testing.T) {
	var m MongoConfig
	assert.Equal(t, DefaultMongoDatabase, m.GetDatabase())
	assert.Equal(t, DefaultMongoTimeout, m.GetTimeout())

	m = MongoConfig{Database: "wellness", Timeout: time.Second}
	assert.Equal(t, "wellness", m.GetDatabase())
	assert.Equal(t, time.Second, m.GetTimeout())
}
