// Package sqlite implements the SQLite storage backend for launchpad.
// SQLite serves queries; one JSONL file per collection is the source of
// truth and is reloaded on every Attach.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/juju/loggo"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

var logger = loggo.GetLogger("launchpad.sqlite")

// dbFile is the SQLite file created in DataDir. It is rebuilt from the JSONL
// files on every Attach.
const dbFile = "launchpad.db"

// Backend implements types.Store using SQLite as the query engine and JSONL
// files as the source of truth.
type Backend struct {
	mu          sync.RWMutex
	attached    bool
	config      types.Config
	db          *sql.DB
	collections map[string]*Collection

	// Sync strategy state.
	syncStrategy  string         // effective sync strategy: immediate, on_close, batch
	batchSize     int            // number of writes before batch flush
	batchInterval time.Duration  // time between batch flushes
	pendingWrites []pendingWrite // queue of writes pending JSONL persist
	batchTimer    *time.Timer    // timer for interval-based batch flush
	batchMu       sync.Mutex     // protects pendingWrites and batchTimer
}

// pendingWrite represents a deferred JSONL write operation.
// Used by on_close and batch sync strategies.
type pendingWrite struct {
	collection string       // collection whose JSONL file is rewritten
	operation  string       // "set", "push" or "delete"
	persist    func() error // function to execute the JSONL write
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		collections: make(map[string]*Collection),
	}
}

// GetCollection returns the Collection for the specified name.
// Returns ErrCollectionNotFound if the name is not recognized.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) GetCollection(name string) (types.Collection, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	c, ok := b.collections[name]
	if !ok {
		return nil, types.ErrCollectionNotFound
	}
	return c, nil
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, initializes the SQLite schema, loads
// every collection's JSONL file and creates collection accessors.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return fmt.Errorf("sqlite backend cannot attach %q: %w", config.Backend, types.ErrBackendUnknown)
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is a cache of the JSONL files, so start from scratch.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}

	for _, name := range types.StandardCollectionNames {
		if err := initJSONLFile(dataDir, name); err != nil {
			db.Close()
			return err
		}
	}

	if err := loadAllJSONL(db, dataDir, types.StandardCollectionNames); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.config.DataDir = dataDir

	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.batchSize = config.SQLiteConfig.GetBatchSize()
	b.batchInterval = time.Duration(config.SQLiteConfig.GetBatchInterval()) * time.Second
	b.pendingWrites = nil

	b.attached = true

	for _, name := range types.StandardCollectionNames {
		b.collections[name] = newCollection(b, name)
	}

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}

	logger.Infof("attached sqlite store at %s (sync %s)", dataDir, b.syncStrategy)
	return nil
}

// Detach releases all resources held by the backend.
// Closes the SQLite connection. After Detach, all operations return
// ErrStoreDetached. Detach is idempotent.
// For on_close and batch sync strategies, flushes all pending writes before
// closing.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.collections = make(map[string]*Collection)

	logger.Debugf("detached sqlite store at %s", b.config.DataDir)
	return nil
}

func createSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// shouldPersistImmediately returns true if JSONL writes should happen
// immediately. Returns true for "immediate" strategy (default), false for
// "on_close" and "batch".
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// persist rewrites the JSONL file of collection now or queues the rewrite,
// depending on the sync strategy. The caller must hold b.mu write lock.
func (b *Backend) persist(collection, operation string) error {
	write := func() error {
		return b.persistCollection(collection)
	}
	if b.shouldPersistImmediately() {
		return write()
	}
	b.queueWrite(collection, operation, write)
	return nil
}

// persistCollection writes every document of collection to its JSONL file.
func (b *Backend) persistCollection(collection string) error {
	rows, err := b.db.Query(
		`SELECT doc_key, body, updated_at FROM documents WHERE collection = ? ORDER BY doc_key`,
		collection,
	)
	if err != nil {
		return fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var key, body, updatedAt string
		if err := rows.Scan(&key, &body, &updatedAt); err != nil {
			return fmt.Errorf("scanning %s: %w", collection, err)
		}
		rec, err := json.Marshal(documentJSON{Key: key, Doc: json.RawMessage(body), UpdatedAt: updatedAt})
		if err != nil {
			return fmt.Errorf("encoding %s/%s: %w", collection, key, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s: %w", collection, err)
	}
	return writeJSONL(jsonlPath(b.config.DataDir, collection), records)
}

// queueWrite adds a write operation to the pending queue.
// For "on_close" strategy, writes are queued until Detach.
// For "batch" strategy, writes are queued until batch size or interval is
// reached. The caller must hold b.mu.
func (b *Backend) queueWrite(collection, operation string, persist func() error) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{
		collection: collection,
		operation:  operation,
		persist:    persist,
	})

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && len(b.pendingWrites) >= b.batchSize {
		if err := b.flushPendingWritesBatchLocked(); err != nil {
			logger.Errorf("batch flush: %v", err)
		}
	}
}

// flushPendingWritesLocked flushes all pending writes to JSONL files.
// The caller must hold b.mu write lock.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked executes all pending writes, rewriting each
// collection file once. The caller must hold b.batchMu lock.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}

	done := make(map[string]bool, len(b.pendingWrites))
	for _, pw := range b.pendingWrites {
		if done[pw.collection] {
			continue
		}
		if err := pw.persist(); err != nil {
			// The next Attach reloads from whatever reached disk.
			return fmt.Errorf("flush %s %s: %w", pw.collection, pw.operation, err)
		}
		done[pw.collection] = true
	}

	b.pendingWrites = nil
	return nil
}

// startBatchTimer starts the batch interval timer for periodic flushes.
// The caller should ensure this is only called for batch strategy with
// positive interval.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}

		if err := b.flushPendingWritesLocked(); err != nil {
			logger.Errorf("interval flush: %v", err)
		}

		b.batchMu.Lock()
		if b.batchTimer != nil && b.attached {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch interval timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
