// Package store provides the public constructors for launchpad storage
// backends while keeping implementation details internal.
package store

import (
	"fmt"

	"github.com/mesh-intelligence/launchpad/internal/mongo"
	"github.com/mesh-intelligence/launchpad/internal/sqlite"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// New returns an unattached Store for the named backend.
// Returns ErrBackendUnknown for names other than BackendSQLite and
// BackendMongo.
//
// Example:
//
//	s, err := store.New(types.BackendSQLite)
//	if err != nil {
//	    return err
//	}
//	err = s.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".launchpad-db",
//	})
//	defer s.Detach()
func New(backend string) (types.Store, error) {
	switch backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendMongo:
		return mongo.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("backend %q: %w", backend, types.ErrBackendUnknown)
	}
}

// Open creates the Store named by config.Backend and attaches it.
func Open(config types.Config) (types.Store, error) {
	s, err := New(config.Backend)
	if err != nil {
		return nil, err
	}
	if err := s.Attach(config); err != nil {
		return nil, fmt.Errorf("attaching %s store: %w", config.Backend, err)
	}
	return s, nil
}
