// Package mongo implements the MongoDB storage backend for launchpad.
// Each standard collection maps to a MongoDB collection of the same name;
// the document key is stored as _id.
package mongo

import (
	"sync"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/mgo/v3"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

var logger = loggo.GetLogger("launchpad.mongo")

// Backend implements types.Store on a MongoDB database.
type Backend struct {
	mu          sync.RWMutex
	attached    bool
	config      types.Config
	session     *mgo.Session
	collections map[string]*Collection
}

// NewBackend creates a new MongoDB backend instance.
// The backend is not attached; call Attach with a Config to connect.
func NewBackend() *Backend {
	return &Backend{
		collections: make(map[string]*Collection),
	}
}

// dialInfo builds the mgo dial parameters for config.
func dialInfo(config types.MongoConfig) *mgo.DialInfo {
	return &mgo.DialInfo{
		Addrs:    config.Hosts,
		Database: config.GetDatabase(),
		Username: config.Username,
		Password: config.Password,
		Timeout:  config.GetTimeout(),
	}
}

// Attach connects to the servers named in config.MongoConfig.
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
	if config.Backend != types.BackendMongo {
		return errors.Annotatef(types.ErrBackendUnknown, "mongo backend cannot attach %q", config.Backend)
	}

	info := dialInfo(config.MongoConfig)
	session, err := mgo.DialWithInfo(info)
	if err != nil {
		return errors.Annotatef(err, "cannot connect to mongo at %v", info.Addrs)
	}
	session.SetMode(mgo.Monotonic, true)

	b.session = session
	b.config = config
	b.attached = true
	for _, name := range types.StandardCollectionNames {
		b.collections[name] = &Collection{name: name, backend: b}
	}

	logger.Infof("attached mongo store %s at %v", info.Database, info.Addrs)
	return nil
}

// Detach closes the session. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.session != nil {
		b.session.Close()
		b.session = nil
	}
	b.attached = false
	b.collections = make(map[string]*Collection)
	logger.Debugf("detached mongo store")
	return nil
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

// collection returns a copy of the session and the mgo collection for name.
// The caller must close the session.
func (b *Backend) collection(name string) (*mgo.Session, *mgo.Collection, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, nil, types.ErrStoreDetached
	}
	s := b.session.Copy()
	return s, s.DB(b.config.MongoConfig.GetDatabase()).C(name), nil
}
