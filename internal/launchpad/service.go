// Package launchpad implements the data-source adapters behind the launchpad
// endpoints. Each adapter reads or writes the caller's documents in a
// types.Store and returns the live result: a Document, nil when there is
// nothing to serve, or an error-shaped Document for bad requests.
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/loggo"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

var logger = loggo.GetLogger("launchpad.service")

// Error messages returned in error-shaped documents.
const (
	msgMissingUser = "Missing user_id"
	msgMissingBody = "Missing request body"
	msgMissingStep = "Missing step"
)

// Adapter is the signature shared by every data-source call.
type Adapter func(ctx context.Context, req *types.Request) (any, error)

// Service holds the store and the generators used by the adapters.
type Service struct {
	store types.Store
	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator sets the generator for activity ids and resume tokens.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// New returns a Service over an attached store.
func New(store types.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: generateUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generateUUID generates a new UUID v7.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func errorDoc(msg string) types.Document {
	return types.Document{"error": msg}
}

// load returns the document stored under key in collection, or nil when
// there is none.
func (s *Service) load(ctx context.Context, collection, key string) (types.Document, error) {
	c, err := s.store.GetCollection(collection)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, err)
	}
	doc, err := c.Get(ctx, key)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", c.Name(), key, err)
	}
	return doc, nil
}

func (s *Service) save(ctx context.Context, collection, key string, fields types.Document) error {
	c, err := s.store.GetCollection(collection)
	if err != nil {
		return fmt.Errorf("collection %s: %w", collection, err)
	}
	if err := c.Set(ctx, key, fields); err != nil {
		return fmt.Errorf("writing %s/%s: %w", c.Name(), key, err)
	}
	return nil
}

// field loads key from collection and returns its name field as a
// Document, or nil when the document or the field is missing or the field
// is not an object.
func (s *Service) field(ctx context.Context, collection, key, name string) (types.Document, error) {
	doc, err := s.load(ctx, collection, key)
	if err != nil || doc == nil {
		return nil, err
	}
	v, ok := types.AsDocument(doc[name])
	if !ok {
		return nil, nil
	}
	return v.Clone(), nil
}
