package types

import (
	"context"
	"errors"
)

// Store defines the interface for backend-agnostic document storage.
// Callers attach to a backend, access collections by name, and detach when
// done.
type Store interface {
	// GetCollection returns the Collection for the given name.
	// Returns ErrCollectionNotFound if the name is not a standard collection.
	GetCollection(name string) (Collection, error)

	// Attach connects the Store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations on collections return ErrStoreDetached.
	Detach() error
}

// Collection holds one document per key. For per-user collections the key is
// the user_id.
type Collection interface {
	// Name returns the collection name passed to Store.GetCollection.
	Name() string

	// Get returns the document stored under key.
	// Returns ErrNotFound if no document exists.
	Get(ctx context.Context, key string) (Document, error)

	// Set upserts the document under key, merging fields into the top level
	// of any existing document.
	Set(ctx context.Context, key string, fields Document) error

	// Push appends value to the array stored in field, creating the document
	// and the array as needed. Returns ErrInvalidField if field holds a
	// non-array value.
	Push(ctx context.Context, key, field string, value any) error

	// Delete removes the document stored under key.
	// Returns ErrNotFound if no document exists.
	Delete(ctx context.Context, key string) error

	// Search returns documents where any of the top-level string fields
	// contains text, compared case-insensitively. Results are ordered by key.
	// Returns ErrInvalidField if no field is given.
	Search(ctx context.Context, text string, fields ...string) ([]Document, error)
}

// Standard collection names for Store.GetCollection.
const (
	CollectionConfigs      = "configs"
	CollectionHomeData     = "home_data"
	CollectionWellness     = "wellness"
	CollectionOnboarding   = "onboarding"
	CollectionProfiles     = "user_profiles"
	CollectionGoals        = "goals"
	CollectionTrackers     = "trackers"
	CollectionHRA          = "hra"
	CollectionActivities   = "activities"
	CollectionSearch       = "search"
	CollectionNavigation   = "navigation"
	CollectionUserProgress = "user_progress"
)

// StandardCollectionNames lists all standard collection names for enumeration.
var StandardCollectionNames = []string{
	CollectionConfigs,
	CollectionHomeData,
	CollectionWellness,
	CollectionOnboarding,
	CollectionProfiles,
	CollectionGoals,
	CollectionTrackers,
	CollectionHRA,
	CollectionActivities,
	CollectionSearch,
	CollectionNavigation,
	CollectionUserProgress,
}

// IsStandardCollection reports whether name is one of StandardCollectionNames.
func IsStandardCollection(name string) bool {
	for _, n := range StandardCollectionNames {
		if n == name {
			return true
		}
	}
	return false
}

// Store lifecycle errors.
var (
	ErrStoreDetached      = errors.New("store is detached")
	ErrAlreadyAttached    = errors.New("store is already attached")
	ErrCollectionNotFound = errors.New("collection not found")
)

// Collection operation errors.
var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidKey   = errors.New("invalid document key")
	ErrInvalidData  = errors.New("invalid document data")
	ErrInvalidField = errors.New("invalid field")
)
