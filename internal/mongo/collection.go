package mongo

import (
	"context"
	"regexp"

	"github.com/juju/errors"
	"github.com/juju/mgo/v3"
	"github.com/juju/mgo/v3/bson"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// Collection implements types.Collection on one MongoDB collection.
// mgo has no context support; each call checks ctx before touching the
// server.
type Collection struct {
	name    string
	backend *Backend
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Get returns the document whose _id is key, without the _id field.
func (c *Collection) Get(ctx context.Context, key string) (types.Document, error) {
	if key == "" {
		return nil, types.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session, coll, err := c.backend.collection(c.name)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return findOne(coll, key)
}

// Set upserts the document whose _id is key, merging fields with $set.
func (c *Collection) Set(ctx context.Context, key string, fields types.Document) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	if fields == nil {
		return types.ErrInvalidData
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	session, coll, err := c.backend.collection(c.name)
	if err != nil {
		return err
	}
	defer session.Close()

	set := bson.M{}
	for k, v := range fields.Clone() {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	update := bson.M{"$setOnInsert": bson.M{"_id": key}}
	if len(set) > 0 {
		update = bson.M{"$set": set}
	}
	if _, err := coll.UpsertId(key, update); err != nil {
		return errors.Annotatef(err, "cannot write %s/%s", c.name, key)
	}
	return nil
}

// Push appends value to the array in field with $push, creating the document
// as needed. Returns ErrInvalidField if field holds a non-array value.
func (c *Collection) Push(ctx context.Context, key, field string, value any) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	if field == "" || field == "_id" {
		return types.ErrInvalidField
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	session, coll, err := c.backend.collection(c.name)
	if err != nil {
		return err
	}
	defer session.Close()

	existing, err := findOne(coll, key)
	switch {
	case errors.Is(err, types.ErrNotFound):
	case err != nil:
		return errors.Trace(err)
	default:
		if v, ok := existing[field]; ok && v != nil {
			if _, isList := v.([]any); !isList {
				return errors.Annotatef(types.ErrInvalidField, "%s.%s holds %T", c.name, field, v)
			}
		}
	}

	if d, ok := types.AsDocument(value); ok {
		value = map[string]any(d.Clone())
	}
	if _, err := coll.UpsertId(key, bson.M{"$push": bson.M{field: value}}); err != nil {
		return errors.Annotatef(err, "cannot push to %s/%s", c.name, key)
	}
	return nil
}

// Delete removes the document whose _id is key.
func (c *Collection) Delete(ctx context.Context, key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	session, coll, err := c.backend.collection(c.name)
	if err != nil {
		return err
	}
	defer session.Close()

	err = coll.RemoveId(key)
	if err == mgo.ErrNotFound {
		return types.ErrNotFound
	}
	if err != nil {
		return errors.Annotatef(err, "cannot delete %s/%s", c.name, key)
	}
	return nil
}

// Search returns documents where any of fields matches text as a
// case-insensitive substring, ordered by _id.
func (c *Collection) Search(ctx context.Context, text string, fields ...string) ([]types.Document, error) {
	query, err := searchQuery(text, fields)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session, coll, err := c.backend.collection(c.name)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	var raw []bson.M
	if err := coll.Find(query).Sort("_id").All(&raw); err != nil {
		return nil, errors.Annotatef(err, "cannot search %s", c.name)
	}
	out := make([]types.Document, 0, len(raw))
	for _, m := range raw {
		out = append(out, toDocument(m))
	}
	return out, nil
}

// searchQuery builds the $or of case-insensitive regex matches on fields.
func searchQuery(text string, fields []string) (bson.M, error) {
	if len(fields) == 0 {
		return nil, types.ErrInvalidField
	}
	pattern := bson.RegEx{Pattern: regexp.QuoteMeta(text), Options: "i"}
	or := make([]bson.M, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			return nil, types.ErrInvalidField
		}
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}, nil
}

func findOne(coll *mgo.Collection, key string) (types.Document, error) {
	var raw bson.M
	err := coll.FindId(key).One(&raw)
	if err == mgo.ErrNotFound {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, errors.Annotatef(err, "cannot read %s", key)
	}
	return toDocument(raw), nil
}
