package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// Collection implements types.Collection over the rows of one collection in
// the documents table.
type Collection struct {
	name    string
	backend *Backend
}

func newCollection(b *Backend, name string) *Collection {
	return &Collection{name: name, backend: b}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Get returns the document stored under key.
// Returns ErrInvalidKey if key is empty, ErrNotFound if not found.
func (c *Collection) Get(ctx context.Context, key string) (types.Document, error) {
	if key == "" {
		return nil, types.ErrInvalidKey
	}
	c.backend.mu.RLock()
	defer c.backend.mu.RUnlock()

	if !c.backend.attached {
		return nil, types.ErrStoreDetached
	}
	return c.getLocked(ctx, key)
}

// Set upserts the document under key, merging fields into its top level.
func (c *Collection) Set(ctx context.Context, key string, fields types.Document) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	if fields == nil {
		return types.ErrInvalidData
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if !c.backend.attached {
		return types.ErrStoreDetached
	}

	doc, err := c.getLocked(ctx, key)
	if errors.Is(err, types.ErrNotFound) {
		doc = types.Document{}
	} else if err != nil {
		return err
	}
	for k, v := range fields.Clone() {
		doc[k] = v
	}
	if err := c.putLocked(ctx, key, doc); err != nil {
		return err
	}
	return c.backend.persist(c.name, "set")
}

// Push appends value to the array in field, creating the document or the
// array as needed. Returns ErrInvalidField if field is empty or holds a
// non-array value.
func (c *Collection) Push(ctx context.Context, key, field string, value any) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	if field == "" {
		return types.ErrInvalidField
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if !c.backend.attached {
		return types.ErrStoreDetached
	}

	doc, err := c.getLocked(ctx, key)
	if errors.Is(err, types.ErrNotFound) {
		doc = types.Document{}
	} else if err != nil {
		return err
	}

	var list []any
	switch existing := doc[field].(type) {
	case nil:
	case []any:
		list = existing
	default:
		return fmt.Errorf("%s.%s holds %T: %w", c.name, field, existing, types.ErrInvalidField)
	}
	if d, ok := types.AsDocument(value); ok {
		value = map[string]any(d.Clone())
	}
	doc[field] = append(list, value)

	if err := c.putLocked(ctx, key, doc); err != nil {
		return err
	}
	return c.backend.persist(c.name, "push")
}

// Delete removes the document stored under key.
// Returns ErrNotFound if no document exists.
func (c *Collection) Delete(ctx context.Context, key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	c.backend.mu.Lock()
	defer c.backend.mu.Unlock()

	if !c.backend.attached {
		return types.ErrStoreDetached
	}

	res, err := c.backend.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND doc_key = ?`, c.name, key)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", c.name, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", c.name, key, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return c.backend.persist(c.name, "delete")
}

// Search returns the documents where any of fields contains text,
// compared case-insensitively with Unicode case folding, ordered by key. Fields name top-level string
// values. Returns ErrInvalidField if no field is given.
func (c *Collection) Search(ctx context.Context, text string, fields ...string) ([]types.Document, error) {
	if len(fields) == 0 {
		return nil, types.ErrInvalidField
	}
	c.backend.mu.RLock()
	defer c.backend.mu.RUnlock()

	if !c.backend.attached {
		return nil, types.ErrStoreDetached
	}

	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	conds := make([]string, len(fields))
	args := []any{c.name}
	for i, f := range fields {
		if f == "" {
			return nil, types.ErrInvalidField
		}
		conds[i] = foldFunc + `(json_extract(body, ?)) LIKE ? ESCAPE '\'`
		args = append(args, "$."+quoteJSONPath(f), pattern)
	}
	query := `SELECT body FROM documents WHERE collection = ? AND (` +
		strings.Join(conds, " OR ") + `) ORDER BY doc_key`

	rows, err := c.backend.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.name, err)
	}
	defer rows.Close()

	var out []types.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", c.name, err)
		}
		doc, err := decodeBody(body)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", c.name, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.name, err)
	}
	return out, nil
}

// getLocked reads one document. The caller must hold c.backend.mu.
func (c *Collection) getLocked(ctx context.Context, key string) (types.Document, error) {
	var body string
	err := c.backend.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND doc_key = ?`, c.name, key,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", c.name, key, err)
	}
	doc, err := decodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", c.name, key, err)
	}
	return doc, nil
}

// putLocked writes one document. The caller must hold c.backend.mu write
// lock.
func (c *Collection) putLocked(ctx context.Context, key string, doc types.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", c.name, key, types.ErrInvalidData)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = c.backend.db.ExecContext(ctx, `INSERT INTO documents (collection, doc_key, body, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(collection, doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		c.name, key, string(body), now)
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", c.name, key, err)
	}
	return nil
}

func decodeBody(body string) (types.Document, error) {
	var doc types.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = types.Document{}
	}
	return doc, nil
}

// escapeLike escapes the LIKE wildcards in s using backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// quoteJSONPath quotes a field name as a JSON path member so keys with dots
// or spaces address a single top-level member.
func quoteJSONPath(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}
