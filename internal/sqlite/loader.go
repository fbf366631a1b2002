package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// loadAllJSONL reads the JSONL file of every collection from dataDir and
// inserts the records into the documents table. Loading is transactional:
// all succeed or the database remains empty. Malformed lines, records without
// a key and records whose doc is not a JSON object are skipped. Unknown
// fields are ignored. When a key repeats, the last line wins.
func loadAllJSONL(db *sql.DB, dataDir string, collections []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO documents (collection, doc_key, body, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(collection, doc_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer stmt.Close()

	for _, collection := range collections {
		records, err := readJSONL(jsonlPath(dataDir, collection))
		if err != nil {
			return fmt.Errorf("reading %s: %w", jsonlFile(collection), err)
		}
		loaded := 0
		for _, rec := range records {
			doc, ok := decodeRecord(rec)
			if !ok {
				continue
			}
			if _, err := stmt.Exec(collection, doc.Key, string(doc.Doc), doc.UpdatedAt); err != nil {
				return fmt.Errorf("loading %s into %s: %w", doc.Key, collection, err)
			}
			loaded++
		}
		if loaded > 0 {
			logger.Debugf("loaded %d documents into %s", loaded, collection)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// decodeRecord validates one JSONL line. It reports false for records that
// must be skipped.
func decodeRecord(rec json.RawMessage) (documentJSON, bool) {
	var doc documentJSON
	if err := json.Unmarshal(rec, &doc); err != nil {
		return doc, false
	}
	if doc.Key == "" || len(doc.Doc) == 0 {
		return doc, false
	}
	var obj map[string]any
	if err := json.Unmarshal(doc.Doc, &obj); err != nil || obj == nil {
		return doc, false
	}
	if doc.UpdatedAt == "" {
		doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return doc, true
}
