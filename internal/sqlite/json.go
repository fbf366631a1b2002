package sqlite

import (
	"encoding/json"
	"path/filepath"
)

// documentJSON is one line of a collection's JSONL file.
type documentJSON struct {
	Key       string          `json:"key"`
	Doc       json.RawMessage `json:"doc"`
	UpdatedAt string          `json:"updated_at"`
}

// jsonlFile returns the name of the JSONL file backing collection.
func jsonlFile(collection string) string {
	return collection + ".jsonl"
}

func jsonlPath(dataDir, collection string) string {
	return filepath.Join(dataDir, jsonlFile(collection))
}
