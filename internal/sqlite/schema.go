package sqlite

// Schema DDL. Every collection shares the documents table; the document body
// is stored as JSON text.
const (
	createDocuments = `CREATE TABLE documents (
    collection TEXT NOT NULL,
    doc_key TEXT NOT NULL,
    body TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (collection, doc_key)
);`
)

// Index DDL for common queries.
const (
	idxDocumentsUpdated = `CREATE INDEX idx_documents_updated ON documents(collection, updated_at);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createDocuments,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxDocumentsUpdated,
}
