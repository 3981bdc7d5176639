// Package store archives document revisions in a SQLite database, one row
// per save, so an analysis can be rolled back or compared over time.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"faulttree/fta/internal/tree"
)

const schema = `
CREATE TABLE IF NOT EXISTS revisions (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    date       TEXT NOT NULL,
    mode       TEXT NOT NULL,
    node_count INTEGER NOT NULL,
    saved_at   INTEGER NOT NULL,
    payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_revisions_saved_at ON revisions(saved_at DESC);
`

// DB wraps a SQLite revision archive.
type DB struct {
	conn *sql.DB
	Path string
}

// Open opens (or creates) the archive with WAL mode and foreign keys enabled.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Revision is one archived document. Payload is the full document JSON and
// is only populated by Get.
type Revision struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Mode      string `json:"mode"`
	NodeCount int    `json:"node_count"`
	SavedAt   int64  `json:"saved_at"` // Unix millis
	Payload   []byte `json:"-"`
}

// Save archives the document and returns the new revision id.
func (d *DB) Save(doc *tree.Document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	id := uuid.NewString()
	_, err = d.conn.Exec(`
		INSERT INTO revisions (id, title, date, mode, node_count, saved_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, doc.Title, doc.Date, doc.Mode, doc.Tree.Count(), time.Now().UnixMilli(), string(payload))
	if err != nil {
		return "", fmt.Errorf("inserting revision: %w", err)
	}
	return id, nil
}

// List returns revision metadata newest-first, up to limit rows.
func (d *DB) List(limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.conn.Query(`
		SELECT id, title, date, mode, node_count, saved_at
		FROM revisions ORDER BY saved_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.Title, &r.Date, &r.Mode, &r.NodeCount, &r.SavedAt); err != nil {
			return nil, err
		}
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}

// Get returns a revision by full id or unique id prefix, payload included.
func (d *DB) Get(idOrPrefix string) (*Revision, error) {
	rows, err := d.conn.Query(`
		SELECT id, title, date, mode, node_count, saved_at, payload
		FROM revisions WHERE id LIKE ? LIMIT 2
	`, idOrPrefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Revision
	for rows.Next() {
		var r Revision
		var payload string
		if err := rows.Scan(&r.ID, &r.Title, &r.Date, &r.Mode, &r.NodeCount, &r.SavedAt, &payload); err != nil {
			return nil, err
		}
		r.Payload = []byte(payload)
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("revision not found: %s", idOrPrefix)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous revision prefix %q, use a longer id", idOrPrefix)
	}
}

// Document decodes the archived payload back into a document.
func (r *Revision) Document() (*tree.Document, error) {
	return tree.Parse(r.Payload)
}
