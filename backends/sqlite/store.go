// Package sqlite provides a persistent index backend on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/botirk38/softcosine/logger"
	"github.com/botirk38/softcosine/types"
)

// Ensure Store implements the interface.
var _ types.IndexBackend = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	position INTEGER PRIMARY KEY,
	vector   TEXT NOT NULL,
	norm     REAL NOT NULL
)`

// Store keeps index documents in a SQLite table ordered by position.
// Vectors are stored as JSON and norms as REAL, both of which round-trip exactly.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at config.ConnectionString.
func NewStore(config types.BackendConfig) (*Store, error) {
	path := config.ConnectionString
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite backend needs a database path", types.ErrConfiguration)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Positions are assigned from COUNT(*); a single connection keeps appends serial
	// and makes ":memory:" databases visible to every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}

	logger.Debug("sqlite: opened %s", path)
	return &Store{db: db, path: path}, nil
}

// Append inserts doc at the next free position
func (s *Store) Append(ctx context.Context, doc types.StoredDocument) (int, error) {
	vector, err := json.Marshal(doc.Vector)
	if err != nil {
		return 0, fmt.Errorf("marshalling vector: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var pos int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&pos); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO documents (position, vector, norm) VALUES (?, ?, ?)",
		pos, string(vector), doc.Norm); err != nil {
		return 0, fmt.Errorf("inserting document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing document: %w", err)
	}
	return pos, nil
}

// Get retrieves the document at pos
func (s *Store) Get(ctx context.Context, pos int) (types.StoredDocument, bool, error) {
	var vector string
	var norm float64
	err := s.db.QueryRowContext(ctx,
		"SELECT vector, norm FROM documents WHERE position = ?", pos).Scan(&vector, &norm)
	if err == sql.ErrNoRows {
		return types.StoredDocument{}, false, nil
	}
	if err != nil {
		return types.StoredDocument{}, false, fmt.Errorf("reading document %d: %w", pos, err)
	}

	doc, err := decode(vector, norm)
	if err != nil {
		return types.StoredDocument{}, false, err
	}
	return doc, true, nil
}

// Len returns the number of stored documents
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Range iterates over the documents ordered by position.
// Rows are read fully before fn is called so fn may use the store.
func (s *Store) Range(ctx context.Context, fn func(pos int, doc types.StoredDocument) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT position, vector, norm FROM documents ORDER BY position")
	if err != nil {
		return fmt.Errorf("querying documents: %w", err)
	}

	type row struct {
		pos    int
		vector string
		norm   float64
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.pos, &r.vector, &r.norm); err != nil {
			rows.Close()
			return fmt.Errorf("scanning document: %w", err)
		}
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating documents: %w", err)
	}
	rows.Close()

	for _, r := range all {
		doc, err := decode(r.vector, r.norm)
		if err != nil {
			return err
		}
		if err := fn(r.pos, doc); err != nil {
			return err
		}
	}
	return nil
}

// Flush deletes every document
func (s *Store) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func decode(vector string, norm float64) (types.StoredDocument, error) {
	var v types.SparseVector
	if err := json.Unmarshal([]byte(vector), &v); err != nil {
		return types.StoredDocument{}, fmt.Errorf("unmarshalling vector: %w", err)
	}
	return types.StoredDocument{Vector: v, Norm: norm}, nil
}
