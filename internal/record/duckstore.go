package record

import (
	"database/sql"
	"fmt"

	"github.com/marcboeker/go-duckdb"
)

// DuckStore persists upload records in a DuckDB file.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

var _ Recorder = (*DuckStore)(nil)

// NewDuckStore opens (or creates) the record database at dbPath.
func NewDuckStore(dbPath string) (*DuckStore, error) {
	connector, err := duckdb.NewConnector(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("opening record database: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS uploads (
			key         VARCHAR PRIMARY KEY,
			name        VARCHAR NOT NULL,
			size        BIGINT NOT NULL,
			size_str    VARCHAR,
			url         VARCHAR,
			uploaded_at VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating uploads table: %w", err)
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Write inserts one record under key.
func (s *DuckStore) Write(key string, rec *Record) error {
	_, err := s.db.Exec(
		`INSERT INTO uploads (key, name, size, size_str, url, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		key, rec.Name, rec.Size, rec.SizeStr, rec.URL, rec.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("writing upload record: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first.
func (s *DuckStore) List(limit int) ([]*Record, error) {
	rows, err := s.db.Query(
		`SELECT name, size, size_str, url, uploaded_at FROM uploads ORDER BY uploaded_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing upload records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(&rec.Name, &rec.Size, &rec.SizeStr, &rec.URL, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("scanning upload record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Close closes the underlying database.
func (s *DuckStore) Close() error {
	return s.db.Close()
}
