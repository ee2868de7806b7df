package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath}
}

// Connect opens the database file, creating it if needed.
func (s *SQLiteStore) Connect(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", s.dbPath, err)
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.Join(fmt.Errorf("failed to open database %s: %w", s.dbPath, err), db.Close())
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) CreateTable(ctx context.Context, schema string) error {
	if s.db == nil {
		return s.notConnected()
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Upsert writes rows in one transaction. Columns are the union of every
// row's keys; a row missing a column stores NULL there.
func (s *SQLiteStore) Upsert(ctx context.Context, table string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	if s.db == nil {
		return s.notConnected()
	}

	cols := make(map[string]struct{})
	for _, row := range rows {
		for col := range row {
			cols[col] = struct{}{}
		}
	}
	columns := slices.Sorted(maps.Keys(cols))

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer func() { _ = stmt.Close() }()

	values := make([]any, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			values[i] = row[col]
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// Query runs a read query against the local database.
func (s *SQLiteStore) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.db == nil {
		return nil, s.notConnected()
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) notConnected() error {
	return fmt.Errorf("database %s is not connected", s.dbPath)
}
