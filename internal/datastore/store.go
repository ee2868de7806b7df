// Package datastore records imported builds in a local SQLite file or a
// remote Datasette instance.
package datastore

import "context"

// Store is a table-oriented sink for imported builds. Rows are keyed by the
// table's primary key; writing an existing key replaces the row.
type Store interface {
	Connect(ctx context.Context) error
	CreateTable(ctx context.Context, schema string) error
	Upsert(ctx context.Context, table string, rows []map[string]any) error
	Close() error
}
