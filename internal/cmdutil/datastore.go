package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/nyanko/internal/datastore"
	"github.com/spf13/viper"
)

// DatastoreName is the Datasette database that remote inserts target.
const DatastoreName = "nyanko"

// OpenDatastore connects to the configured store: the remote Datasette
// instance when datasette.mode is "remote", the local SQLite file otherwise.
func OpenDatastore(ctx context.Context) (datastore.Store, error) {
	var store datastore.Store
	if viper.GetString("datasette.mode") == "remote" {
		remoteURL := viper.GetString("datasette.remote_url")
		if remoteURL == "" {
			return nil, fmt.Errorf("datasette.remote_url is required in remote mode")
		}
		store = datastore.NewDatasetteClient(remoteURL, DatastoreName, viper.GetString("datasette.api_token"))
	} else {
		store = datastore.NewSQLiteStore(LocalDatastorePath())
	}

	if err := store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to datastore: %w", err)
	}
	return store, nil
}

// LocalDatastorePath returns the configured SQLite file for imported builds.
func LocalDatastorePath() string {
	if p := viper.GetString("datasette.dbfile"); p != "" {
		return p
	}
	return "./nyanko.db"
}

// WriteToDatastore flattens items with Row and upserts them into table.
// It does nothing when datasette output is disabled.
func WriteToDatastore[T any](ctx context.Context, items []T, schema, table string) (err error) {
	if !viper.GetBool("datasette.enabled") {
		slog.Debug("Datasette output disabled, skipping", "table", table)
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	store, err := OpenDatastore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	rows := make([]map[string]any, len(items))
	for i, item := range items {
		if rows[i], err = Row(item); err != nil {
			return err
		}
	}

	if err := store.CreateTable(ctx, schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}
	if err := store.Upsert(ctx, table, rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", table, err)
	}

	slog.Info("Wrote to datastore", "table", table, "count", len(rows))
	return nil
}
