// Package cache keeps fetched guide and planner pages in SQLite so repeated
// imports of the same build do not hit the site again.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

// DefaultCacheTTL is how long a page stays fresh when cache.ttl is unset.
const DefaultCacheTTL = 24 * time.Hour

// Source names a kind of cached page. Each source has its own table.
type Source string

const (
	Guide   Source = "guide"
	Planner Source = "planner"
)

// Sources lists every cache source.
var Sources = []Source{Guide, Planner}

// ParseSource resolves a user-supplied source name.
func ParseSource(name string) (Source, error) {
	for _, s := range Sources {
		if string(s) == name {
			return s, nil
		}
	}
	names := make([]string, len(Sources))
	for i, s := range Sources {
		names[i] = string(s)
	}
	return "", fmt.Errorf("invalid cache source '%s'; valid sources are: %s", name, strings.Join(names, ", "))
}

// table is only ever built from a known Source, never from user input.
func (s Source) table() string {
	return string(s) + "_cache"
}

const pageSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_cached_at ON %[1]s(cached_at);
`

// FetchFunc produces a value on a cache miss.
type FetchFunc[T any] func() (T, error)

// DB is an open page cache.
type DB struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Open opens or creates the cache database at path with a table per source.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), db.Close())
	}

	for _, s := range Sources {
		if _, err := db.Exec(fmt.Sprintf(pageSchema, s.table())); err != nil {
			return nil, errors.Join(fmt.Errorf("failed to create %s table: %w", s.table(), err), db.Close())
		}
	}

	return &DB{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file the cache was opened from.
func (c *DB) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *DB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Get returns the entry for key if it was stored less than ttl ago.
func (c *DB) Get(src Source, key string, ttl time.Duration) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-ttl).Unix()
	var data string
	err := c.db.QueryRow(
		"SELECT data FROM "+src.table()+" WHERE cache_key = ? AND cached_at >= ?", key, cutoff,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query %s cache: %w", src, err)
	}
	return data, true, nil
}

// Set stores data under key, replacing any earlier entry.
func (c *DB) Set(src Source, key, data string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		"INSERT INTO "+src.table()+` (cache_key, data, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET data = excluded.data, cached_at = excluded.cached_at`,
		key, data, c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store %s cache entry: %w", src, err)
	}
	return nil
}

// Invalidate deletes every entry of src and returns how many were removed.
func (c *DB) Invalidate(src Source) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.Exec("DELETE FROM " + src.table())
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s cache: %w", src, err)
	}
	return res.RowsAffected()
}

// Prune deletes entries older than ttl from every source.
func (c *DB) Prune(ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-ttl).Unix()
	var total int64
	for _, s := range Sources {
		res, err := c.db.Exec("DELETE FROM "+s.table()+" WHERE cached_at < ?", cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to prune %s cache: %w", s, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

var (
	globalCache     *DB
	globalCacheOnce sync.Once
	globalCacheErr  error
)

// GetGlobalCache opens the cache configured by cache.dbfile once per process
// and prunes stale pages on first use.
func GetGlobalCache() (*DB, error) {
	globalCacheOnce.Do(func() {
		path := viper.GetString("cache.dbfile")
		if path == "" {
			path = "./cache.db"
		}
		globalCache, globalCacheErr = Open(path)
		if globalCacheErr != nil {
			return
		}
		if n, err := globalCache.Prune(configuredTTL()); err != nil {
			slog.Warn("Failed to prune page cache", "error", err)
		} else if n > 0 {
			slog.Debug("Pruned expired pages", "count", n)
		}
	})
	return globalCache, globalCacheErr
}

// ResetGlobalCache closes the shared cache so the next GetGlobalCache call
// reopens it from the current configuration.
func ResetGlobalCache() error {
	var err error
	if globalCache != nil {
		err = globalCache.Close()
	}
	globalCache, globalCacheErr = nil, nil
	globalCacheOnce = sync.Once{}
	return err
}

// GetOrFetch returns the cached value for key or calls fetch and caches its
// result. The bool reports a cache hit.
func GetOrFetch[T any](src Source, key string, fetch FetchFunc[T]) (T, bool, error) {
	return GetOrFetchWithPolicy(src, key, fetch, nil)
}

// GetOrFetchWithPolicy is GetOrFetch where shouldCache may veto storing a
// fetched value. Fetch errors are returned wrapped and never cached. A cache
// that cannot be opened or written only costs a refetch.
func GetOrFetchWithPolicy[T any](src Source, key string, fetch FetchFunc[T], shouldCache func(T) bool) (T, bool, error) {
	var zero T

	c, err := GetGlobalCache()
	if err != nil {
		slog.Warn("Page cache unavailable, fetching directly", "error", err)
		v, err := fetch()
		return v, false, err
	}

	ttl := configuredTTL()
	if data, hit, err := c.Get(src, key, ttl); err != nil {
		slog.Warn("Page cache lookup failed", "source", src, "key", key, "error", err)
	} else if hit {
		var v T
		if err := json.Unmarshal([]byte(data), &v); err == nil {
			slog.Debug("Cache hit", "source", src, "key", key)
			return v, true, nil
		}
		slog.Warn("Discarding unreadable cache entry", "source", src, "key", key)
	}

	v, err := fetch()
	if err != nil {
		return zero, false, fmt.Errorf("failed to fetch data: %w", err)
	}
	if shouldCache != nil && !shouldCache(v) {
		return v, false, nil
	}

	data, err := json.Marshal(v)
	if err == nil {
		err = c.Set(src, key, string(data))
	}
	if err != nil {
		slog.Warn("Failed to cache page", "source", src, "key", key, "error", err)
	}
	return v, false, nil
}

// configuredTTL reads cache.ttl, falling back to DefaultCacheTTL.
func configuredTTL() time.Duration {
	raw := viper.GetString("cache.ttl")
	if raw == "" {
		return DefaultCacheTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		slog.Warn("Invalid cache TTL, using default", "ttl", raw, "error", err)
		return DefaultCacheTTL
	}
	return ttl
}
