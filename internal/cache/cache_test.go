package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/lepinkainen/nyanko/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPage struct {
	URL  string `json:"url"`
	Body string `json:"body"`
}

// openTestCache opens a cache with a controllable clock and installs it as
// the global cache.
func openTestCache(t *testing.T) (*DB, *time.Time) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("cache.ttl", "1h")

	env := testutil.NewTestEnv(t)
	c, err := Open(env.Path("test_cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	clock := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	oldCache := globalCache
	globalCache = c
	globalCacheOnce = sync.Once{}
	globalCacheOnce.Do(func() {})
	t.Cleanup(func() {
		globalCache = oldCache
		globalCacheOnce = sync.Once{}
	})

	return c, &clock
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("planner")
	require.NoError(t, err)
	assert.Equal(t, Planner, src)

	_, err = ParseSource("guide_cache; DROP TABLE planner_cache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid sources are: guide, planner")
}

func TestGetOrFetch_CacheMissThenHit(t *testing.T) {
	openTestCache(t)

	calls := 0
	fetch := func() (cachedPage, error) {
		calls++
		return cachedPage{URL: "https://maxroll.gg/a", Body: "<html>guide</html>"}, nil
	}

	page, fromCache, err := GetOrFetch(Guide, "https://maxroll.gg/a", fetch)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "<html>guide</html>", page.Body)

	page, fromCache, err = GetOrFetch(Guide, "https://maxroll.gg/a", fetch)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, "<html>guide</html>", page.Body)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetch_SourcesAreSeparate(t *testing.T) {
	openTestCache(t)

	_, _, err := GetOrFetch(Guide, "k", func() (cachedPage, error) { return cachedPage{Body: "guide"}, nil })
	require.NoError(t, err)

	page, fromCache, err := GetOrFetch(Planner, "k", func() (cachedPage, error) { return cachedPage{Body: "planner"}, nil })
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "planner", page.Body)
}

func TestGetOrFetch_FetchErrorNotCached(t *testing.T) {
	c, _ := openTestCache(t)

	_, _, err := GetOrFetch(Guide, "k", func() (cachedPage, error) {
		return cachedPage{}, assert.AnError
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	_, hit, err := c.Get(Guide, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGetOrFetch_RespectsTTL(t *testing.T) {
	c, clock := openTestCache(t)

	require.NoError(t, c.Set(Planner, "k", `{"url":"k","body":"stale"}`))
	*clock = clock.Add(2 * time.Hour)

	page, fromCache, err := GetOrFetch(Planner, "k", func() (cachedPage, error) {
		return cachedPage{URL: "k", Body: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "fresh", page.Body)

	data, hit, err := c.Get(Planner, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, `{"url":"k","body":"fresh"}`, data)
}

func TestGetOrFetch_UnreadableEntryIsRefetched(t *testing.T) {
	c, _ := openTestCache(t)
	require.NoError(t, c.Set(Guide, "k", "not json"))

	page, fromCache, err := GetOrFetch(Guide, "k", func() (cachedPage, error) {
		return cachedPage{Body: "ok"}, nil
	})
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "ok", page.Body)
}

func TestGetOrFetchWithPolicy_SkipsStore(t *testing.T) {
	c, _ := openTestCache(t)

	_, _, err := GetOrFetchWithPolicy(Guide, "empty", func() (cachedPage, error) {
		return cachedPage{URL: "empty"}, nil
	}, func(p cachedPage) bool { return p.Body != "" })
	require.NoError(t, err)

	_, hit, err := c.Get(Guide, "empty", time.Hour)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInvalidate(t *testing.T) {
	c, _ := openTestCache(t)

	require.NoError(t, c.Set(Guide, "a", "{}"))
	require.NoError(t, c.Set(Guide, "b", "{}"))
	require.NoError(t, c.Set(Planner, "c", "{}"))

	rows, err := c.Invalidate(Guide)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	_, hit, err := c.Get(Planner, "c", time.Hour)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestPrune(t *testing.T) {
	c, clock := openTestCache(t)

	require.NoError(t, c.Set(Guide, "old", "{}"))
	require.NoError(t, c.Set(Planner, "old", "{}"))
	*clock = clock.Add(48 * time.Hour)
	require.NoError(t, c.Set(Guide, "new", "{}"))

	n, err := c.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, oldHit, err := c.Get(Guide, "old", 100*time.Hour)
	require.NoError(t, err)
	assert.False(t, oldHit)

	_, newHit, err := c.Get(Guide, "new", 100*time.Hour)
	require.NoError(t, err)
	assert.True(t, newHit)
}

func TestConfiguredTTL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	assert.Equal(t, DefaultCacheTTL, configuredTTL())

	viper.Set("cache.ttl", "2h")
	assert.Equal(t, 2*time.Hour, configuredTTL())

	viper.Set("cache.ttl", "forever")
	assert.Equal(t, DefaultCacheTTL, configuredTTL())

	viper.Set("cache.ttl", "-1h")
	assert.Equal(t, DefaultCacheTTL, configuredTTL())
}

func TestInvalidateCacheCmd(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	require.NoError(t, ResetGlobalCache())
	t.Cleanup(func() { _ = ResetGlobalCache() })

	env := testutil.NewTestEnv(t)
	viper.Set("cache.dbfile", env.Path("cache.db"))

	c, err := GetGlobalCache()
	require.NoError(t, err)
	require.NoError(t, c.Set(Guide, "a", "{}"))
	require.NoError(t, c.Set(Planner, "b", "{}"))

	require.NoError(t, (&InvalidateCacheCmd{Source: "guide"}).Run())
	_, hit, err := c.Get(Guide, "a", time.Hour)
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = c.Get(Planner, "b", time.Hour)
	require.NoError(t, err)
	assert.True(t, hit)

	require.NoError(t, (&InvalidateCacheCmd{Source: "all"}).Run())
	_, hit, err = c.Get(Planner, "b", time.Hour)
	require.NoError(t, err)
	assert.False(t, hit)

	err = (&InvalidateCacheCmd{Source: "tmdb"}).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid sources are: guide, planner")
}
