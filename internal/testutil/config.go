package testutil

import (
	"testing"
	"time"

	"github.com/lepinkainen/nyanko/internal/config"
	"github.com/spf13/viper"
)

// Settings mirrors the config package globals that tests change.
type Settings struct {
	OverwriteFiles bool
	SaveFile       string
	FetchTimeout   time.Duration
	UserAgent      string
}

// CurrentSettings reads the config package globals.
func CurrentSettings() Settings {
	return Settings{
		OverwriteFiles: config.OverwriteFiles,
		SaveFile:       config.SaveFile,
		FetchTimeout:   config.FetchTimeout,
		UserAgent:      config.UserAgent,
	}
}

// Apply writes s back into the config package globals.
func (s Settings) Apply() {
	config.OverwriteFiles = s.OverwriteFiles
	config.SaveFile = s.SaveFile
	config.FetchTimeout = s.FetchTimeout
	config.UserAgent = s.UserAgent
}

// SetTestConfig resets viper and applies settings that keep every write
// inside env. edits run before the settings are applied. The previous
// state comes back when the test completes.
func SetTestConfig(t *testing.T, env *TestEnv, edits ...func(*Settings)) {
	t.Helper()

	prev := CurrentSettings()
	viper.Reset()
	t.Cleanup(func() {
		prev.Apply()
		viper.Reset()
	})

	s := Settings{
		OverwriteFiles: true,
		SaveFile:       env.Path("checklist.json"),
		FetchTimeout:   2 * time.Second,
		UserAgent:      "nyanko-test",
	}
	for _, edit := range edits {
		edit(&s)
	}
	s.Apply()
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset; a nil override reads back as the zero value
		if hadValue {
			viper.Set(key, oldValue)
		} else {
			viper.Set(key, nil)
		}
	})
}

// SetupTestCache points the page cache at a database inside env.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	env.MkdirAll("cache")
	SetViperValue(t, "cache.dbfile", env.Path("cache", "test-cache.db"))
	SetViperValue(t, "cache.ttl", "24h")

	return env.Path("cache")
}

// SetupDatastore enables the local build database inside env and returns its path.
func SetupDatastore(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("nyanko.db")
	SetViperValue(t, "datasette.enabled", true)
	SetViperValue(t, "datasette.mode", "local")
	SetViperValue(t, "datasette.dbfile", dbPath)

	return dbPath
}
