package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/lepinkainen/nyanko/cmd/build"
	"github.com/lepinkainen/nyanko/internal/cache"
	"github.com/lepinkainen/nyanko/internal/config"
	"github.com/lepinkainen/nyanko/internal/errors"
	"github.com/spf13/viper"
)

const (
	appName        = "nyanko"
	appDescription = "Import Maxroll Blue Protocol build guides and keep the current build at hand."
)

// CLI represents the complete command structure for the nyanko application
type CLI struct {
	// Global flags
	Overwrite bool          `help:"Overwrite existing markdown and JSON files"`
	SaveFile  string        `help:"Path to the save file holding the current build (defaults to ./checklist.json)"`
	Timeout   time.Duration `help:"Timeout for a single guide or planner request (e.g., 20s)"`
	LogLevel  string        `help:"Log level" enum:"debug,info,warn,error" default:"info"`

	// Datasette flags
	Datasette   bool   `help:"Keep imported builds in the local database" default:"true" negatable:""`
	DatasetteDB string `help:"Path to SQLite database file" default:"./nyanko.db"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 24h)" default:"24h"`
	NoCache     bool   `help:"Always fetch guide and planner pages from the network"`

	Import build.ImportCmd `cmd:"" help:"Import a Maxroll build guide by URL"`
	Show   build.ShowCmd   `cmd:"" help:"Show the saved build summary"`
	Cache  CacheCmd        `cmd:"" help:"Manage the page cache"`
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Clear cached pages for a source"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(slog.LevelInfo)
	initConfig()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		if errors.IsStopProcessingError(err) {
			slog.Info("Stopped", "reason", err)
			return
		}
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	setDefaults()

	viper.SetEnvPrefix("NYANKO")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			os.Exit(0)
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func setDefaults() {
	viper.SetDefault("MarkdownOutputDir", "./markdown/")
	viper.SetDefault("JSONOutputDir", "./json/")
	viper.SetDefault("OverwriteFiles", false)
	viper.SetDefault("SaveFile", "./checklist.json")

	// Datasette defaults
	viper.SetDefault("datasette.enabled", true)
	viper.SetDefault("datasette.mode", "local")
	viper.SetDefault("datasette.dbfile", "./nyanko.db")

	// Cache defaults
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.disabled", false)

	viper.SetDefault("fetch.timeout", "15s")
	viper.SetDefault("fetch.useragent", "NyankoProtocol/1.0 (Blue Protocol build tracker)")
}

func updateGlobalConfig(cli *CLI) {
	if cli.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cli.LogLevel)); err == nil {
			initLogging(level)
		}
	}

	if cli.Overwrite {
		config.SetOverwriteFiles(true)
	}
	config.SetSaveFile(cli.SaveFile)
	config.SetFetchTimeout(cli.Timeout)

	viper.Set("datasette.enabled", cli.Datasette)
	viper.Set("datasette.dbfile", cli.DatasetteDB)

	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)
	if cli.NoCache {
		viper.Set("cache.disabled", true)
	}
}

func initLogging(level slog.Level) {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
