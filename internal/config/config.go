package config

import (
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing markdown and JSON files should be overwritten
	OverwriteFiles bool
	// SaveFile is the JSON record holding the currently imported build
	SaveFile string
	// FetchTimeout bounds a single guide or planner page request
	FetchTimeout time.Duration
	// UserAgent is sent with every page request
	UserAgent string
)

const (
	defaultSaveFile     = "./checklist.json"
	defaultFetchTimeout = 15 * time.Second
	defaultUserAgent    = "NyankoProtocol/1.0 (Blue Protocol build tracker)"
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("MarkdownOutputDir", "./markdown/")
	viper.SetDefault("JSONOutputDir", "./json/")
	viper.SetDefault("OverwriteFiles", false)
	viper.SetDefault("SaveFile", defaultSaveFile)
	viper.SetDefault("fetch.timeout", defaultFetchTimeout.String())
	viper.SetDefault("fetch.useragent", defaultUserAgent)

	// Get values from viper
	OverwriteFiles = viper.GetBool("OverwriteFiles")
	SaveFile = viper.GetString("SaveFile")
	FetchTimeout = viper.GetDuration("fetch.timeout")
	if FetchTimeout <= 0 {
		FetchTimeout = defaultFetchTimeout
	}
	UserAgent = viper.GetString("fetch.useragent")
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// SetSaveFile overrides the save file path when path is not empty
func SetSaveFile(path string) {
	if path != "" {
		SaveFile = path
	}
}

// SetFetchTimeout overrides the page request timeout when d is positive
func SetFetchTimeout(d time.Duration) {
	if d > 0 {
		FetchTimeout = d
	}
}
