package cmdutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AttachmentsDir is the subdirectory of the markdown output that holds gear images.
const AttachmentsDir = "attachments"

// BaseCommandConfig holds the output locations of an import
type BaseCommandConfig struct {
	OutputDir      string
	ConfigKey      string
	JSONOutput     string
	WriteJSON      bool
	WriteMarkdown  bool
	DownloadImages bool
	Overwrite      bool
}

// SetupOutputDir resolves the markdown and JSON paths against the configured
// base directories and creates the directories that will be written to.
func SetupOutputDir(cfg *BaseCommandConfig) error {
	// If flag wasn't provided, try to get value from config
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = viper.GetString(cfg.ConfigKey + ".output")
	}
	if outputDir == "" && cfg.ConfigKey != "" {
		// Fall back to using the config key as the subdirectory name
		outputDir = cfg.ConfigKey
	}

	baseDir := viper.GetString("markdownoutputdir")
	if baseDir == "" {
		baseDir = "markdown"
	}
	cfg.OutputDir = filepath.Clean(filepath.Join(baseDir, outputDir))

	if cfg.WriteJSON && cfg.JSONOutput == "" {
		jsonBaseDir := viper.GetString("jsonoutputdir")
		if jsonBaseDir == "" {
			jsonBaseDir = "json"
		}
		cfg.JSONOutput = filepath.Clean(filepath.Join(jsonBaseDir, cfg.ConfigKey+".json"))
	}

	var dirs []string
	if cfg.WriteMarkdown || cfg.DownloadImages {
		dirs = append(dirs, cfg.OutputDir)
	}
	if cfg.DownloadImages {
		dirs = append(dirs, filepath.Join(cfg.OutputDir, AttachmentsDir))
	}
	if cfg.WriteJSON {
		dirs = append(dirs, filepath.Dir(cfg.JSONOutput))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	return nil
}
