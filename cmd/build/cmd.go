// Package build implements the import and show commands for Maxroll Blue
// Protocol build guides.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lepinkainen/nyanko/internal/cmdutil"
	"github.com/lepinkainen/nyanko/internal/config"
	"github.com/lepinkainen/nyanko/internal/errors"
	"github.com/lepinkainen/nyanko/internal/fileutil"
	"github.com/lepinkainen/nyanko/internal/guide"
	"github.com/lepinkainen/nyanko/internal/ratelimit"
	"github.com/lepinkainen/nyanko/internal/savefile"
	"github.com/lepinkainen/nyanko/internal/tui"
	"github.com/spf13/viper"
)

const configKey = "builds"

// Injection points for tests.
var (
	// siteLimiter is shared by page fetches and gear image downloads.
	siteLimiter = ratelimit.Every("maxroll.gg", 500*time.Millisecond, 2)
	newFetcher  = func() guide.Fetcher {
		return guide.NewHTTPFetcher(
			guide.WithUserAgent(config.UserAgent),
			guide.WithTimeout(config.FetchTimeout),
			guide.WithLimiter(siteLimiter),
		)
	}
	plannerBaseURL           = guide.DefaultPlannerBaseURL
	imageClient              = &http.Client{Timeout: 30 * time.Second}
	selectBuild              = tui.SelectBuild
	now                      = time.Now
	stdout         io.Writer = os.Stdout
)

// ImportCmd imports a build guide by URL.
type ImportCmd struct {
	URL            string `arg:"" help:"Maxroll build guide URL (e.g. https://maxroll.gg/blue-protocol/build-guides/...)"`
	JSON           bool   `help:"Write the imported build to JSON"`
	JSONOutput     string `help:"Path to JSON output file (defaults to json/builds.json)"`
	Markdown       bool   `help:"Write an Obsidian note for the build"`
	Output         string `short:"o" help:"Subdirectory under markdown output directory for build notes" default:"builds"`
	DownloadImages bool   `help:"Download gear icons next to the note"`
}

// ShowCmd prints the saved build summary.
type ShowCmd struct {
	Pick bool `help:"Choose among previously imported builds in the local database"`
}

// ImportOptions configures a single import.
type ImportOptions struct {
	URL     string
	NoCache bool
	cmdutil.BaseCommandConfig
}

func (c *ImportCmd) Run() error {
	return ImportBuild(context.Background(), ImportOptions{
		URL:     c.URL,
		NoCache: viper.GetBool("cache.disabled"),
		BaseCommandConfig: cmdutil.BaseCommandConfig{
			OutputDir:      c.Output,
			ConfigKey:      configKey,
			JSONOutput:     c.JSONOutput,
			WriteJSON:      c.JSON,
			WriteMarkdown:  c.Markdown,
			DownloadImages: c.DownloadImages,
			Overwrite:      config.OverwriteFiles,
		},
	})
}

func (c *ShowCmd) Run() error {
	if c.Pick {
		return pickAndShow(context.Background())
	}

	f, err := savefile.Load(config.SaveFile)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, renderSummary(f.Build))
	return err
}

// ImportBuild scrapes the guide, stores it in the save file and writes the
// optional outputs. A failed scrape leaves the save file untouched.
func ImportBuild(ctx context.Context, opts ImportOptions) error {
	guideURL, err := guide.NormalizeGuideURL(opts.URL)
	if err != nil {
		return err
	}

	var fetcher guide.Fetcher = newFetcher()
	if !opts.NoCache {
		fetcher = newCachingFetcher(fetcher)
	}
	scraper := guide.NewScraper(guide.WithFetcher(fetcher), guide.WithPlannerBaseURL(plannerBaseURL))

	slog.Info("Fetching guide", "url", guideURL)
	result := scraper.Scrape(ctx, guideURL)
	if result.Failed() {
		return fmt.Errorf("import failed: %w", result.Err)
	}

	f, err := savefile.Load(config.SaveFile)
	if err != nil {
		return err
	}
	f.Build = savefile.BuildFromResult(guideURL, result)
	if err := f.Save(); err != nil {
		return err
	}
	slog.Info("Build imported: "+f.Build.Title,
		"gear_slots", len(f.Build.GearSlots),
		"planner", f.Build.PlannerURL != "",
		"save_file", f.Path(),
	)

	return writeOutputs(ctx, f.Build, opts)
}

func writeOutputs(ctx context.Context, b savefile.Build, opts ImportOptions) error {
	importedAt := now()
	record := newRecord(b, importedAt)

	if err := writeRecordToDatastore(ctx, record); err != nil {
		return err
	}

	if !opts.WriteJSON && !opts.WriteMarkdown && !opts.DownloadImages {
		return nil
	}

	cfg := opts.BaseCommandConfig
	if err := cmdutil.SetupOutputDir(&cfg); err != nil {
		return err
	}

	if cfg.WriteJSON {
		if _, err := fileutil.WriteJSONFile(record, cfg.JSONOutput, cfg.Overwrite); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	}

	var images map[int]string
	if cfg.DownloadImages {
		images = downloadGearImages(ctx, imageClient, b.Title, b.GearSlots, cfg.OutputDir, cfg.Overwrite)
		slog.Info("Gear images stored", "count", len(images), "dir", cfg.OutputDir)
	}

	if cfg.WriteMarkdown {
		path, written, err := writeNote(b, images, cfg.OutputDir, cfg.Overwrite, importedAt)
		if err != nil {
			return err
		}
		if written {
			slog.Info("Wrote build note", "path", path)
		}
	}

	return nil
}

func pickAndShow(ctx context.Context) error {
	records, err := listRecords(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(stdout, "No builds in the local database yet. Import a guide with `nyanko import <url>` first.")
		return err
	}

	choices := make([]tui.BuildChoice, len(records))
	for i, r := range records {
		choices[i] = r.Choice()
	}

	res, err := selectBuild(choices)
	if err != nil {
		return fmt.Errorf("build picker failed: %w", err)
	}

	switch res.Action {
	case tui.ActionStopped:
		return errors.NewStopProcessingError("build selection cancelled")
	case tui.ActionSelected:
		for _, r := range records {
			if r.GuideURL == res.Selection.GuideURL {
				_, err := fmt.Fprintln(stdout, renderSummary(r.Build()))
				return err
			}
		}
	}
	return nil
}
