package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultImageMaxWidth caps gear icons; maxroll serves them well above what a
// note needs.
const DefaultImageMaxWidth = 256

// ImageDownloadOptions configures a single gear image download.
type ImageDownloadOptions struct {
	URL       string
	OutputDir string
	Filename  string
	MaxWidth  int
	Overwrite bool
	Client    *http.Client
}

// ImageDownloadResult describes where an image ended up.
type ImageDownloadResult struct {
	// Path on disk
	Path string
	// RelativePath is relative to OutputDir, suitable for embedding in notes
	RelativePath string
	// Downloaded is false when an existing file was reused
	Downloaded bool
}

// BuildImageFilename returns a filesystem-safe name for a gear slot image.
// Icons keep transparency, so they are always stored as PNG.
func BuildImageFilename(buildTitle, slot string) string {
	name := SanitizeFilename(fmt.Sprintf("%s - %s", buildTitle, slot))
	name = strings.ReplaceAll(name, " ", "_")
	return name + ".png"
}

// DownloadImage fetches opts.URL into OutputDir/attachments, shrinking it to
// MaxWidth when wider.
func DownloadImage(ctx context.Context, opts ImageDownloadOptions) (*ImageDownloadResult, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("no image URL provided")
	}
	if opts.Filename == "" {
		return nil, fmt.Errorf("no image filename provided")
	}
	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = DefaultImageMaxWidth
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	relPath := filepath.Join("attachments", opts.Filename)
	savePath := filepath.Join(opts.OutputDir, relPath)
	result := &ImageDownloadResult{Path: savePath, RelativePath: filepath.ToSlash(relPath)}

	if FileExists(savePath) && !opts.Overwrite {
		slog.Debug("Image already exists, skipping download", "path", savePath)
		return result, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading image", resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory: %w", err)
	}
	if err := imaging.Save(img, savePath); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	slog.Debug("Downloaded image", "url", opts.URL, "path", savePath)
	result.Downloaded = true
	return result, nil
}
