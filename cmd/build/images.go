package build

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lepinkainen/nyanko/internal/fileutil"
	"github.com/lepinkainen/nyanko/internal/guide"
)

// downloadGearImages stores the icon of every slot that has one under
// outputDir/attachments. Failed downloads are logged and left out of the
// returned map, which is keyed by slot index.
func downloadGearImages(ctx context.Context, client *http.Client, title string, slots []guide.GearSlot, outputDir string, overwrite bool) map[int]string {
	images := make(map[int]string)
	seen := make(map[string]int)

	for i, slot := range slots {
		if slot.ImageURL == "" {
			continue
		}

		if err := siteLimiter.Wait(ctx); err != nil {
			slog.Warn("Stopped downloading gear images", "error", err)
			break
		}

		label := slotLabel(slot.Slot)
		seen[label]++
		if seen[label] > 1 {
			// duplicate slots from both passes must not share a file
			label = label + "-" + strconv.Itoa(seen[label])
		}

		res, err := fileutil.DownloadImage(ctx, fileutil.ImageDownloadOptions{
			URL:       slot.ImageURL,
			OutputDir: outputDir,
			Filename:  fileutil.BuildImageFilename(title, label),
			Overwrite: overwrite,
			Client:    client,
		})
		if err != nil {
			slog.Warn("Failed to download gear image", "slot", slot.Slot, "url", slot.ImageURL, "error", err)
			continue
		}
		images[i] = res.RelativePath
	}

	return images
}
