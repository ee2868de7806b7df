package cache

import (
	"fmt"
	"log/slog"
)

// InvalidateCacheCmd clears cached pages for one source, or all of them.
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: guide, planner or all" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	sources := Sources
	if i.Source != "all" {
		src, err := ParseSource(i.Source)
		if err != nil {
			return err
		}
		sources = []Source{src}
	}

	c, err := GetGlobalCache()
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	for _, src := range sources {
		n, err := c.Invalidate(src)
		if err != nil {
			return err
		}
		slog.Info("Cache invalidated", "source", src, "rows_deleted", n, "database", c.Path())
	}
	return nil
}
