// Package savefile persists the imported build into the shared checklist
// JSON record without disturbing keys owned by other tools.
package savefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/lepinkainen/nyanko/internal/fileutil"
	"github.com/lepinkainen/nyanko/internal/guide"
)

// DefaultTitle is stored when a guide has no usable title.
const DefaultTitle = "Build"

// Record keys owned by this package.
const (
	KeyGuideURL   = "build_guide_url"
	KeyTitle      = "build_guide_title"
	KeyGearing    = "build_gearing"
	KeyPlannerURL = "build_planner_url"
	KeyGearSlots  = "build_gear_slots"
	KeyFood       = "build_food"
	KeySerum      = "build_serum"
)

// Build is the imported build as stored in the record.
type Build struct {
	GuideURL   string           `json:"build_guide_url"`
	Title      string           `json:"build_guide_title"`
	Gearing    string           `json:"build_gearing"`
	PlannerURL string           `json:"build_planner_url"`
	GearSlots  []guide.GearSlot `json:"build_gear_slots"`
	Food       string           `json:"build_food"`
	Serum      string           `json:"build_serum"`
}

// Imported reports whether a build has been stored.
func (b Build) Imported() bool {
	return b.GuideURL != ""
}

// BuildFromResult converts a successful scrape of guideURL into a Build.
func BuildFromResult(guideURL string, result *guide.ExtractionResult) Build {
	b := Build{
		GuideURL:   guideURL,
		Title:      result.Title,
		Gearing:    result.Gearing,
		PlannerURL: result.PlannerURL,
		GearSlots:  result.GearSlots,
		Food:       result.Food,
		Serum:      result.Serum,
	}
	if b.Title == "" {
		b.Title = DefaultTitle
	}
	if b.GearSlots == nil {
		b.GearSlots = []guide.GearSlot{}
	}
	return b
}

// File is a loaded checklist record.
type File struct {
	path  string
	Build Build
	// other keys, kept verbatim
	extra map[string]json.RawMessage
}

// Load reads the record at path. A missing file yields an empty record. An
// unreadable JSON document is logged and treated as empty.
func Load(path string) (*File, error) {
	f := &File{path: path, extra: map[string]json.RawMessage{}}
	f.Build.GearSlots = []guide.GearSlot{}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save file %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("Save file is not valid JSON, starting fresh", "path", path, "error", err)
		return f, nil
	}

	for key, value := range raw {
		if !isBuildKey(key) {
			f.extra[key] = value
			continue
		}
		if err := f.decodeBuildKey(key, value); err != nil {
			slog.Warn("Ignoring malformed save file field", "path", path, "key", key, "error", err)
		}
	}
	if f.Build.GearSlots == nil {
		f.Build.GearSlots = []guide.GearSlot{}
	}

	return f, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Save writes the record back, replacing the file atomically.
func (f *File) Save() error {
	out := make(map[string]json.RawMessage, len(f.extra)+7)
	for k, v := range f.extra {
		out[k] = v
	}

	buildJSON, err := json.Marshal(f.Build)
	if err != nil {
		return fmt.Errorf("failed to encode build: %w", err)
	}
	var buildFields map[string]json.RawMessage
	if err := json.Unmarshal(buildJSON, &buildFields); err != nil {
		return fmt.Errorf("failed to encode build: %w", err)
	}
	for k, v := range buildFields {
		out[k] = v
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode save file: %w", err)
	}

	if err := fileutil.WriteFileAtomic(f.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	slog.Debug("Saved build record", "path", f.path, "title", f.Build.Title)
	return nil
}

func isBuildKey(key string) bool {
	switch key {
	case KeyGuideURL, KeyTitle, KeyGearing, KeyPlannerURL, KeyGearSlots, KeyFood, KeySerum:
		return true
	}
	return false
}

func (f *File) decodeBuildKey(key string, value json.RawMessage) error {
	if string(value) == "null" {
		return nil
	}
	switch key {
	case KeyGuideURL:
		return json.Unmarshal(value, &f.Build.GuideURL)
	case KeyTitle:
		return json.Unmarshal(value, &f.Build.Title)
	case KeyGearing:
		return json.Unmarshal(value, &f.Build.Gearing)
	case KeyPlannerURL:
		return json.Unmarshal(value, &f.Build.PlannerURL)
	case KeyGearSlots:
		return json.Unmarshal(value, &f.Build.GearSlots)
	case KeyFood:
		return json.Unmarshal(value, &f.Build.Food)
	case KeySerum:
		return json.Unmarshal(value, &f.Build.Serum)
	}
	return nil
}
