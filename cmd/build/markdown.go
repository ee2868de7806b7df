package build

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lepinkainen/nyanko/internal/fileutil"
	"github.com/lepinkainen/nyanko/internal/obsidian"
	"github.com/lepinkainen/nyanko/internal/savefile"
)

var baseTags = []string{"blue-protocol", "build"}

// buildNote renders b as an Obsidian note. images maps gear slot index to an
// attachment path relative to the note.
func buildNote(b savefile.Build, images map[int]string, importedAt time.Time, existingTags []string) ([]byte, error) {
	fm := obsidian.NewFrontmatterWithTitle(b.Title)
	fm.Set("source", b.GuideURL)
	fm.Set("imported", importedAt.Format("2006-01-02"))
	if b.PlannerURL != "" {
		fm.Set("planner", b.PlannerURL)
	}
	if b.Food != "" {
		fm.Set("food", b.Food)
	}
	if b.Serum != "" {
		fm.Set("serum", b.Serum)
	}
	if len(b.GearSlots) > 0 {
		fm.Set("gear_slots", len(b.GearSlots))
	}

	tags := obsidian.NewTagSet()
	tags.AddAll(existingTags)
	tags.AddAll(baseTags)
	tags.AddIf(b.PlannerURL != "", "planner")
	obsidian.ApplyTagSet(fm, tags)

	return obsidian.BuildNoteMarkdown(fm, noteBody(b, images))
}

func noteBody(b savefile.Build, images map[int]string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", b.Title)
	fmt.Fprintf(&sb, "Guide: <%s>\n", b.GuideURL)
	if b.PlannerURL != "" {
		fmt.Fprintf(&sb, "Planner: <%s>\n", b.PlannerURL)
	}

	sb.WriteString("\n## Gearing\n\n")
	if b.Gearing == "" {
		sb.WriteString("No attribute or legendary affix priority found.\n")
	}
	for _, line := range strings.Split(b.Gearing, "\n") {
		if line != "" {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}

	if len(b.GearSlots) > 0 {
		sb.WriteString("\n## Gear\n")
		for i, slot := range b.GearSlots {
			name := slot.Name
			if name == "" {
				name = "—"
			}
			fmt.Fprintf(&sb, "\n### %s: %s\n\n", slotLabel(slot.Slot), name)
			if img, ok := images[i]; ok {
				fmt.Fprintf(&sb, "![[%s]]\n\n", img)
			}
			if slot.BasicAttributes != "" {
				fmt.Fprintf(&sb, "- Basic: %s\n", slot.BasicAttributes)
			}
			if slot.AdvancedAttributes != "" {
				fmt.Fprintf(&sb, "- Advanced: %s\n", slot.AdvancedAttributes)
			}
		}
	}

	sb.WriteString("\n## Food & Serum\n\n")
	fmt.Fprintf(&sb, "- Food: %s\n", orDash(b.Food))
	fmt.Fprintf(&sb, "- Serum: %s\n", orDash(b.Serum))

	return sb.String()
}

// writeNote writes the note for b into dir. Tags from an earlier note for the
// same build are kept when overwriting.
func writeNote(b savefile.Build, images map[int]string, dir string, overwrite bool, importedAt time.Time) (string, bool, error) {
	path := fileutil.GetMarkdownFilePath(b.Title, dir)

	var existingTags []string
	if overwrite && fileutil.FileExists(path) {
		if content, err := os.ReadFile(path); err == nil {
			if note, err := obsidian.ParseMarkdown(content); err == nil {
				existingTags = note.Frontmatter.GetStringArray("tags")
			} else {
				slog.Warn("Existing note has invalid frontmatter, tags not preserved", "path", path, "error", err)
			}
		}
	}

	content, err := buildNote(b, images, importedAt, existingTags)
	if err != nil {
		return path, false, fmt.Errorf("failed to build note: %w", err)
	}

	written, err := fileutil.WriteMarkdownFile(path, content, overwrite)
	if err != nil {
		return path, false, err
	}
	return path, written, nil
}

func slotLabel(slot string) string {
	if slot == "" {
		return "?"
	}
	return slot
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
