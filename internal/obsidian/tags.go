package obsidian

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

var (
	tagWhitespace = regexp.MustCompile(`\s+`)
	tagHyphens    = regexp.MustCompile(`-+`)
	tagStrip      = regexp.MustCompile(`[^\p{L}\p{N}/_-]`)
)

// NormalizeTag turns free text such as a class or slot name into an Obsidian
// tag. Case is preserved, whitespace becomes hyphens, "&" becomes "and" and
// anything that is not a letter, digit, "/", "_" or "-" is dropped.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return ""
	}

	tag = strings.ReplaceAll(tag, "&", " and ")
	tag = tagWhitespace.ReplaceAllString(tag, "-")
	tag = tagStrip.ReplaceAllString(tag, "")
	tag = tagHyphens.ReplaceAllString(tag, "-")
	return strings.Trim(tag, "-")
}

// TagSet collects normalized, deduplicated tags.
type TagSet struct {
	tags map[string]struct{}
}

func NewTagSet() *TagSet {
	return &TagSet{tags: make(map[string]struct{})}
}

// Add normalizes tag and adds it unless it normalizes to nothing.
func (ts *TagSet) Add(tag string) {
	if n := NormalizeTag(tag); n != "" {
		ts.tags[n] = struct{}{}
	}
}

// AddAll adds every tag in tags.
func (ts *TagSet) AddAll(tags []string) {
	for _, tag := range tags {
		ts.Add(tag)
	}
}

// AddIf adds tag when condition holds.
func (ts *TagSet) AddIf(condition bool, tag string) {
	if condition {
		ts.Add(tag)
	}
}

// GetSorted returns the tags in byte order.
func (ts *TagSet) GetSorted() []string {
	return slices.Sorted(maps.Keys(ts.tags))
}

// ApplyTagSet stores the sorted tags of ts under "tags".
func ApplyTagSet(fm *Frontmatter, ts *TagSet) {
	fm.Set("tags", ts.GetSorted())
}

// TagsFromAny reads a tag list from a decoded YAML value, which is either
// []string (set in code) or []any (parsed from a note). Anything else, and
// empty or non-string items, yield nothing.
func TagsFromAny(val any) []string {
	out := []string{}
	switch v := val.(type) {
	case []string:
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
