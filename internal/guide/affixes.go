package guide

import (
	"fmt"
	"log/slog"
	"regexp"
)

// legendaryAffixNames are the affixes accepted as the top entry of a
// numbered legendary priority list.
var legendaryAffixNames = []string{"Cast Speed", "MATK", "Intellect", "Ranged Damage", "Attack SPD"}

var affixRationaleRe = regexp.MustCompile(`(?i)For legendary affixes, focus on\s+([^.]+?)(?:\.|Celestial|$)`)

var affixRankingMatchers = []matcher{
	// "1. Cast Speed 2. MATK 3. Intellect"
	boundedMatcher(regexp.MustCompile(
		`(?i)1\.\s*(`+alternation(legendaryAffixNames)+`)\s+2\.\s*([^.]+?)\s+3\.\s*(`+wordPattern+`)`,
	), "Celestial"),
	// "focus on Cast Speed, then MATK, and Intellect as the last"
	// TODO: this phrasing comes from a single guide; collect a second guide's wording before generalising it.
	regexMatcher(regexp.MustCompile(
		`(?i)focus on\s+([^,]+),\s*then\s+([^,]+),\s*and\s+(` + wordPattern + `)\s+as the last`,
	)),
}

// ExtractAffixes returns the legendary affix lines found in text: the
// free-text rationale and the three-item ranking, each only when present.
func ExtractAffixes(text string) []string {
	var lines []string

	if m := affixRationaleRe.FindStringSubmatch(text); m != nil {
		lines = append(lines, "Legendary affix: "+trimAll(m[1:])[0])
	} else {
		slog.Debug("Legendary affix rationale not found")
	}

	if groups, ok := firstMatch(text, affixRankingMatchers); ok {
		lines = append(lines, fmt.Sprintf("Legendary priority: 1. %s  2. %s  3. %s", groups[0], groups[1], groups[2]))
	} else {
		slog.Debug("Legendary affix ranking not found")
	}

	return lines
}
