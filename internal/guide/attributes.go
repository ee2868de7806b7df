package guide

import (
	"fmt"
	"log/slog"
	"regexp"
)

// attributeNames is the canonical attribute priority, used when the guide's
// list numbering was lost in normalization.
var attributeNames = []string{"Intellect", "Luck", "Versatility", "Crit"}

var attributeMatchers = []matcher{
	// "1. Intellect 2. Luck 3. Versatility 4. Crit"
	boundedMatcher(regexp.MustCompile(
		`(?i)1\.\s*(`+wordPattern+`)\s+2\.\s*(`+wordPattern+`)\s+3\.\s*(`+wordPattern+`)\s+4\.\s*(`+wordPattern+`)`,
	), "Legendary"),
	// "Intellect Luck Versatility Crit Legendary"
	regexMatcher(regexp.MustCompile(
		fmt.Sprintf(`(?i)(%s)\s+(%s)\s+(%s)\s+(%s)\s*(?:Legendary|$)`,
			regexp.QuoteMeta(attributeNames[0]), regexp.QuoteMeta(attributeNames[1]),
			regexp.QuoteMeta(attributeNames[2]), regexp.QuoteMeta(attributeNames[3])),
	)),
}

// ExtractAttributes returns the attribute priority line, or "" when the text
// has no recognisable four-item list.
func ExtractAttributes(text string) string {
	groups, ok := firstMatch(text, attributeMatchers)
	if !ok {
		slog.Debug("Attribute priority not found")
		return ""
	}
	return fmt.Sprintf("Attributes: 1. %s  2. %s  3. %s  4. %s", groups[0], groups[1], groups[2], groups[3])
}
