package guide

import (
	"log/slog"
	"regexp"
)

// serumTerminators end the serum recommendation; they open the sections
// that follow it on the guide page.
var serumTerminators = []string{"To learn", "Life Skills", "Culinary"}

var (
	foodRe  = regexp.MustCompile(`(?i)Food\s*:\s*(.+?)\s*Serum\s*:`)
	serumRe = regexp.MustCompile(`(?i)Serum\s*:\s*(.+?)(?:\s*(?:` + alternation(serumTerminators) + `)|$)`)
)

// Consumables holds the recommended food and serum. Either may be empty.
type Consumables struct {
	Food  string
	Serum string
}

// ExtractConsumables pulls the food and serum recommendations from text.
func ExtractConsumables(text string) Consumables {
	var c Consumables
	if groups, ok := regexMatcher(foodRe)(text); ok {
		c.Food = groups[0]
	}
	if groups, ok := regexMatcher(serumRe)(text); ok {
		c.Serum = groups[0]
	}
	if c.Food == "" && c.Serum == "" {
		slog.Debug("Food and serum recommendations not found")
	}
	return c
}

