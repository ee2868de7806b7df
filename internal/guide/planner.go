package guide

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// DefaultPlannerBaseURL is the canonical location of planner builds.
const DefaultPlannerBaseURL = "https://maxroll.gg/blue-protocol/planner/"

var plannerIDMatchers = []matcher{
	// <span class="sr-planner-equipment" data-sr-id="g41si0c5">
	regexMatcher(regexp.MustCompile(`sr-planner-equipment[^>]*data-sr-id=["']([a-zA-Z0-9]+)["']`)),
	// <span data-sr-id="g41si0c5" class="sr-planner-equipment">
	regexMatcher(regexp.MustCompile(`data-sr-id=["']([a-zA-Z0-9]+)["'][^>]*sr-planner`)),
	// href=".../planner/g41si0c5"
	regexMatcher(regexp.MustCompile(`/planner/([a-zA-Z0-9]+)(?:["'\s>]|$)`)),
}

// ExtractPlannerBuildID finds the planner build id referenced by the raw
// guide markup.
func ExtractPlannerBuildID(raw string) (string, bool) {
	groups, ok := firstMatch(raw, plannerIDMatchers)
	if !ok {
		return "", false
	}
	return groups[0], true
}

// PlannerURL builds the planner page URL for buildID under base.
func PlannerURL(base, buildID string) string {
	if base == "" {
		base = DefaultPlannerBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/" + buildID
}

// plannerGear fetches the planner page once and walks it for gear.
// Any failure is logged and yields no records.
func (s *Scraper) plannerGear(ctx context.Context, plannerURL string) []GearSlot {
	page, err := s.fetcher.Fetch(ctx, plannerURL)
	if err != nil {
		slog.Warn("Planner page fetch failed, continuing without gear", "url", plannerURL, "error", err)
		return []GearSlot{}
	}

	slots := ExtractGear(page.Body)
	slog.Debug("Planner gear extracted", "url", plannerURL, "slots", len(slots))
	return slots
}
