// Package guide turns a Maxroll Blue Protocol build guide page into a compact
// build summary: attribute and legendary affix priority, food and serum, the
// planner link and whatever equipment the page embeds.
package guide

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/lepinkainen/nyanko/internal/errors"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExpectedHost is the only site guides are accepted from.
const ExpectedHost = "maxroll.gg"

var (
	titleSuffixRe = regexp.MustCompile(`(?i)\s*-\s*Blue Protocol.*$`)
	guideSlugRe   = regexp.MustCompile(`maxroll\.gg/[^/]+/[^/]+/([^/?#]+)`)
)

// Scraper extracts build summaries from guide pages. It holds no state
// between calls and is safe to reuse.
type Scraper struct {
	fetcher        Fetcher
	plannerBaseURL string
}

// Option is a functional option for configuring the Scraper.
type Option func(*Scraper)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Scraper) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithPlannerBaseURL overrides where planner build pages are fetched from.
func WithPlannerBaseURL(base string) Option {
	return func(s *Scraper) {
		if base != "" {
			s.plannerBaseURL = base
		}
	}
}

// NewScraper creates a Scraper using an HTTPFetcher with default settings.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		fetcher:        NewHTTPFetcher(),
		plannerBaseURL: DefaultPlannerBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches the guide at rawURL and extracts its build summary.
//
// Invalid input, network failures and non-success responses are reported
// through the result's Err with every data field left empty. Sections the
// page does not contain are simply empty. When the guide itself embeds no
// gear but links a planner build, the planner page is fetched once; its
// failure is ignored.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) *ExtractionResult {
	guideURL, err := NormalizeGuideURL(rawURL)
	if err != nil {
		slog.Warn("Rejected guide URL", "url", rawURL, "error", err)
		return failedResult(err)
	}

	page, err := s.fetcher.Fetch(ctx, guideURL)
	if err != nil {
		slog.Warn("Failed to fetch guide", "url", guideURL, "error", err)
		return failedResult(err)
	}
	raw := page.Body

	result := newResult()
	result.Title = pageTitle(raw, guideURL)

	text := NormalizeMarkup(raw)
	result.Gearing = ExtractGearing(text)
	consumables := ExtractConsumables(text)
	result.Food = consumables.Food
	result.Serum = consumables.Serum

	result.GearSlots = ExtractGear(raw)

	if buildID, ok := ExtractPlannerBuildID(raw); ok {
		result.PlannerURL = PlannerURL(s.plannerBaseURL, buildID)
		if len(result.GearSlots) == 0 {
			result.GearSlots = s.plannerGear(ctx, result.PlannerURL)
		}
	}

	slog.Debug("Guide scraped",
		"url", guideURL,
		"title", result.Title,
		"gear_slots", len(result.GearSlots),
		"planner", result.PlannerURL != "",
	)
	return result
}

// ExtractGearing joins the attribute and legendary affix lines of text.
func ExtractGearing(text string) string {
	var lines []string
	if attrs := ExtractAttributes(text); attrs != "" {
		lines = append(lines, attrs)
	}
	lines = append(lines, ExtractAffixes(text)...)
	return strings.Join(lines, "\n")
}

// NormalizeGuideURL validates rawURL and returns it with an https scheme
// when none was given. Only maxroll.gg and its subdomains are accepted.
func NormalizeGuideURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.NewInvalidInputError("", "guide URL is required")
	}

	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", errors.NewInvalidInputError(rawURL, "malformed guide URL")
	}

	host := strings.ToLower(u.Hostname())
	if host != ExpectedHost && !strings.HasSuffix(host, "."+ExpectedHost) {
		return "", errors.NewInvalidInputError(rawURL, "not a maxroll.gg URL")
	}

	return u.String(), nil
}

// pageTitle returns the <title> text without the site suffix, or a title
// built from the URL slug when the page has none.
func pageTitle(raw, guideURL string) string {
	title := titleSuffixRe.ReplaceAllString(extractTitle(raw), "")
	title = strings.TrimSpace(title)
	if title != "" {
		return title
	}
	return slugTitle(guideURL)
}

// extractTitle extracts the <title> content from raw HTML.
func extractTitle(raw string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}

// slugTitle turns ".../build-guides/verdant-oracle-smite-spec-guide" into
// "Verdant Oracle Smite Spec Guide".
func slugTitle(guideURL string) string {
	m := guideSlugRe.FindStringSubmatch(guideURL)
	if m == nil {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(m[1], "-", " "))
}
