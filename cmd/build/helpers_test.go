package build

import (
	"bytes"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/lepinkainen/nyanko/internal/cache"
	"github.com/lepinkainen/nyanko/internal/guide"
	"github.com/lepinkainen/nyanko/internal/ratelimit"
	"github.com/lepinkainen/nyanko/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testGuidePath   = "/blue-protocol/build-guides/smite-spec-guide"
	testGuideURL    = "https://maxroll.gg" + testGuidePath
	testPlannerPath = "/blue-protocol/planner/g41si0c5"
	testPlannerURL  = "https://maxroll.gg" + testPlannerPath
	testImagePath   = "/assets/helm.png"

	testGearing = "Attributes: 1. Intellect  2. Luck  3. Versatility  4. Crit\n" +
		"Legendary affix: Cast Speed , then MATK , and Intellect as the last\n" +
		"Legendary priority: 1. Cast Speed  2. MATK  3. Intellect"
)

const guidePage = `<html><head>
<title>Smite Spec Guide - Blue Protocol: Star Resonance - Maxroll.gg</title>
</head><body>
<h3>Attributes</h3><ol><li>Intellect</li><li>Luck</li><li>Versatility</li><li>Crit</li></ol>
<h3>Legendary Affix</h3>
<p>For legendary affixes, focus on <b>Cast Speed</b>, then <b>MATK</b>, and <b>Intellect</b> as the last.</p>
<h3>Celestial</h3>
<p>Food: Roast Fish</p><p>Serum: Swift Tonic</p><p>To learn more about Life Skills</p>
<span class="sr-planner-equipment" data-sr-id="g41si0c5"></span>
<script id="__NEXT_DATA__" type="application/json">{"props":{"equipment":{` +
	`"helm":{"name":"Oracle Crown","basicAttributes":{"INT":120},"imageUrl":"https://maxroll.gg/assets/helm.png"},` +
	`"ring":{"name":"Band of Luck","advancedAttributes":"Luck 40"}}}}</script>
</body></html>`

const gearlessGuidePage = `<html><head><title>Frost Guide - Blue Protocol</title></head><body>
<p>Food: Grilled Eel</p><p>Serum: Focus Serum</p>
<a href="https://maxroll.gg/blue-protocol/planner/g41si0c5">Planner</a>
</body></html>`

const plannerPage = `<html><body><script id="__NEXT_DATA__" type="application/json">` +
	`{"build":{"slots":[{"slot":"weapon","name":"Frost Staff"}]}}` +
	`</script></body></html>`

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

// rewriteTransport sends every request to the test server, keeping the path.
type rewriteTransport struct {
	target string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	u := *req.URL
	u.Scheme = "http"
	u.Host = strings.TrimPrefix(rt.target, "http://")
	clone.URL = &u
	clone.Host = u.Host
	return http.DefaultTransport.RoundTrip(clone)
}

func testPNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(400, 400, color.NRGBA{R: 200, A: 255})))
	return buf.String()
}

type importFixture struct {
	env    *testutil.TestEnv
	server *testutil.PageServer
	out    *bytes.Buffer
}

// setupImport sandboxes config, cache and output directories and points all
// maxroll.gg traffic at a local page server.
func setupImport(t *testing.T, pages map[string]string) *importFixture {
	t.Helper()

	env := testutil.NewTestEnv(t)
	testutil.SetTestConfig(t, env)
	testutil.SetupTestCache(t, env)
	testutil.SetViperValue(t, "markdownoutputdir", env.Path("markdown"))
	testutil.SetViperValue(t, "jsonoutputdir", env.Path("json"))

	require.NoError(t, cache.ResetGlobalCache())
	t.Cleanup(func() { _ = cache.ResetGlobalCache() })

	ps := testutil.NewPageServer(t, pages)
	client := &http.Client{Transport: rewriteTransport{target: ps.URL}}
	out := &bytes.Buffer{}

	origFetcher, origImages, origNow, origStdout, origSelect := newFetcher, imageClient, now, stdout, selectBuild
	origLimiter := siteLimiter
	siteLimiter = ratelimit.Every("test", 0, 1)
	newFetcher = func() guide.Fetcher {
		return guide.NewHTTPFetcher(guide.WithHTTPClient(client), guide.WithLimiter(siteLimiter))
	}
	imageClient = client
	now = func() time.Time { return testNow }
	stdout = out
	t.Cleanup(func() {
		newFetcher, imageClient, now, stdout, selectBuild = origFetcher, origImages, origNow, origStdout, origSelect
		siteLimiter = origLimiter
	})

	return &importFixture{env: env, server: ps, out: out}
}
