package build

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
)

type testCLI struct {
	Import ImportCmd `cmd:""`
	Show   ShowCmd   `cmd:""`
}

func parse(t *testing.T, args ...string) (*testCLI, *kong.Context) {
	t.Helper()
	cli := &testCLI{}
	parser, err := kong.New(cli, kong.Exit(func(code int) {
		t.Fatalf("unexpected Kong exit %d", code)
	}))
	assert.NoError(t, err)
	ctx, err := parser.Parse(args)
	assert.NoError(t, err)
	return cli, ctx
}

func TestImportCmdParsing(t *testing.T) {
	cli, ctx := parse(t, "import", testGuideURL,
		"--json", "--json-output", "out/builds.json",
		"--markdown", "-o", "bp",
		"--download-images")

	assert.Equal(t, "import <url>", ctx.Command())
	assert.Equal(t, ImportCmd{
		URL:            testGuideURL,
		JSON:           true,
		JSONOutput:     "out/builds.json",
		Markdown:       true,
		Output:         "bp",
		DownloadImages: true,
	}, cli.Import)
}

func TestImportCmdDefaults(t *testing.T) {
	cli, _ := parse(t, "import", testGuideURL)

	assert.Equal(t, "builds", cli.Import.Output)
	assert.False(t, cli.Import.JSON)
	assert.False(t, cli.Import.Markdown)
	assert.False(t, cli.Import.DownloadImages)
}

func TestImportCmdRequiresURL(t *testing.T) {
	parser, err := kong.New(&testCLI{})
	assert.NoError(t, err)
	_, err = parser.Parse([]string{"import"})
	assert.Error(t, err)
}

func TestShowCmdParsing(t *testing.T) {
	cli, _ := parse(t, "show", "--pick")
	assert.True(t, cli.Show.Pick)

	cli, _ = parse(t, "show")
	assert.False(t, cli.Show.Pick)
}
