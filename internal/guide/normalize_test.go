package guide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMarkup(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips tags scripts styles and entities",
			raw:  "<p>Hello&nbsp;<b>world</b></p><script>var x = \"<p>\";</script>\n<style>p{}</style>  end",
			want: " Hello world end",
		},
		{
			name: "script removal is case insensitive and spans lines",
			raw:  "before<SCRIPT type=\"text/javascript\">\nline1\nline2\n</Script>after",
			want: "before after",
		},
		{
			name: "script removal is non-greedy",
			raw:  "<script>a</script>keep<script>b</script>",
			want: " keep ",
		},
		{
			name: "numeric references become spaces",
			raw:  "Crit&#8211;Luck",
			want: "Crit Luck",
		},
		{
			name: "list items become adjacent tokens",
			raw:  "<ol><li>Intellect</li><li>Luck</li></ol>",
			want: " Intellect Luck ",
		},
		{
			name: "non-breaking whitespace collapses",
			raw:  "Food:  Roast\tFish",
			want: "Food: Roast Fish",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMarkup(tt.raw))
		})
	}
}

func TestNormalizeMarkup_Deterministic(t *testing.T) {
	raw := "<div>1. <b>Intellect</b> 2. Luck</div>"
	assert.Equal(t, NormalizeMarkup(raw), NormalizeMarkup(raw))
}
