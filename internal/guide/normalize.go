package guide

import "regexp"

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
	entityRe      = regexp.MustCompile(`&\w+;|&#\d+;`)
	whitespaceRe  = regexp.MustCompile(`[\s\p{Z}]+`)
)

// NormalizeMarkup flattens raw page markup into a single line of text.
//
// Script and style regions are dropped with their content, remaining tags
// and character references each become a space, and whitespace runs collapse
// to one space. List items rendered across several inline elements end up as
// adjacent tokens, which is what the text extractors match against.
// References are not decoded.
func NormalizeMarkup(raw string) string {
	text := scriptBlockRe.ReplaceAllString(raw, " ")
	text = styleBlockRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = entityRe.ReplaceAllString(text, " ")
	return whitespaceRe.ReplaceAllString(text, " ")
}
