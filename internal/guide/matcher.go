package guide

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordPattern matches one word token, including non-ASCII letters.
const wordPattern = `[\p{L}\p{N}_]+`

// matcher inspects normalized text and returns the capture groups of its hit.
type matcher func(text string) ([]string, bool)

// firstMatch runs matchers in order and returns the groups of the first hit.
// Later matchers are not attempted once one succeeds.
func firstMatch(text string, matchers []matcher) ([]string, bool) {
	for _, m := range matchers {
		if groups, ok := m(text); ok {
			return groups, true
		}
	}
	return nil, false
}

// regexMatcher returns the trimmed capture groups of the leftmost match of re.
func regexMatcher(re *regexp.Regexp) matcher {
	return func(text string) ([]string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return nil, false
		}
		return trimAll(m[1:]), true
	}
}

// boundedMatcher is a regexMatcher whose final capture group must be a word
// followed by whitespace, a period, the end of text, or marker (compared
// case-insensitively). When the word runs straight into marker, the group is
// shortened to end where marker begins.
//
// re must end with a word-token capture group.
func boundedMatcher(re *regexp.Regexp, marker string) matcher {
	return func(text string) ([]string, bool) {
		offset := 0
		for offset <= len(text) {
			loc := re.FindStringSubmatchIndex(text[offset:])
			if loc == nil {
				return nil, false
			}

			last := len(loc) - 2
			wordStart, wordEnd := offset+loc[last], offset+loc[last+1]
			if end, ok := boundaryEnd(text, wordStart, wordEnd, marker); ok {
				groups := make([]string, 0, last/2)
				for i := 2; i < last; i += 2 {
					groups = append(groups, text[offset+loc[i]:offset+loc[i+1]])
				}
				groups = append(groups, text[wordStart:end])
				return trimAll(groups), true
			}

			// Retry from the next rune after this match's start.
			_, size := utf8.DecodeRuneInString(text[offset+loc[0]:])
			if size == 0 {
				size = 1
			}
			offset += loc[0] + size
		}
		return nil, false
	}
}

// boundaryEnd finds the longest word text[start:end'] with end' <= end that
// is followed by an accepted boundary.
func boundaryEnd(text string, start, end int, marker string) (int, bool) {
	for n := end; n > start; n-- {
		rest := text[n:]
		if rest == "" || rest[0] == '.' || isSpace(rest[0]) {
			return n, true
		}
		if marker != "" && len(rest) >= len(marker) && strings.EqualFold(rest[:len(marker)], marker) {
			return n, true
		}
	}
	return 0, false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// alternation builds a regexp alternation of the literal words.
func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
