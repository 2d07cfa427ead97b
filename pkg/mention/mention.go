// Package mention extracts @ references from chat input and strips them back
// out for display. Matching the extracted tokens against a corpus is the
// vault's job; this package never touches the filesystem.
package mention

import (
	"regexp"
	"sort"
	"strings"
)

// Mention is one @ reference found in user text.
type Mention struct {
	// Token is the reference literal: the contents of a backtick span, or the
	// bare run with trailing sentence punctuation removed.
	Token string

	// Wrapped reports whether the token was backtick wrapped.
	Wrapped bool
}

var (
	mentionPattern = regexp.MustCompile("@(?:`([^`]+)`|([^\\s@`]+))")
	wrappedPattern = regexp.MustCompile("@`[^`]+`")
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Extract scans text left to right and returns its mentions in order of first
// appearance. Two grammars are recognized: @`span with any characters` and
// @bare-token, where a bare token runs until whitespace, another @, or a
// backtick, and sheds trailing sentence punctuation. Duplicate tokens are
// collapsed to their first appearance.
func Extract(text string) []Mention {
	var mentions []Mention

	seen := map[string]bool{}

	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		mention := Mention{Token: match[1], Wrapped: true}

		if mention.Token == "" {
			mention = Mention{Token: strings.TrimRight(match[2], ".,;!?")}
		}

		if mention.Token == "" || seen[mention.Token] {
			continue
		}

		seen[mention.Token] = true
		mentions = append(mentions, mention)
	}

	return mentions
}

// Strip removes the given mentions from text and returns the cleaned display
// form. Backtick-wrapped mentions vanish verbatim, including the @ and the
// backticks. Bare tokens are removed longest first, so a token that prefixes
// another never leaves a remainder, and only at a token boundary: the @token
// must be followed by whitespace, sentence punctuation, or the end of the
// text. Whitespace runs collapse to a single space and the result is trimmed.
func Strip(text string, mentions []Mention) string {
	out := wrappedPattern.ReplaceAllString(text, " ")

	tokens := make([]string, 0, len(mentions))

	for _, mention := range mentions {
		tokens = append(tokens, mention.Token)
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return len(tokens[i]) > len(tokens[j])
	})

	for _, token := range tokens {
		pattern := regexp.MustCompile("@" + regexp.QuoteMeta(token) + `([\s.,;!?]|$)`)
		out = pattern.ReplaceAllString(out, "$1")
	}

	out = spacePattern.ReplaceAllString(out, " ")

	return strings.TrimSpace(out)
}
