// backend/src/security/validation/sanitizers.go
package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// titlePolicy drops every tag; ledger and rule titles are plain text.
var titlePolicy = bluemonday.StrictPolicy()

// StripUnprintable removes non-printable runes. Tabs and line breaks survive
// so CollapseSpaces can fold them.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// CollapseSpaces folds any whitespace run into one space and trims the ends.
// Titles render on a single line in the ledger and upcoming lists.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripMarkup removes tags, then turns the policy's entity escapes back into
// text so "Tom's Market" is stored as typed. Angle brackets that come back
// out of escaped input are dropped.
func stripMarkup(s string) string {
	text := html.UnescapeString(titlePolicy.Sanitize(s))
	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, text)
}

// CleanTitle prepares a user supplied entry or rule title for storage.
func CleanTitle(s string) string {
	return CollapseSpaces(stripMarkup(StripUnprintable(s)))
}
