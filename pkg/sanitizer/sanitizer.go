package sanitizer

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// RichText keeps basic formatting markup and strips scripts, handlers and
// anything else outside the user generated content policy.
func RichText(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// PlainText removes every tag.
func PlainText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
