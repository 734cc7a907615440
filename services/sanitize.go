package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitize strips every HTML element from s and escapes what remains, so the
// stored value is safe to render as markup. Applying it twice is a no-op.
func sanitize(s string) string {
	return strictPolicy.Sanitize(s)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
