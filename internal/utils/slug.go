// internal/utils/slug.go
package utils

import (
	"regexp"
	"strings"
)

var (
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugInvalid    = regexp.MustCompile(`[^\w-]`)
	slugDashes     = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL slug from a display name: lowercase, whitespace runs
// become a hyphen, non-word characters are dropped and repeated hyphens collapse.
// "Dry Fruits & Nuts" becomes "dry-fruits-nuts".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
