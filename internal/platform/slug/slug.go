package slug

import (
	"regexp"
	"strings"
)

const maxLen = 60

var (
	nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)
	urlScheme   = regexp.MustCompile(`^[a-z][a-z0-9+.-]*://`)
)

// Make turns a problem title or URL into a file-name friendly slug.
func Make(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = urlScheme.ReplaceAllString(s, "")
	s = strings.TrimPrefix(s, "www.")
	s = nonAlphaNum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}
