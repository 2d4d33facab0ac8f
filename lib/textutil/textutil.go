package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchAll reports whether name contains every matcher, ignoring case.
// matchers are expected to be lowercase.
func MatchAll(name string, matchers ...string) bool {
	name = strings.ToLower(name)
	for _, m := range matchers {
		if !strings.Contains(name, m) {
			return false
		}
	}
	return true
}
