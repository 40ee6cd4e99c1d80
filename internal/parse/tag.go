package parse

import "strings"

// Tag builds the hashtag for a title: runs of whitespace become a single
// underscore and the result is prefixed with '#'.
func Tag(title string) string {
	return "#" + strings.Join(strings.Fields(title), "_")
}
