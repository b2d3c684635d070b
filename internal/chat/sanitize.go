package chat

import (
	"regexp"
	"strings"
)

// scriptPattern matches embedded script blocks, including their
// contents, case-insensitively and across newlines.
var scriptPattern = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)

// Sanitize strips executable markup from text before it is stored or
// transmitted. Applied to both outbound user text and returned
// assistant text.
func Sanitize(input string) string {
	return strings.TrimSpace(scriptPattern.ReplaceAllString(input, ""))
}
