package slf4j

import (
	"regexp"
	"unicode"
)

// placeholderPattern matches one "{}" together with the run of
// backslash pairs before it and the single character before that.
// The match is an escaped placeholder when that character is a lone
// backslash: "\{}" prints "{}" literally, while "\\{}" prints a
// backslash followed by the argument.
var placeholderPattern = regexp.MustCompile(`(.?)(?:\\\\)*\{\}`)

// countPlaceholders returns the number of "{}" placeholders in format
// that the logger will substitute with arguments.
func countPlaceholders(format string) int {
	count := 0
	for _, m := range placeholderPattern.FindAllStringSubmatch(format, -1) {
		if m[1] != `\` {
			count++
		}
	}
	return count
}

// isSignOnly reports whether format contains no letter at all, such
// as "???" or "{} - {}".
func isSignOnly(format string) bool {
	for _, r := range format {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
