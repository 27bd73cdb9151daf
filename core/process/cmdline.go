package process

import "strings"

// SplitCommandLine breaks a flat command line into an argument vector.
// Double quotes group words, a backslash escapes the next character inside
// quotes, and runs of unquoted whitespace separate arguments. The result is
// freshly allocated on every call; an all-whitespace line yields nil.
func SplitCommandLine(line string) []string {
	var argv []string
	var cur strings.Builder
	inWord := false
	inQuote := false
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			inWord = true
		case !inQuote && (r == ' ' || r == '\t'):
			if inWord {
				argv = append(argv, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		argv = append(argv, cur.String())
	}
	return argv
}
