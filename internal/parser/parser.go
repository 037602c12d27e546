package parser

import "strings"

// Parse splits a line into whitespace-delimited tokens. A literal "&" token
// ends the command and marks it for the background; anything after it is
// dropped.
func Parse(input string) (tokens []string, background bool) {
	fields := strings.Fields(input)
	for i, field := range fields {
		if field == "&" {
			return fields[:i], true
		}
	}
	return fields, false
}
