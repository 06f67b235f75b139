package tabular

import "strings"

// Delimiter is the field separator used throughout the tabular engine.
const Delimiter = ','

// SplitLine splits a single line of delimited text into fields, honoring
// double-quote quoting. A quote toggles quoted mode; a doubled quote inside
// quoted mode emits one literal quote. The delimiter only terminates a field
// outside quoted mode. Every field is trimmed of surrounding whitespace, and
// the final field is emitted when the line ends.
//
// Unbalanced quotes are not an error: the scanner reaches end of line still in
// quoted mode and emits whatever accumulated. This permissive behavior is
// intentional and matches how the rest of the parser treats malformed input.
func SplitLine(line string, delim rune) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				// Escaped quote inside a quoted field
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

// stripOuterQuotes removes one layer of surrounding double quotes, if present.
func stripOuterQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
