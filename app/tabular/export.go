package tabular

import "strings"

// Export serializes a row set back to delimited text. The header line joins
// the column names; each following line joins the row's values in column
// order. Any value containing the delimiter, a quote, or a line break is
// wrapped in quotes with internal quotes doubled, so parsing the output
// reproduces the same rows and columns up to numeric coercion.
func Export(columns []string, rows []Row, delim rune) []byte {
	var b strings.Builder

	for i, col := range columns {
		if i > 0 {
			b.WriteRune(delim)
		}
		b.WriteString(escapeField(col, delim))
	}
	b.WriteByte('\n')

	for _, row := range rows {
		for i, col := range columns {
			if i > 0 {
				b.WriteRune(delim)
			}
			b.WriteString(escapeField(row[col].Text(), delim))
		}
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

// escapeField quotes a field when it contains the delimiter, a quote or a
// line break, doubling any internal quotes.
func escapeField(s string, delim rune) string {
	if !strings.ContainsAny(s, string(delim)+"\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
