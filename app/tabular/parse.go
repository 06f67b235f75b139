package tabular

import (
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyInput is returned when the input contains no non-blank lines.
var ErrEmptyInput = errors.New("tabular: input contains no data")

// Value is one cell of a parsed row: either a number or a string.
type Value struct {
	Num      float64
	Str      string
	IsNumber bool
}

// NumberValue creates a numeric Value.
func NumberValue(f float64) Value {
	return Value{Num: f, IsNumber: true}
}

// StringValue creates a string Value.
func StringValue(s string) Value {
	return Value{Str: s}
}

// Text returns the textual form of the value. Numbers format without
// an exponent so that exporting and re-parsing yields the same number.
func (v Value) Text() string {
	if v.IsNumber {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Float returns the numeric value and whether the value is numeric.
func (v Value) Float() (float64, bool) {
	if v.IsNumber {
		return v.Num, true
	}
	return 0, false
}

// Row maps column names to their typed values.
type Row map[string]Value

// Dataset holds the parsed form of one tabular payload.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// Parse turns a full text payload into typed rows plus the ordered column
// list. The first non-blank line is the header; every later non-blank line
// becomes one row keyed by header position. Fields missing at the end of a
// line coerce to the empty string, and a row whose fields are all empty is
// discarded entirely. Row order follows input line order.
func Parse(text string) (*Dataset, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}

	rawHeader := SplitLine(lines[0], Delimiter)
	columns := make([]string, len(rawHeader))
	for i, cell := range rawHeader {
		columns[i] = strings.TrimSpace(stripOuterQuotes(cell))
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := SplitLine(line, Delimiter)

		row := make(Row, len(columns))
		empty := true
		for i, col := range columns {
			raw := ""
			if i < len(fields) {
				raw = fields[i]
			}
			cell := strings.TrimSpace(stripOuterQuotes(raw))

			if n, ok := parseNumeric(cell); ok {
				row[col] = NumberValue(n)
				empty = false
			} else {
				row[col] = StringValue(cell)
				if cell != "" {
					empty = false
				}
			}
		}

		// An all-blank line parses to a row of empty strings; drop it
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	return &Dataset{Columns: columns, Rows: rows}, nil
}

// splitLines splits the payload on line breaks and discards blank lines.
// Trailing carriage returns are trimmed so CRLF input behaves like LF.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseNumeric reports whether a cell holds a number. A value counts as
// numeric only when it is non-empty and parses as a decimal float.
func parseNumeric(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
