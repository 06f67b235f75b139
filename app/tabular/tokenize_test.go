package tabular

import (
	"reflect"
	"testing"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{
			name:     "plain fields",
			line:     "a,b,c",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "quoted field with delimiter",
			line:     `"Bob, Jr",25`,
			expected: []string{"Bob, Jr", "25"},
		},
		{
			name:     "escaped quote inside quoted field",
			line:     `"say ""hi""",ok`,
			expected: []string{`say "hi"`, "ok"},
		},
		{
			name:     "fields are trimmed",
			line:     "  a ,  b  , c ",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "empty fields preserved",
			line:     "a,,c",
			expected: []string{"a", "", "c"},
		},
		{
			name:     "trailing delimiter yields empty final field",
			line:     "a,b,",
			expected: []string{"a", "b", ""},
		},
		{
			name:     "single field no delimiter",
			line:     "alone",
			expected: []string{"alone"},
		},
		{
			name:     "unbalanced quote is permissive",
			line:     `"never closed,still one field`,
			expected: []string{"never closed,still one field"},
		},
		{
			name:     "empty line yields one empty field",
			line:     "",
			expected: []string{""},
		},
		{
			name:     "quote spanning delimiter then more fields",
			line:     `x,"a,b",y`,
			expected: []string{"x", "a,b", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLine(tt.line, Delimiter)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitLine(%q) = %q, want %q", tt.line, got, tt.expected)
			}
		})
	}
}

func TestStripOuterQuotes(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{`"hello"`, "hello"},
		{`hello`, "hello"},
		{`"`, `"`},
		{`""`, ""},
		{`"a`, `"a`},
	}

	for _, tt := range tests {
		if got := stripOuterQuotes(tt.in); got != tt.out {
			t.Errorf("stripOuterQuotes(%q) = %q, want %q", tt.in, got, tt.out)
		}
	}
}
