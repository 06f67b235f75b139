package tabular

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseBasic(t *testing.T) {
	ds, err := Parse("Name,Age\nAlice,30\n\"Bob, Jr\",25\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	wantCols := []string{"Name", "Age"}
	if !reflect.DeepEqual(ds.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", ds.Columns, wantCols)
	}

	if len(ds.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(ds.Rows))
	}

	if got := ds.Rows[0]["Name"]; got != StringValue("Alice") {
		t.Errorf("row 0 Name = %+v, want Alice", got)
	}
	if got := ds.Rows[0]["Age"]; got != NumberValue(30) {
		t.Errorf("row 0 Age = %+v, want number 30", got)
	}
	if got := ds.Rows[1]["Name"]; got != StringValue("Bob, Jr") {
		t.Errorf("row 1 Name = %+v, want Bob, Jr", got)
	}
	if got := ds.Rows[1]["Age"]; got != NumberValue(25) {
		t.Errorf("row 1 Age = %+v, want number 25", got)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n\n\n", "   \n\t\n", "\r\n\r\n"} {
		if _, err := Parse(input); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyInput", input, err)
		}
	}
}

func TestParseHeaderOnly(t *testing.T) {
	ds, err := Parse("a,b,c\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(ds.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(ds.Rows))
	}
	if !reflect.DeepEqual(ds.Columns, []string{"a", "b", "c"}) {
		t.Errorf("Columns = %v", ds.Columns)
	}
}

func TestParseMissingTrailingFields(t *testing.T) {
	ds, err := Parse("a,b,c\n1,2\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := ds.Rows[0]["c"]; got != StringValue("") {
		t.Errorf("missing field = %+v, want empty string", got)
	}
}

func TestParseDiscardsAllBlankRows(t *testing.T) {
	ds, err := Parse("a,b\n,,\nx,1\n , \n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("got %d rows, want 1 (all-blank rows discarded)", len(ds.Rows))
	}
	if got := ds.Rows[0]["a"]; got != StringValue("x") {
		t.Errorf("row 0 a = %+v, want x", got)
	}
}

func TestParseNumericCoercion(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want Value
	}{
		{"integer", "42", NumberValue(42)},
		{"float", "3.25", NumberValue(3.25)},
		{"negative", "-7.5", NumberValue(-7.5)},
		{"exponent", "1e3", NumberValue(1000)},
		{"text", "hello", StringValue("hello")},
		{"mixed", "30a", StringValue("30a")},
		{"empty", "", StringValue("")},
		{"spaces only", "   ", StringValue("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse("v,anchor\n" + tt.cell + ",x\n")
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if got := ds.Rows[0]["v"]; got != tt.want {
				t.Errorf("cell %q = %+v, want %+v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestParseQuotedHeaders(t *testing.T) {
	ds, err := Parse("\"Name\", \"Age\" \nAlice,30\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !reflect.DeepEqual(ds.Columns, []string{"Name", "Age"}) {
		t.Errorf("Columns = %v, want quotes stripped", ds.Columns)
	}
}

func TestParseCRLF(t *testing.T) {
	ds, err := Parse("a,b\r\n1,two\r\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(ds.Rows))
	}
	if got := ds.Rows[0]["b"]; got != StringValue("two") {
		t.Errorf("row 0 b = %+v, want two (no stray CR)", got)
	}
}

func TestParseRowOrderStable(t *testing.T) {
	ds, err := Parse("n\nc\na\nb\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	var got []string
	for _, row := range ds.Rows {
		got = append(got, row["n"].Text())
	}
	if !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("row order = %v, want input order", got)
	}
}

func TestValueText(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NumberValue(30), "30"},
		{NumberValue(25.5), "25.5"},
		{NumberValue(-0.125), "-0.125"},
		{StringValue("hi"), "hi"},
		{StringValue(""), ""},
	}
	for _, tt := range tests {
		if got := tt.v.Text(); got != tt.want {
			t.Errorf("Text(%+v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
