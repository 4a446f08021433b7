package controllers

import (
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	input := "admission_number,first_name,last_name\n  S-001,Jane,Doe\nS-002,John,Smith\n"

	rows, err := readCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][0] != "S-001" {
		t.Fatalf("expected leading space trimmed, got %q", rows[1][0])
	}
	if rows[2][2] != "Smith" {
		t.Fatalf("unexpected cell value: %q", rows[2][2])
	}
}

func TestReadCSVMalformed(t *testing.T) {
	// Second row has a different field count.
	input := "a,b,c\n1,2\n"
	if _, err := readCSV(strings.NewReader(input)); err == nil {
		t.Fatalf("expected error for inconsistent field count")
	}
}

func TestBuildColumnIndex(t *testing.T) {
	idx := buildColumnIndex([]string{"admission_number", " first_name ", "last_name"})

	tests := []struct {
		column string
		want   int
	}{
		{column: "admission_number", want: 0},
		{column: "first_name", want: 1},
		{column: "last_name", want: 2},
	}

	for _, tc := range tests {
		got, ok := idx[tc.column]
		if !ok {
			t.Fatalf("column %q not indexed: %v", tc.column, idx)
		}
		if got != tc.want {
			t.Fatalf("column %q index = %d, want %d", tc.column, got, tc.want)
		}
	}

	if _, ok := idx["missing"]; ok {
		t.Fatalf("unexpected index entry for missing column")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "path separators replaced", input: "a/b\\c.xlsx", want: "a_b_c.xlsx"},
		{name: "dotdot replaced", input: "../../etc/passwd", want: "____etc_passwd"},
		{name: "plain name untouched", input: "students.csv", want: "students.csv"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeFilename(tc.input); got != tc.want {
				t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
