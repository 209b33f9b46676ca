package loader

import (
	"strings"
	"testing"
)

func TestIsValidDate(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"24-Jan-2024", true},
		{"24-JAN-2024", true},
		{"24-jan-2024", true},
		{"29-Feb-2024", true},  // leap year
		{"29-Feb-2023", false}, // not a leap year
		{"31-Feb-2024", false}, // matches the pattern, not a real date
		{"31-Apr-2024", false},
		{"00-Jan-2024", false},
		{"5-Jan-2024", false}, // day must be two digits
		{"24-January-2024", false},
		{"24-Jan-24", false},
		{"2024-01-24", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isValidDate(tc.value); got != tc.want {
			t.Errorf("isValidDate(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestIsNullString(t *testing.T) {
	for _, v := range []string{"", "nan", "NaN", "NAN", "none", "NULL", "null"} {
		if !isNullString(v) {
			t.Errorf("isNullString(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"0", "n/a", "-", "NIFTY"} {
		if isNullString(v) {
			t.Errorf("isNullString(%q) = true, want false", v)
		}
	}
}

func TestReadCSV_EmptyFile(t *testing.T) {
	_, err := readCSV(strings.NewReader(""))
	if err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestReadCSV_PreservesRawCells(t *testing.T) {
	tbl, err := readCSV(strings.NewReader("A,B\n 1 ,x\n2,y\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d", len(tbl.Rows))
	}
	// Cells stay raw until Normalize runs.
	if tbl.Rows[0]["A"] != " 1 " {
		t.Errorf("cell = %q", tbl.Rows[0]["A"])
	}
}

func TestNormalize(t *testing.T) {
	tbl := &Table{
		Columns: []string{"Symbol", "Expiry"},
		Rows: []Row{
			{"Symbol": "  nifty ", "Expiry": " 25-Jan-2024 "},
		},
	}
	tbl.Normalize()
	if tbl.Rows[0]["Symbol"] != "NIFTY" {
		t.Errorf("Symbol = %q", tbl.Rows[0]["Symbol"])
	}
	// Date columns are trimmed but keep their case.
	if tbl.Rows[0]["Expiry"] != "25-Jan-2024" {
		t.Errorf("Expiry = %q", tbl.Rows[0]["Expiry"])
	}
}
