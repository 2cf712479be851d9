package states

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func TestMonthFromName(t *testing.T) {
	tests := []struct {
		in    string
		want  int
		found bool
	}{
		{"January", 1, true},
		{"  feb ", 2, true},
		{"Sept", 9, true},
		{"December 2022", 12, true},
		{"month 7", 7, true},
		{"12", 12, true},
		{"Summary", 0, false},
		{"13", 0, false},
	}
	for _, tt := range tests {
		got, found := monthFromName(tt.in)
		if got != tt.want || found != tt.found {
			t.Errorf("monthFromName(%q) = (%d, %v), want (%d, %v)", tt.in, got, found, tt.want, tt.found)
		}
	}
}

func TestYearFromFilename(t *testing.T) {
	tests := []struct {
		in    string
		want  int
		found bool
	}{
		{"/data/colorado_2022.xlsx", 2022, true},
		{"DLS 2019-final.xlsx", 2019, true},
		{"suspensions.xlsx", 0, false},
		{"report-99.xlsx", 0, false},
	}
	for _, tt := range tests {
		got, found := yearFromFilename(tt.in)
		if got != tt.want || found != tt.found {
			t.Errorf("yearFromFilename(%q) = (%d, %v), want (%d, %v)", tt.in, got, found, tt.want, tt.found)
		}
	}
}

func TestParseISODate(t *testing.T) {
	tests := []struct {
		in          string
		year, month int
		ok          bool
	}{
		{"2019-05-14", 2019, 5, true},
		{"2019-05-14 00:00:00", 2019, 5, true},
		{"9999-12-31", 0, 0, false},
		{"0000-00-00", 0, 0, false},
		{"0", 0, 0, false},
		{"", 0, 0, false},
		{"2019-13-01", 0, 0, false},
		{"2019-00-10", 0, 0, false},
		{"not a date", 0, 0, false},
	}
	for _, tt := range tests {
		y, m, ok := parseISODate(tt.in)
		if y != tt.year || m != tt.month || ok != tt.ok {
			t.Errorf("parseISODate(%q) = (%d, %d, %v), want (%d, %d, %v)", tt.in, y, m, ok, tt.year, tt.month, tt.ok)
		}
	}
}

func TestParseSlashDate(t *testing.T) {
	tests := []struct {
		in          string
		year, month int
		ok          bool
	}{
		{"3/7/2018", 2018, 3, true},
		{"12/31/1999", 1999, 12, true},
		{"13/1/2018", 0, 0, false},
		{"3/40/2018", 0, 0, false},
		{"2018-03-07", 0, 0, false},
	}
	for _, tt := range tests {
		y, m, ok := parseSlashDate(tt.in)
		if y != tt.year || m != tt.month || ok != tt.ok {
			t.Errorf("parseSlashDate(%q) = (%d, %d, %v), want (%d, %d, %v)", tt.in, y, m, ok, tt.year, tt.month, tt.ok)
		}
	}
}

func TestParseVermontDate(t *testing.T) {
	tests := []struct {
		in          string
		year, month int
		ok          bool
	}{
		{"980312", 1998, 3, true}, // two-digit years above 50 are 1900s
		{"120704", 2012, 7, true}, // at or below 50 are 2000s
		{"19981203", 1998, 12, true},
		{"000000", 0, 0, false},
		{"0", 0, 0, false},
		{"981340", 0, 0, false}, // month 13
		{"9812", 0, 0, false},
	}
	for _, tt := range tests {
		y, m, ok := parseVermontDate(tt.in)
		if y != tt.year || m != tt.month || ok != tt.ok {
			t.Errorf("parseVermontDate(%q) = (%d, %d, %v), want (%d, %d, %v)", tt.in, y, m, ok, tt.year, tt.month, tt.ok)
		}
	}
}

func TestYearInWindow(t *testing.T) {
	if yearInWindow(2025, 1970) {
		t.Error("2025 should be outside the window")
	}
	if !yearInWindow(2024, 1970) {
		t.Error("2024 should be inside the window")
	}
	if yearInWindow(1969, 1970) {
		t.Error("1969 should be below a 1970 floor")
	}
	if yearInWindow(1975, 1980) {
		t.Error("1975 should be below a 1980 floor")
	}
}

func TestCellParsers(t *testing.T) {
	if v, ok := cellFloat("1,234"); !ok || v != 1234 {
		t.Errorf("cellFloat(1,234) = (%v, %v)", v, ok)
	}
	if _, ok := cellFloat(" "); ok {
		t.Error("cellFloat of blank should fail")
	}
	if v, ok := cellInt("2019.0"); !ok || v != 2019 {
		t.Errorf("cellInt(2019.0) = (%v, %v)", v, ok)
	}
	if _, ok := cellInt("2019.5"); ok {
		t.Error("cellInt of a fraction should fail")
	}
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	return writeTestFileIn(t, t.TempDir(), name, content)
}

func writeTestFileIn(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestForEachCSVRowPipeDelimited(t *testing.T) {
	path := writeTestFile(t, "vt.txt", "SUSPENSION_CODE|EFFECTIVE_DATE\nFAF|980312\nFAP|120704\n")

	var codes []string
	err := forEachCSVRow(path, '|', false, []string{"SUSPENSION_CODE"}, func(get func(string) string) error {
		codes = append(codes, get("SUSPENSION_CODE"))
		return nil
	})
	if err != nil {
		t.Fatalf("forEachCSVRow: %v", err)
	}
	if len(codes) != 2 || codes[0] != "FAF" || codes[1] != "FAP" {
		t.Errorf("codes = %v", codes)
	}
}

func TestForEachCSVRowMissingColumn(t *testing.T) {
	path := writeTestFile(t, "bad.csv", "a,b\n1,2\n")
	err := forEachCSVRow(path, ',', false, []string{"REASON"}, func(func(string) string) error { return nil })
	if err == nil {
		t.Fatal("expected an error for a missing required column")
	}
}

func TestForEachCSVRowUTF16(t *testing.T) {
	encoded, _, err := transform.String(
		unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder(),
		"Sanction Code,fdtmRestraintCommence\nSD45,2015-06-01\n")
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	path := writeTestFile(t, "mn.csv", encoded)

	var rows int
	err = forEachCSVRow(path, ',', true, []string{"Sanction Code"}, func(get func(string) string) error {
		rows++
		if get("Sanction Code") != "SD45" {
			t.Errorf("Sanction Code = %q", get("Sanction Code"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("forEachCSVRow: %v", err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}
