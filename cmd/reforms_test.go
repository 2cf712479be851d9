package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

const reformsFixture = `State	Enacted	Bill	Effective	FTP reform	FTA reform
Texas	6/2019	HB 2048	9/2019	full	—
West Virginia	3/2020	HB 4958	7/2020	full	full
Oregon	7/2020	HB 4210	10/2020	full	—
New Mexico,2/2023,SB 47,6/2023,full,full
`

func writeReformsFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Reforms.txt")
	if err := os.WriteFile(path, []byte(reformsFixture), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadReforms(t *testing.T) {
	reforms, err := LoadReforms(writeReformsFile(t))
	if err != nil {
		t.Fatalf("LoadReforms: %v", err)
	}
	if len(reforms) != 4 {
		t.Fatalf("len(reforms) = %d, want 4", len(reforms))
	}

	tx := reforms["Texas"]
	if tx.Enacted != "2019-06" || tx.Effective != "2019-09" {
		t.Errorf("Texas dates = %q/%q", tx.Enacted, tx.Effective)
	}
	if tx.FTPType != "full" || tx.FTAType != "" {
		t.Errorf("Texas types = %q/%q", tx.FTPType, tx.FTAType)
	}
	if tx.IncludesFTA() {
		t.Error("Texas reform should not include FTA")
	}

	wv := reforms["West Virginia"]
	if !wv.IncludesFTA() {
		t.Error("West Virginia reform should include FTA")
	}

	nm := reforms["New Mexico"]
	if nm.Enacted != "2023-02" || nm.Effective != "2023-06" {
		t.Errorf("New Mexico dates = %q/%q", nm.Enacted, nm.Effective)
	}
}

func TestLoadReformsBadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Reforms.txt")
	if err := os.WriteFile(path, []byte("header\nTexas,6/2019\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadReforms(path); err == nil {
		t.Fatal("expected an error for a short row")
	}
}

func TestFindReform(t *testing.T) {
	reforms, err := LoadReforms(writeReformsFile(t))
	if err != nil {
		t.Fatalf("LoadReforms: %v", err)
	}

	if _, ok := FindReform(reforms, "Texas"); !ok {
		t.Error("exact name should resolve")
	}
	// Job names run multi-word states together.
	if r, ok := FindReform(reforms, "NewMexico"); !ok || r.State != "New Mexico" {
		t.Errorf("FindReform(NewMexico) = (%+v, %v)", r, ok)
	}
	if _, ok := FindReform(reforms, "oregon"); !ok {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := FindReform(reforms, "Vermont"); ok {
		t.Error("unlisted state should not resolve")
	}
}

func TestReformMonth(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"6/2019", "2019-06"},
		{"12/2020", "2020-12"},
		{"—", ""},
		{"", ""},
		{"13/2020", ""},
	}
	for _, tt := range tests {
		if got := reformMonth(tt.in); got != tt.want {
			t.Errorf("reformMonth(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
