package classify

import "testing"

// testRuleset mirrors the shape of a real jurisdiction table: an explicit
// code override map plus ordered keyword groups with Child_Support ahead of
// FTP so support cases don't fall into the broader non-payment vocabulary.
var testRuleset = Ruleset{
	Codes: map[string]Category{
		"RAOC": RoadSafety,
		"CDOF": FTP,
	},
	Groups: []Group{
		{ChildSupport, []string{"CHILD SUPPORT"}},
		{FTA, []string{"FAILURE TO APPEAR", "FAIL TO APPEAR", "FTA"}},
		{FTP, []string{"FAILURE TO PAY", "FAILED TO PAY", "INSURANCE"}},
		{RoadSafety, []string{"DUI", "RECKLESS", "SPEEDING"}},
	},
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		fields []string
		want   Category
	}{
		{"child support before ftp", "", []string{"FAILURE TO PAY CHILD SUPPORT"}, ChildSupport},
		{"fta before ftp", "", []string{"FAILURE TO APPEAR AND FAILURE TO PAY"}, FTA},
		{"ftp keyword", "", []string{"FAILED TO PAY FINE"}, FTP},
		{"road safety", "", []string{"RECKLESS DRIVING"}, RoadSafety},
		{"no match is Other", "", []string{"MEDICAL REVIEW"}, Other},
		{"empty text is Other", "", nil, Other},
		{"case insensitive", "", []string{"failure to appear"}, FTA},
		{"multiple fields concatenated", "", []string{"SUSPENSION", "no liability insurance"}, FTP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testRuleset.Classify(tt.code, tt.fields...)
			if got != tt.want {
				t.Errorf("Classify(%q, %v) = %q, want %q", tt.code, tt.fields, got, tt.want)
			}
		})
	}
}

func TestCodeOverrideWinsOverKeywords(t *testing.T) {
	// RAOC maps to road_safety even though its description carries an FTP
	// keyword; the explicit table encodes exactly these ambiguous cases.
	got := testRuleset.Classify("raoc ", "RESTRAINT - NO LIABILITY INSURANCE")
	if got != RoadSafety {
		t.Errorf("code override: got %q, want %q", got, RoadSafety)
	}

	// An unknown code falls through to the keyword groups.
	got = testRuleset.Classify("ZZZZ", "NO LIABILITY INSURANCE")
	if got != FTP {
		t.Errorf("unknown code fallthrough: got %q, want %q", got, FTP)
	}
}

func TestSubstringMatchingIsNotWordBounded(t *testing.T) {
	// Containment matching is the source behavior: a short keyword can hit
	// inside a longer token.
	rs := Ruleset{Groups: []Group{{FTA, []string{"FTA"}}}}
	if got := rs.Classify("", "FTAFTC COMBINED"); got != FTA {
		t.Errorf("substring match: got %q, want %q", got, FTA)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  sd45 "); got != "SD45" {
		t.Errorf("NormalizeCode = %q, want %q", got, "SD45")
	}
}

func TestJoinUpper(t *testing.T) {
	if got := JoinUpper(" a ", "", "b"); got != "A B" {
		t.Errorf("JoinUpper = %q, want %q", got, "A B")
	}
}
