package states

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/pdftext"
	"github.com/dlsproj/suspensions/table"
)

// New Mexico's source is a huge tabular PDF whose suspension section starts
// deep inside the document. The rows are aggregated counts per action code
// with no time axis, so the job emits only the grand-total row.

// newMexicoFirstPage is where the suspension/revocation table begins in the
// state's full credential report.
const newMexicoFirstPage = 1786

var newMexicoActivityTypes = []string{"Suspension", "Revoked", "Disqualified", "Cancel", "Other"}

var newMexicoSkipMarkers = []string{"Dimensions:", "AccountType", "Credential", "Activity Type"}

var newMexicoActionCode = regexp.MustCompile(`^[A-Z][0-9A-Z]{1,2}$`)

var newMexicoTrailingCount = regexp.MustCompile(`(\d+)\s*$`)

var newMexicoDescription = regexp.MustCompile(`-\s*([^-]+?)(?:\s+\d+\s*$|$)`)

// stateAbbreviations are two-letter jurisdiction codes that would otherwise
// match the action-code pattern.
var stateAbbreviations = map[string]bool{
	"AK": true, "AL": true, "AR": true, "AZ": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "IA": true,
	"ID": true, "IL": true, "IN": true, "KS": true, "KY": true, "LA": true,
	"MA": true, "MD": true, "ME": true, "MI": true, "MN": true, "MO": true,
	"MS": true, "MT": true, "NC": true, "ND": true, "NE": true, "NH": true,
	"NJ": true, "NM": true, "NV": true, "NY": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VA": true, "VT": true, "WA": true, "WI": true,
	"WV": true, "WY": true,
}

var newMexicoChildSupportRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.ChildSupport, Keywords: []string{
			"CHILD SUPPORT", "CHILDSUPPORT", "CHILD-SUPPORT", "CHILD_SUPPORT",
			"CHLD SUPPORT", "CHLDSUPPORT", "CHLD SPRT",
		}},
	},
}

var newMexicoFTPCodes = map[string]bool{"D53": true, "D51": true, "D56": true}

var newMexicoRoadCodes = map[string]bool{
	"A21": true, "A12": true, "A98": true, "A20": true,
	"A11": true, "A22": true, "A23": true,
	"B25": true, "B26": true, "B05": true,
}

// newMexicoCategory orders the checks the way the code book requires: child
// support text first, then the appear step, then the pay step, then the
// road-safety vocabulary. Each step checks its own codes alongside its
// keywords, so code D45 is FTA even when the description carries pay wording.
func newMexicoCategory(code, description string) classify.Category {
	c := classify.NormalizeCode(code)
	desc := strings.ToUpper(strings.TrimSpace(description))
	text := c + " " + desc

	if cat := newMexicoChildSupportRules.ClassifyText(text); cat == classify.ChildSupport {
		return classify.ChildSupport
	}

	if c == "D45" || strings.Contains(desc, "FAIL APPEAR") || strings.Contains(desc, "FAILURE TO APPEAR") || strings.Contains(text, "FTA") {
		return classify.FTA
	}
	if newMexicoFTPCodes[c] || strings.Contains(desc, "FAIL TO PAY") || strings.Contains(desc, "FAILURE TO PAY") || strings.Contains(text, "FTP") {
		return classify.FTP
	}
	if newMexicoRoadCodes[c] || containsAny(desc, []string{"DUI", "INTOX", "ALCOHOL", "BAC", "DRUG", "CONTROLLED SUBSTANCE"}) {
		return classify.RoadSafety
	}
	if containsAny(desc, []string{"DRIVING WHILE", "LEAVE SCENE", "HIT AND RUN", "RECKLESS", "CARELESS"}) {
		return classify.RoadSafety
	}
	return classify.Other
}

func runNewMexico(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".pdf")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .pdf files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.ChildSupport, classify.Other)

	for _, path := range files {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := newMexicoPDF(b, path); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	if b.Empty() {
		return nil, fmt.Errorf("no suspension records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

func newMexicoPDF(b *table.Builder, path string) error {
	pages, err := pdftext.ExtractPages(path)
	if err != nil {
		return err
	}

	for _, page := range pages {
		// Small extracts are processed whole; the full report skips ahead to
		// the suspension table.
		if len(pages) >= newMexicoFirstPage && page.Number < newMexicoFirstPage {
			continue
		}
		var pending string // description carried from a continuation line
		for _, cells := range page.Lines {
			line := strings.TrimSpace(strings.Join(cells, " "))
			if len(line) < 5 {
				continue
			}
			if containsAny(line, newMexicoSkipMarkers) {
				continue
			}

			if !containsAny(line, newMexicoActivityTypes) {
				// Possibly a wrapped description line.
				if line[0] < '0' || line[0] > '9' {
					if strings.Contains(line, "-") {
						pending = line
					}
				}
				continue
			}

			code, codeAt := newMexicoCode(strings.Fields(line))
			if code == "" {
				continue
			}

			description := pending
			pending = ""
			fields := strings.Fields(line)
			if codeAt+1 < len(fields) {
				rest := strings.Join(fields[codeAt+1:], " ")
				if strings.Contains(rest, "-") {
					if m := newMexicoDescription.FindStringSubmatch(rest); m != nil {
						description = strings.TrimSpace(m[1])
					}
				}
			}

			m := newMexicoTrailingCount.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			count, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil || count <= 0 {
				continue
			}

			b.Add(table.SentinelTotal, newMexicoCategory(code, description), float64(count))
		}
	}
	return nil
}

// newMexicoCode finds the action code token in a row: short alphanumeric,
// starting with a letter, and not a state abbreviation.
func newMexicoCode(fields []string) (string, int) {
	for i, f := range fields {
		if !newMexicoActionCode.MatchString(f) {
			continue
		}
		if len(f) == 2 && stateAbbreviations[f] {
			continue
		}
		return f, i
	}
	return "", -1
}
