package states

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Utah's export is a large CSV-in-.txt with a free-text DESCRIPTION. After
// July 2012 the state folded appear failures into "FAIL TO COMPLY", so FTA is
// undercounted from then on; the combined description counts as FTP.

var utahRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.ChildSupport, Keywords: []string{"CHILD SUPPORT"}},
		{Category: classify.FTA, Keywords: []string{
			"FAIL APPEAR", "FAILURE TO APPEAR", "FAIL TO APPEAR", "FTA",
		}},
		{Category: classify.FTP, Keywords: []string{
			"FAIL TO COMPLY", "FAILURE TO PAY", "UNSATISFIED DAMAGES",
			"UNSATISFIED JUDGEMENT", "UNSATISFIED JUDGMENT",
		}},
		{Category: classify.FTP, Keywords: []string{
			"NO VEHICLE INSURANCE", "DRIVING W/O INSURANCE", "NO PROOF OF INSUR",
			"PROOF OF INS", "INSURANCE", "INS-SR22",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DUI", "PERSE ARREST", "PER SE", "REFUSAL TO SUBMIT",
			"JUVENILE ALCOHOL", "METABOLITE", "DRINKING AND DRIVING",
			"ALCOHOL", "BAC",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"CTRL SUBSTANCE", "CONTROLLED SUBSTANCE", "DRUG",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DRIVING ON REVOCATION", "DRIVING WHILE SUSPENDED", "DRIVE WHILE DENIED",
			"POINTS ACCUMULATION", "RECKLESS DRIVING", "FLEEING", "EVADE ARREST",
			"HIT & RUN", "HIT AND RUN", "LEAVE ACCID SCENE", "AUTO HOMICIDE",
			"SPEEDING", "ALC/DRUG RECKLESS",
		}},
		{Category: classify.Other, Keywords: []string{
			"DL TESTS REQUIRED", "ALTERED LICENSE", "FALSE DL APPLICATION",
			"NOT A DROP", "NON-ACD WITHDRAWAL", "COURT ORDERED SUSPENSION",
			"MISREPRESENTATION", "SHOW/USE IMPRPR DL", "PHYSCL/MENTL DISABILITY",
			"EXP/NO REGISTRATION", "PARENTAL WITHDRAWAL", "REHAB REQUIRED",
			"VIOL LIMITED LICENSE", "FAIL FILE MEDICAL", "LIQUOR TO MINOR",
		}},
	},
}

func runUtah(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".txt")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .txt files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.ChildSupport, classify.Other)

	for _, path := range files {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		err := forEachCSVRow(path, ',', false,
			[]string{"DESCRIPTION", "ACTION_DATE"},
			func(get func(string) string) error {
				year, month, ok := parseSlashDate(get("ACTION_DATE"))
				if !ok || !yearInWindow(year, 1970) {
					return nil
				}
				b.Add(table.Bucket(year, month), utahRules.ClassifyText(get("DESCRIPTION")), 1)
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}
