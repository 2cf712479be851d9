package states

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Colorado publishes one workbook per year, with one sheet per month. Rows
// carry a reason label and, in some exports, a count column.

var coloradoRules = classify.Ruleset{
	Codes: map[string]classify.Category{
		"SFTC": classify.FTP,
		"RAOC": classify.RoadSafety,
		"RLSN": classify.RoadSafety,
		"CDHT": classify.Other,
		"CDJD": classify.FTA,
		"CDOJ": classify.FTA,
		"CDUR": classify.FTA,
		"CDOF": classify.FTP,
		"SNRV": classify.FTP,
		"RAON": classify.RoadSafety,
		"RAOH": classify.RoadSafety,
		"RDRC": classify.RoadSafety,
		"RDUI": classify.RoadSafety,
		"SDUI": classify.RoadSafety,
		"RLSC": classify.RoadSafety,
		"SHAR": classify.RoadSafety,
		"RVAS": classify.RoadSafety,
		"RVHM": classify.RoadSafety,
	},
	Groups: []classify.Group{
		{Category: classify.FTA, Keywords: []string{
			"FAILURE TO APPEAR", "FAIL TO APPEAR", "FTA",
			"DEFAULT JUDGMENT", "DEFAULT JUDGEMENT", "JUDGMENT/DEFAULT",
			"JUDGMENT", "JUDGEMENT",
		}},
		{Category: classify.FTP, Keywords: []string{
			"FAILED TO COMPLY", "FAILED TO PAY", "FAILURE TO PAY", "FTP",
			"UNSATISFIED JUDGMENT", "CHILD SUPPORT", "FINANCIAL RESPONSIBILITY",
			"NO LIABILITY INSURANCE", "INSURANCE", "SR22",
			"NON-RESIDENT VIOLATOR", "OUT OF STATE FTP", "INTERLOCK LEASE",
			"FAILED TO REGISTER", "FAIL TO REGISTER",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DUI", "ALCOHOL", "BAC", "DRUGS", "CONTROLLED SUBSTANCE",
			"LEAVE SCENE", "ACCIDENT", "HIT AND RUN", "VEHICULAR ASSAULT",
			"VEHICULAR HOMICIDE", "EXCESSIVE POINTS", "SERIOUS VIOLATIONS",
			"RAIL CROSSING", "LICENSE RESTRICTION", "RESTRICTION",
			"OUT-OF-SERVICE", "OUT OF SERVICE", "RECKLESS", "SPEEDING",
		}},
	},
}

var actionCodePattern = regexp.MustCompile(`^([A-Z0-9]{2,5})\b`)

// actionCode extracts a leading action code token from a reason label, for
// lookup in an explicit code table.
func actionCode(label string) string {
	if m := actionCodePattern.FindStringSubmatch(strings.TrimSpace(label)); m != nil {
		return m[1]
	}
	return ""
}

var coloradoReasonColumns = []string{"action", "reason", "category", "type", "disposition"}
var coloradoCountColumns = map[string]bool{
	"count": true, "counts": true, "n": true, "num": true,
	"number": true, "total": true, "qty": true, "quantity": true,
}

func runColorado(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".xlsx")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .xlsx files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.Other)

	for _, path := range files {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := coloradoWorkbook(b, path); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

func coloradoWorkbook(b *table.Builder, path string) error {
	year, ok := yearFromFilename(path)
	if !ok {
		year = time.Now().Year()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		month, ok := monthFromName(sheet)
		if !ok {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		reasonIdx, countIdx := coloradoColumns(rows[0])
		bucket := table.Bucket(year, month)

		for _, row := range rows[1:] {
			if len(row) == 0 {
				continue
			}
			// A blank reason is still a record; with nothing to match it
			// lands in Other.
			reason := strings.TrimSpace(cell(row, reasonIdx))
			weight := 1.0
			if countIdx >= 0 {
				if v, ok := cellFloat(cell(row, countIdx)); ok {
					weight = v
				} else {
					continue
				}
			}
			cat := coloradoRules.Classify(actionCode(reason), reason)
			b.Add(bucket, cat, weight)
		}
	}
	return nil
}

// coloradoColumns picks the reason and count columns from a header row. The
// reason column is the first whose name carries a recognized keyword, falling
// back to the first column; the count column is optional.
func coloradoColumns(header []string) (reasonIdx, countIdx int) {
	reasonIdx, countIdx = 0, -1
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		if countIdx < 0 && coloradoCountColumns[lower] {
			countIdx = i
		}
	}
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		for _, kw := range coloradoReasonColumns {
			if strings.Contains(lower, kw) {
				return i, countIdx
			}
		}
	}
	return reasonIdx, countIdx
}
