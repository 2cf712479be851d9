package states

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Washington's workbooks split their rows across "Data Set N" sheets. Some
// rows are misaligned and carry a date where the reason should be; those are
// dropped as a known data-quality issue.

var washingtonRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.ChildSupport, Keywords: []string{"CHILD SUPPORT"}},
		{Category: classify.FTA, Keywords: []string{
			"FAILURE TO APPEAR", "FAIL TO APPEAR", "FAILURE TO ANSWER",
			"FAIL TO ANSWER", "BENCH WARRANT", "WARRANT", "FTA",
		}},
		{Category: classify.FTP, Keywords: []string{
			"FAILURE TO MAKE REQUIRED PAYMENT", "FAILED TO PAY", "FTP",
			"UNSATISFIED JUDGMENT", "FINANCIAL RESPONSIBILITY",
			"FAILURE TO COMPLY WITH FINANCIAL", "FAILURE TO PAY FOR DAMAGES",
			"INSTALLMENT PAYMENT", "FINE AND COSTS",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"ALCOHOL", "DUI", "UNDER THE INFLUENCE", "ADMINISTRATIVE PER SE",
			"BAC", "CHEMICAL TEST", "REFUSED TO SUBMIT TO TEST",
			"IMPLIED CONSENT", "UNDERAGE ADMINISTRATIVE PER SE", ".02 OR HIGHER",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DRUG", "CONTROLLED SUBSTANCE", "UNDER THE INFLUENCE OF DRUGS",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"RECKLESS DRIVING", "HABITUAL TRAFFIC OFFENDER", "HABITUAL OFFENDER",
			"DRIVING WHILE LICENSE SUSPENDED", "DRIVING WHILE LICENSE REVOKED",
			"HIT AND RUN", "FAILURE TO STOP AND RENDER AID", "VEHICULAR ASSAULT",
			"VEHICULAR HOMICIDE", "FLEEING OR EVADING POLICE", "ROADBLOCK",
			"SPEED CONTEST", "RACING", "ACCUMULATION OF CONVICTIONS", "POINT",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"USING A MOTOR VEHICLE IN CONNECTION WITH A FELONY",
		}},
		{Category: classify.Other, Keywords: []string{
			"MEDICAL", "PHYSICAL OR MENTAL DISABILITY", "RE-EXAM REQUIREMENT",
			"ALC/DRUG ASSESSMENT REQUIREMENT", "MEDICAL CERTIFICATION",
			"MISREPRESENTATION", "VIOLATE RESTRICTIONS", "IGNITION INTERLOCK REQUIREMENT",
			"VIOLATION OF PROBATION", "MINOR IN POSSESSION", "WITHDRAWAL",
		}},
	},
}

var washingtonDateShapedReason = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

func runWashington(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".xlsx")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .xlsx files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.ChildSupport, classify.Other)

	for _, path := range files {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := washingtonWorkbook(b, path); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

func washingtonWorkbook(b *table.Builder, path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		if !strings.HasPrefix(sheet, "Data Set") {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		idx := headerIndex(rows[0])
		reasonIdx, okReason := idx["Suspension_Reason"]
		startIdx, okStart := idx["Suspension_Start"]
		if !okReason || !okStart {
			continue
		}

		for _, row := range rows[1:] {
			// Blank reasons are kept and classify as Other; date-shaped ones
			// are the misaligned rows and get dropped.
			reason := strings.TrimSpace(cell(row, reasonIdx))
			if washingtonDateShapedReason.MatchString(reason) {
				continue
			}
			year, month, ok := washingtonDate(cell(row, startIdx))
			if !ok || !yearInWindow(year, 1980) {
				continue
			}
			b.Add(table.Bucket(year, month), washingtonRules.ClassifyText(reason), 1)
		}
	}
	return nil
}

// washingtonDate accepts either rendering of the datetime start column.
func washingtonDate(s string) (year, month int, ok bool) {
	if y, m, ok := parseISODate(s); ok {
		return y, m, true
	}
	return parseSlashDate(s)
}
