package states

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Oregon ships both a huge CSV-in-.txt export and workbooks whose rows are
// caret-packed into a single column. The FTAFTC sanction type folds appear
// and comply failures together; the native code literal disambiguates, and
// the bare FTAFTC fallback lands in FTP as the more common reading.

var oregonRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.FTA, Keywords: []string{
			"F APPEAR", "FAILURE TO APPEAR", "FAIL TO APPEAR",
		}},
		{Category: classify.FTP, Keywords: []string{
			"F COMPLY", "FAILURE TO PAY", "FAIL PAY", "FPAYTAX",
		}},
		{Category: classify.FTP, Keywords: []string{
			"CHILDSUPPORT", "CHLD SPRT", "CHILD SUPPORT",
		}},
		{Category: classify.FTP, Keywords: []string{
			"UJUDGMNT", "UNSATISFIED JUDGMENT",
		}},
		{Category: classify.FTP, Keywords: []string{
			"SR22V", "SR22I", "SR22", "SR22A", "SR22H", "INSURE",
			"MANDATORY INSURANCE", "DR UNINSUR", "DR UNINS",
			"OWNER UNINSURED", "ACCIDENT UNINSURED",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DUII", "IMPLIEDCONSENT", "IMPLIED CONSENT", "FAILED BREATH TEST",
			"REFUSED BREATH TEST", "REFUSED URINE TEST", "FAILED BLOOD TEST",
			"DRVIMP", "DRIVING IMPAIRED",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"ACCIDENT", "TRAFFICCRIME", "TRAFFIC CRIME", "RECK DR", "RECKLESS",
			"RECK END MV", "SERIOUSACCIM", "DR F RPT AC",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"HABIT", "HABITUAL OFFENDER", "MAJOR", "MAJORSUS", "CDLMJR",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"FL/AT ELUDE", "ELUDE", "FLEEING",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"ASSAULT MV", "CRIM MIS MV", "CO/MV FLNY", "UNAUTH USE",
		}},
		// Combined appear/comply sanctions with no specific indicator. Any
		// text with an appear keyword was caught by the first group already.
		{Category: classify.FTP, Keywords: []string{"FTAFTC"}},
		{Category: classify.Other, Keywords: []string{
			"CANCEL", "FALSEAPPSUSP", "FALSEAPPCANC", "FALSE APPLICATION",
			"FRAUD", "ATRISK", "ATRISKTEST", "ATRISKDNY", "AT-RISK",
			"PERMIT", "DISPAYMENT", "DISPMT", "STATEHOSPITAL", "HSPVIO",
			"HSPBAR", "CDLMEDQUAL", "CDLSRS", "CDLOOSO", "CDLRRGC",
			"CDPFRD", "IIDVIOLATE", "IIDINDEF", "IIDSUSP", "INTERLOCK",
			"IID DEINSTALL", "OOSSUS", "OOSICINDEF", "OOS CONVICTION",
			"OOS IMPLIED CONSENT", "CRTODR", "COURT ORDER", "ADMIN",
			"LEGACY", "N/ENT DL", "N/ENT CDP", "PRF REQ UNTL",
			"ADLTCONVAR", "ADLTACCAPA", "CO/FPDD", "CO/UN USE",
			"CO/RECK DR", "CO/DUII", "1 CO/DUII", "* CO/DUII",
			"FLS INFO PLC", "F PLC DL/C", "C/FL/A/ELD", "HARDSHIP VIOLATION",
			"FAIL BIOMETRIC CHECK", "INCIDENT",
		}},
	},
}

func runOregon(dataDir string) (*table.Table, error) {
	txtFiles, err := listFiles(dataDir, ".txt")
	if err != nil {
		return nil, err
	}
	xlsxFiles, err := listFiles(dataDir, ".xlsx")
	if err != nil {
		return nil, err
	}
	if len(txtFiles) == 0 && len(xlsxFiles) == 0 {
		return nil, fmt.Errorf("no data files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.Other)

	for _, path := range txtFiles {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		err := forEachCSVRow(path, ',', false,
			[]string{"Restraint Start", "Sanction Type"},
			func(get func(string) string) error {
				year, month, ok := parseISODate(get("Restraint Start"))
				if !ok || !yearInWindow(year, 1970) {
					return nil
				}
				cat := oregonRules.ClassifyText(get("Sanction Type"), get("(Native Code) Literal"))
				b.Add(table.Bucket(year, month), cat, 1)
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	for _, path := range xlsxFiles {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := oregonWorkbook(b, path); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

func oregonWorkbook(b *table.Builder, path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		rows = oregonUnpackCarets(rows)

		header := rows[0]
		dateIdx, okDate := findColumn(header, "restraint", "start")
		typeIdx, okType := findColumn(header, "sanction", "type")
		if !okDate || !okType {
			continue
		}
		nativeIdx, hasNative := findColumn(header, "native")
		if !hasNative {
			nativeIdx, hasNative = findColumn(header, "literal")
		}

		for _, row := range rows[1:] {
			year, month, ok := parseISODate(cell(row, dateIdx))
			if !ok || !yearInWindow(year, 1970) {
				continue
			}
			fields := []string{cell(row, typeIdx)}
			if hasNative {
				fields = append(fields, cell(row, nativeIdx))
			}
			b.Add(table.Bucket(year, month), oregonRules.ClassifyText(fields...), 1)
		}
	}
	return nil
}

// oregonUnpackCarets splits rows whose entire record was exported into one
// caret-delimited cell.
func oregonUnpackCarets(rows [][]string) [][]string {
	if len(rows) == 0 || len(rows[0]) != 1 || !strings.Contains(rows[0][0], "^") {
		return rows
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		out = append(out, strings.Split(row[0], "^"))
	}
	return out
}
