package states

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Illinois supplies two workbook shapes: a monthly FOIA export whose first
// data row carries the statutory authority codes, and a yearly export with
// one column per year. Yearly counts are spread evenly over twelve months,
// skipping any year the monthly export already covers.

var illinoisTextRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.RoadSafety, Keywords: []string{"DUI", "ALCOHOL", "BAC"}},
		{Category: classify.FTA, Keywords: []string{"FTA", "FAILURE TO APPEAR", "FAIL TO APPEAR"}},
		{Category: classify.FTP, Keywords: []string{"FTP", "FAILURE TO PAY", "FAILED TO PAY"}},
		{Category: classify.FTP, Keywords: []string{"CHILD SUPPORT", "INSURANCE", "FINANCIAL"}},
		{Category: classify.RoadSafety, Keywords: []string{
			"ACCIDENT", "RECKLESS", "SPEEDING", "HIT AND RUN",
			"VEHICULAR", "DRUGS", "CONTROLLED SUBSTANCE",
		}},
	},
}

var illinoisFTASubsections = []string{
	"A1", "A2", "A3", "A4", "A5",
	"(A)1", "(A)2", "(A)3", "(A)4", "(A)5",
}

// illinoisCategory resolves a statutory authority code. Sections 6-206
// (failure to pay or appear), 6-205 and 11-501 (DUI) are recognized
// structurally; anything else falls through to the keyword groups.
func illinoisCategory(code string) classify.Category {
	c := classify.NormalizeCode(code)
	compact := strings.ReplaceAll(c, " ", "")

	if strings.Contains(c, "6206") || strings.Contains(compact, "6-206") {
		for _, sub := range illinoisFTASubsections {
			if strings.Contains(c, sub) {
				return classify.FTA
			}
		}
		return classify.FTP
	}
	if strings.Contains(c, "6205") || strings.Contains(compact, "6-205") {
		return classify.RoadSafety
	}
	if strings.Contains(c, "11501") || strings.Contains(compact, "11-501") || strings.HasPrefix(c, "1150") {
		return classify.RoadSafety
	}
	return illinoisTextRules.ClassifyText(c)
}

var illinoisMonthYear = regexp.MustCompile(`^(\d{1,2})/(\d{4})`)
var illinoisYearMonth = regexp.MustCompile(`^(\d{4})-(\d{1,2})`)
var illinoisYearOnly = regexp.MustCompile(`^(\d{4})`)

// illinoisPeriod parses the monthly export's period labels: MM/YYYY,
// YYYY-MM, or a bare year (bucketed to January).
func illinoisPeriod(s string) (year, month int, ok bool) {
	s = strings.TrimSpace(s)
	if m := illinoisMonthYear.FindStringSubmatch(s); m != nil {
		mo, _ := strconv.Atoi(m[1])
		if mo >= 1 && mo <= 12 {
			y, _ := strconv.Atoi(m[2])
			return y, mo, true
		}
	}
	if m := illinoisYearMonth.FindStringSubmatch(s); m != nil {
		mo, _ := strconv.Atoi(m[2])
		if mo >= 1 && mo <= 12 {
			y, _ := strconv.Atoi(m[1])
			return y, mo, true
		}
	}
	if m := illinoisYearOnly.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y, 1, true
	}
	return 0, 0, false
}

func runIllinois(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".xlsx")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .xlsx files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.Other)
	monthlyYears := make(map[int]bool)

	// Monthly data first: it decides which years the yearly export may fill.
	for _, path := range files {
		name := strings.ToLower(filepath.Base(path))
		if !strings.Contains(name, "revised") && !strings.Contains(name, "9-19") {
			continue
		}
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := illinoisMonthly(b, path, monthlyYears); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	for _, path := range files {
		name := strings.ToLower(filepath.Base(path))
		if !strings.Contains(name, "sanction stats") && !strings.Contains(name, "2000 to 2023") {
			continue
		}
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := illinoisYearly(b, path, monthlyYears); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

// illinoisMonthly reads the Sheet2 layout: header row, then a row of
// authority codes, then one row per period.
func illinoisMonthly(b *table.Builder, path string, monthlyYears map[int]bool) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet2")
	if err != nil {
		return err
	}
	if len(rows) < 3 {
		return fmt.Errorf("not enough rows")
	}

	header := rows[0]
	codeRow := rows[1]

	periodIdx, ok := findColumn(header, "month", "year")
	if !ok {
		periodIdx = 0
	}

	// Columns whose code row entry is a usable authority code.
	type authCol struct {
		idx  int
		code string
	}
	var authCols []authCol
	for i := range header {
		if i == periodIdx {
			continue
		}
		code := strings.TrimSpace(cell(codeRow, i))
		if code == "" || strings.Contains(strings.ToLower(code), "total") {
			continue
		}
		authCols = append(authCols, authCol{idx: i, code: code})
	}

	for _, row := range rows[2:] {
		year, month, ok := illinoisPeriod(cell(row, periodIdx))
		if !ok {
			continue
		}
		bucket := table.Bucket(year, month)
		monthlyYears[year] = true
		for _, ac := range authCols {
			v, ok := cellFloat(cell(row, ac.idx))
			if !ok || v <= 0 {
				continue
			}
			b.Add(bucket, illinoisCategory(ac.code), v)
		}
	}
	return nil
}

// illinoisYearly reads the authority-by-year layout, spreading each year's
// count evenly across its months.
func illinoisYearly(b *table.Builder, path string, excludeYears map[int]bool) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		if strings.Contains(strings.ToLower(sheet), "total") {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		header := rows[0]
		authIdx, ok := findColumn(header, "authority")
		if !ok {
			continue
		}

		type yearCol struct {
			idx  int
			year int
		}
		var yearCols []yearCol
		for i, name := range header {
			if i == authIdx {
				continue
			}
			y, ok := cellInt(name)
			if !ok || y < 2000 || y > 2030 || excludeYears[y] {
				continue
			}
			yearCols = append(yearCols, yearCol{idx: i, year: y})
		}

		for _, row := range rows[1:] {
			code := strings.TrimSpace(cell(row, authIdx))
			if code == "" {
				continue
			}
			cat := illinoisCategory(code)
			for _, yc := range yearCols {
				v, ok := cellFloat(cell(row, yc.idx))
				if !ok || v <= 0 {
					continue
				}
				monthly := v / 12
				for month := 1; month <= 12; month++ {
					b.Add(table.Bucket(yc.year, month), cat, monthly)
				}
			}
		}
	}
	return nil
}
