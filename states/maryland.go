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

// Maryland's export is row-per-sanction raw data with posting year and month
// columns. Child support is its own category here, so the child-support group
// sits ahead of the non-payment vocabulary.

var marylandRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.ChildSupport, Keywords: []string{"CHILD SUPPORT"}},
		{Category: classify.FTA, Keywords: []string{
			"FAIL TO APPEAR", "FAILURE TO APPEAR", "BENCH WARRANT", "WARRANT",
		}},
		{Category: classify.FTP, Keywords: []string{
			"FAILURE TO PAY", "FAILED TO PAY", "FTP",
			"INSURANCE", "FINANCIAL", "UNSATISFIED JUDGMENT",
			"NON-RESIDENT VIOLATORS", "RECIPROCITY", "VIOLATED RECIPROCITY",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"ALCOHOL", "DUI", "BAC", "CHEMICAL TEST", "ADMIN PER SE",
			"INTERLOCK", "A/R", "ALCOHOL CONTENT",
		}},
		{Category: classify.RoadSafety, Keywords: []string{"POINT"}},
		{Category: classify.RoadSafety, Keywords: []string{
			"RECKLESS", "SPEEDING", "ACCIDENT", "FATAL", "VEHICULAR",
		}},
		{Category: classify.Other, Keywords: []string{
			"MEDICAL", "GRADUATED LICENSE", "GLS", "PROVISIONAL",
		}},
	},
}

func runMaryland(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".xlsx")
	if err != nil {
		return nil, err
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.ChildSupport, classify.Other)

	processed := 0
	for _, path := range files {
		if !strings.Contains(strings.ToLower(filepath.Base(path)), "raw data") {
			continue
		}
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := marylandWorkbook(b, path); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		processed++
	}
	if processed == 0 {
		return nil, fmt.Errorf("no raw data workbook in %s", dataDir)
	}
	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

func marylandWorkbook(b *table.Builder, path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return fmt.Errorf("no data rows")
	}

	idx := headerIndex(rows[0])
	yearIdx, okY := idx["Year_Posted"]
	monthIdx, okM := idx["Month_Posted"]
	if !okY || !okM {
		return fmt.Errorf("missing Year_Posted/Month_Posted columns")
	}
	sanctionIdx, hasSanction := idx["SanctionType_Decode"]
	decodeIdx, hasDecode := idx["fstrDecode2"]
	if !hasSanction && !hasDecode {
		return fmt.Errorf("no sanction type columns")
	}

	for _, row := range rows[1:] {
		year, okY := cellInt(cell(row, yearIdx))
		month, okM := cellInt(cell(row, monthIdx))
		if !okY || !okM || month < 1 || month > 12 {
			continue
		}

		var fields []string
		if hasSanction {
			fields = append(fields, cell(row, sanctionIdx))
		}
		if hasDecode {
			fields = append(fields, cell(row, decodeIdx))
		}

		b.Add(table.Bucket(year, month), marylandRules.ClassifyText(fields...), 1)
	}
	return nil
}
