package states

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/pdftext"
	"github.com/dlsproj/suspensions/table"
)

// Virginia's compliance report is a tabular PDF: a FROM/TO date range on the
// first page, then one row per order code with issued/complied/outstanding
// counts. Issued counts are distributed evenly across the covered months.

var virginiaRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.FTA, Keywords: []string{
			"FAIL TO APPEAR", "FAILURE TO APPEAR", "FTA", "CE02", "JG02", "DEFAULT JUDGMENT",
		}},
		{Category: classify.FTP, Keywords: []string{
			"FAILURE TO PAY", "FAILED TO PAY", "FAIL TO PAY", "FTP",
			"FAIL PAY", "JA01", "CV91", "FM01", "FM03", "JG01",
			"UNSATISFIED JUDGMENT", "JUDGMENT", "FINE", "COST", "FEE",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DUI", "ADMIN PER SE", "AP01", "AP55", "INTOX", "ALCOHOL",
			"DRIVE INFLU", "DR AFTER CONSUME", "DR CONSUME", "CV12",
			"CV57", "CV58", "CV59", "CV61", "BLOOD TEST", "CV25", "CV29",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DRUG", "CONTROLLED SUBSTANCE",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"MANSLAUGHTER", "CV62", "MAIMING", "FELONY",
			"EXCESSIVE PT", "DI04", "POINT ACCUMULATION",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"RECKLESS", "SPEEDING", "ACCIDENT", "CRASH", "VIOLATION",
		}},
		{Category: classify.Other, Keywords: []string{
			"MEDICAL", "MD", "CD40", "CD41", "CD42", "CD43", "CD44", "CD45", "CD48",
		}},
		{Category: classify.FTP, Keywords: []string{
			"INSURANCE", "UNINS", "IM01", "IM02", "IM03", "IM04", "CV01",
		}},
	},
}

var virginiaDateRange = regexp.MustCompile(`FROM:\s*(\d{2})/(\d{2})/(\d{2})\s*TO:\s*(\d{2})/(\d{2})/(\d{2})`)

var virginiaOrderRow = regexp.MustCompile(`^([A-Z0-9]{2,5})\s+([A-Z][A-Z\s/-]+?)\s+(\d{1,3}(?:,\d{3})*|\d+)\s+(\d{1,3}(?:,\d{3})*|\d+)\s+([\d.]+)\s+(\d{1,3}(?:,\d{3})*|\d+)`)

func runVirginia(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".pdf")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .pdf files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.Other)

	for _, path := range files {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := virginiaPDF(b, path); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}

	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

func virginiaPDF(b *table.Builder, path string) error {
	pages, err := pdftext.ExtractPages(path)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages")
	}

	months, err := virginiaMonths(pages[0])
	if err != nil {
		return err
	}

	for _, page := range pages {
		for _, cells := range page.Lines {
			line := strings.TrimSpace(strings.Join(cells, " "))
			if len(line) < 10 {
				continue
			}
			m := virginiaOrderRow.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			code, description := m[1], m[2]
			issued, ok := cellFloat(m[3])
			if !ok || issued <= 0 {
				continue
			}

			cat := virginiaRules.ClassifyText(code, description)
			share := issued / float64(len(months))
			for _, bucket := range months {
				b.Add(bucket, cat, share)
			}
		}
	}
	return nil
}

// virginiaMonths reads the FROM/TO range from the first page and expands it
// into the YYYY-MM buckets it covers. The report's two-digit years are all
// post-2000.
func virginiaMonths(first pdftext.Page) ([]string, error) {
	var text strings.Builder
	for _, cells := range first.Lines {
		text.WriteString(strings.Join(cells, " "))
		text.WriteByte('\n')
	}

	m := virginiaDateRange.FindStringSubmatch(text.String())
	if m == nil {
		return nil, fmt.Errorf("no FROM/TO date range on first page")
	}
	fromMonth, fromYear := atoi(m[1]), 2000+atoi(m[3])
	toMonth, toYear := atoi(m[4]), 2000+atoi(m[6])

	var months []string
	y, mo := fromYear, fromMonth
	for y < toYear || (y == toYear && mo <= toMonth) {
		months = append(months, table.Bucket(y, mo))
		mo++
		if mo > 12 {
			mo = 1
			y++
		}
	}
	if len(months) == 0 {
		return nil, fmt.Errorf("empty FROM/TO range")
	}
	return months, nil
}

func atoi(s string) int {
	n := 0
	for _, ch := range s {
		n = n*10 + int(ch-'0')
	}
	return n
}
