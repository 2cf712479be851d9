package states

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Vermont's export is pipe-delimited with short suspension codes and compact
// numeric dates, either YYMMDD (two-digit years pivot at 50) or YYYYMMDD.

var vermontRules = classify.Ruleset{
	Codes: map[string]classify.Category{
		"FAF": classify.FTA,
		"FAM": classify.FTA,
		"FAD": classify.FTA,

		"FAP": classify.FTP,
		"UJ":  classify.FTP,
		"MFC": classify.FTP,

		"DW1": classify.RoadSafety, "DW2": classify.RoadSafety,
		"DW3": classify.RoadSafety,
		"CA1": classify.RoadSafety, "CA2": classify.RoadSafety,
		"DA1": classify.RoadSafety, "DA2": classify.RoadSafety,
		"CT1": classify.RoadSafety,
		"16C": classify.RoadSafety, "21A": classify.RoadSafety,

		"PTS": classify.RoadSafety, "PTC": classify.RoadSafety,

		"CNC": classify.RoadSafety, "CIV": classify.RoadSafety,
		"CIG": classify.RoadSafety, "CM1": classify.RoadSafety,
		"CX1": classify.RoadSafety,
	},
}

// parseVermontDate handles the export's compact date formats and rejects the
// zero sentinels.
func parseVermontDate(s string) (year, month int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || dateSentinels[s] || len(s) < 6 {
		return 0, 0, false
	}

	var y, m, d int
	var err1, err2, err3 error
	switch len(s) {
	case 6:
		y, err1 = strconv.Atoi(s[:2])
		m, err2 = strconv.Atoi(s[2:4])
		d, err3 = strconv.Atoi(s[4:6])
		if y > 50 {
			y += 1900
		} else {
			y += 2000
		}
	case 8:
		y, err1 = strconv.Atoi(s[:4])
		m, err2 = strconv.Atoi(s[4:6])
		d, err3 = strconv.Atoi(s[6:8])
	default:
		return 0, 0, false
	}
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, false
	}
	return y, m, true
}

func runVermont(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".txt")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .txt files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.Other)

	for _, path := range files {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		err := forEachCSVRow(path, '|', false,
			[]string{"SUSPENSION_CODE", "EFFECTIVE_DATE"},
			func(get func(string) string) error {
				year, month, ok := parseVermontDate(get("EFFECTIVE_DATE"))
				if !ok || !yearInWindow(year, 1980) {
					return nil
				}
				b.Add(table.Bucket(year, month), vermontRules.Classify(get("SUSPENSION_CODE")), 1)
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
