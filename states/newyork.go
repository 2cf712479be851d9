package states

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// New York's DMV sanctions export is a huge CSV with a free-text REASON and
// an EFFECTIVE date. The vocabulary is almost entirely non-payment and
// non-appearance; there is no road-safety signal in this feed.

var newYorkRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.FTA, Keywords: []string{
			"FAILURE TO ANSWER", "FAIL TO ANSWER", "FAILURE TO APPEAR",
			"FAIL TO APPEAR", "APPEARANCE", "SUMMONS",
		}},
		{Category: classify.FTP, Keywords: []string{
			"FAILURE TO PAY", "FAIL TO PAY", "FINE", "DISHONORED CHECK",
			"POST BOND",
		}},
	},
}

func runNewYork(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".csv")
	if err != nil {
		return nil, err
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.Other)

	processed := 0
	for _, path := range files {
		if !strings.HasPrefix(filepath.Base(path), "DMV_SANCTIONS_") {
			continue
		}
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		err := forEachCSVRow(path, ',', false,
			[]string{"REASON", "EFFECTIVE"},
			func(get func(string) string) error {
				year, month, ok := parseSlashDate(get("EFFECTIVE"))
				if !ok || !yearInWindow(year, 1970) {
					return nil
				}
				b.Add(table.Bucket(year, month), newYorkRules.ClassifyText(get("REASON")), 1)
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		processed++
	}
	if processed == 0 {
		return nil, fmt.Errorf("no DMV_SANCTIONS csv files in %s", dataDir)
	}
	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}
