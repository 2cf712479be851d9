package states

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Minnesota's export is a very large UTF-16 CSV, one row per restraint, with
// an explicit sanction code column. The code table was assembled from the
// state's code book; text matching never applies.

var minnesotaRules = classify.Ruleset{
	Codes: map[string]classify.Category{
		"SD45": classify.FTA,
		"SA12": classify.FTA,

		"SD51": classify.FTP,
		"SD53": classify.FTP,
		"SD56": classify.FTP,

		"SA90": classify.RoadSafety, "SA98": classify.RoadSafety,
		"SA21": classify.RoadSafety, "SA22": classify.RoadSafety,
		"SA33": classify.RoadSafety, "SA91": classify.RoadSafety,
		"SA95": classify.RoadSafety, "SA11": classify.RoadSafety,
		"SA61": classify.RoadSafety,
		"SB20": classify.RoadSafety, "SB25": classify.RoadSafety,
		"SB26": classify.RoadSafety, "SB51": classify.RoadSafety,
		"SB22": classify.RoadSafety, "SB74": classify.RoadSafety,

		"SD35": classify.RoadSafety, "SD36": classify.RoadSafety,
		"SD39": classify.RoadSafety, "SD27": classify.RoadSafety,
		"SD29": classify.RoadSafety, "SD16": classify.RoadSafety,
		"SW00": classify.RoadSafety, "SW01": classify.RoadSafety,
		"SW72": classify.RoadSafety,
		"SU01": classify.RoadSafety, "SU03": classify.RoadSafety,
		"SU04": classify.RoadSafety, "SU06": classify.RoadSafety,
	},
}

// minnesotaCategory strips the export's "FAST." prefix before the table
// lookup. Conversion placeholders and unknown codes are Other.
func minnesotaCategory(code string) classify.Category {
	c := classify.NormalizeCode(code)
	if strings.HasPrefix(c, "FAST.") {
		c = c[5:]
	} else if strings.HasPrefix(c, "FAST") {
		c = c[4:]
	}
	if strings.HasPrefix(c, "CONVERSION") {
		return classify.Other
	}
	if cat, ok := minnesotaRules.Codes[c]; ok {
		return cat
	}
	return classify.Other
}

func runMinnesota(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".csv")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .csv files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.Other)

	for _, path := range files {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		err := forEachCSVRow(path, ',', true,
			[]string{"Sanction Code", "fdtmRestraintCommence"},
			func(get func(string) string) error {
				year, month, ok := parseISODate(get("fdtmRestraintCommence"))
				if !ok || !yearInWindow(year, 1970) {
					return nil
				}
				b.Add(table.Bucket(year, month), minnesotaCategory(get("Sanction Code")), 1)
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
