package states

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Nevada only releases a fixed-width snapshot of license status counts by
// class, with no suspension reasons and no time axis beyond the report's
// as-of date. Everything lands in Other under the snapshot month; this is a
// documented limitation of the source, not of the pipeline.

var nevadaAsOfDate = regexp.MustCompile(`AS-OF DATE\s*:\s*(\d{4})-(\d{2})-(\d{2})`)
var nevadaNumbers = regexp.MustCompile(`\d+`)

// nevadaDefaultBucket is used when the snapshot header carries no as-of date.
const nevadaDefaultBucket = "2023-06"

var nevadaOtherStatuses = []string{
	"VALID", "EXPIRED", "SURRENDER", "CLEARED", "DECEASED",
	"CANCELLED", "DENIED", "OTHER", "PENDING",
}

func runNevada(dataDir string) (*table.Table, error) {
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
		bucket, count, err := nevadaSnapshot(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		b.Add(bucket, classify.Other, float64(count))
	}

	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

// nevadaSnapshot returns the snapshot's YYYY-MM bucket and the combined
// suspended plus revoked count. Section membership is tracked line by line:
// a status heading switches sections, and within the suspended and revoked
// sections the trailing number of each row is its class total.
func nevadaSnapshot(path string) (string, int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	content := string(data)

	bucket := nevadaDefaultBucket
	if m := nevadaAsOfDate.FindStringSubmatch(content); m != nil {
		bucket = m[1] + "-" + m[2]
	}

	var total int64
	inSection := false

	for _, line := range strings.Split(content, "\n") {
		upper := strings.ToUpper(line)

		switch {
		case strings.Contains(upper, "SUSPENDED") && !strings.Contains(upper, "LICENSE STATUS"):
			inSection = true
			continue
		case strings.Contains(upper, "REVOKED") && !strings.Contains(upper, "LICENSE STATUS"):
			inSection = true
			continue
		case containsAny(upper, nevadaOtherStatuses):
			inSection = false
			continue
		}

		if !inSection {
			continue
		}
		nums := nevadaNumbers.FindAllString(line, -1)
		if len(nums) == 0 {
			continue
		}
		// The last column is the row total.
		if v, err := strconv.ParseInt(nums[len(nums)-1], 10, 64); err == nil {
			total += v
		}
	}

	return bucket, total, nil
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
