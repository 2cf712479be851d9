package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/dlsproj/suspensions/table"
)

// Reform is one jurisdiction's debt-based-suspension reform annotation:
// when the reform was enacted and took effect, and which categories it ended.
type Reform struct {
	State     string
	Enacted   string // YYYY-MM, empty when unknown
	Effective string // YYYY-MM, empty when unknown
	FTPType   string
	FTAType   string
}

// IncludesFTA reports whether the reform covers failure-to-appear suspensions.
func (r Reform) IncludesFTA() bool {
	return r.FTAType != ""
}

var reformFields = regexp.MustCompile(`[,\t]+`)
var reformMonthYear = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)

// LoadReforms parses the reform annotation file: a header line, then one
// comma- or tab-separated row per jurisdiction with enacted date, effective
// date, and the reform type per category. An em dash marks an absent value.
func LoadReforms(path string) (map[string]Reform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reforms := make(map[string]Reform)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if i == 0 || line == "" {
			continue
		}
		parts := reformFields.Split(line, -1)
		if len(parts) < 6 {
			return nil, fmt.Errorf("%s line %d: %d fields, want at least 6", path, i+1, len(parts))
		}
		r := Reform{
			State:     strings.TrimSpace(parts[0]),
			Enacted:   reformMonth(parts[1]),
			Effective: reformMonth(parts[3]),
			FTPType:   reformValue(parts[4]),
			FTAType:   reformValue(parts[5]),
		}
		reforms[r.State] = r
	}
	return reforms, nil
}

func reformMonth(s string) string {
	m := reformMonthYear.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return ""
	}
	return table.Bucket(year, month)
}

func reformValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "—" || s == "-" {
		return ""
	}
	return s
}

// FindReform resolves a jurisdiction's annotation row. The file spells state
// names with spaces while the job names run them together, so lookup tries the
// exact name first and then a normalized form.
func FindReform(reforms map[string]Reform, state string) (Reform, bool) {
	if r, ok := reforms[state]; ok {
		return r, true
	}
	norm := normalizeStateName(state)
	for name, r := range reforms {
		if normalizeStateName(name) == norm {
			return r, true
		}
	}
	return Reform{}, false
}

func normalizeStateName(s string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(s) {
		if ch >= 'a' && ch <= 'z' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
