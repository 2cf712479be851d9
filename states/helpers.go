package states

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// listFiles returns the sorted paths of the regular files in dir with the
// given extension (".xlsx", ".txt", ...).
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var monthDigits = regexp.MustCompile(`(?:^|[^0-9])([1-9]|1[0-2])(?:[^0-9]|$)`)

// monthFromName resolves a month number from a sheet or column label: the
// full English name, any prefix starting with its first three letters, or a
// standalone 1-12 digit.
func monthFromName(name string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(name))
	for i, mn := range monthNames {
		if s == mn || strings.HasPrefix(s, mn[:3]) {
			return i + 1, true
		}
	}
	if m := monthDigits.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	return 0, false
}

// yearFromFilename pulls the first 4-digit token out of a file name's stem.
func yearFromFilename(path string) (int, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, tok := range regexp.MustCompile(`[ _\-.]+`).Split(stem, -1) {
		if len(tok) == 4 {
			if y, err := strconv.Atoi(tok); err == nil {
				return y, true
			}
		}
	}
	return 0, false
}

// dateSentinels are placeholder values some exports write for "no date".
var dateSentinels = map[string]bool{
	"9999-12-31": true,
	"0000-00-00": true,
	"000000":     true,
	"0":          true,
}

// parseISODate parses YYYY-MM-DD, with an optional trailing time component,
// and rejects sentinel values. Day validity is checked loosely (1-31), as the
// sources do.
func parseISODate(s string) (year, month int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" || dateSentinels[s] {
		return 0, 0, false
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if dateSentinels[s] {
		return 0, 0, false
	}
	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		return 0, 0, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, false
	}
	return y, m, true
}

// parseSlashDate parses M/D/YYYY (or MM/DD/YYYY).
func parseSlashDate(s string) (year, month int, ok bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return 0, 0, false
	}
	m, err1 := strconv.Atoi(parts[0])
	d, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, false
	}
	return y, m, true
}

// yearInWindow reports whether a record's year falls inside the plausible
// reporting window. The upper bound is exclusive of 2025: the exports carry
// far-future placeholder dates that must not produce buckets.
func yearInWindow(year, minYear int) bool {
	return year >= minYear && year < 2025
}

// cellFloat parses a numeric spreadsheet cell, tolerating thousands commas.
func cellFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cellInt parses an integer-valued spreadsheet cell, accepting float
// renderings like "2019.0".
func cellInt(s string) (int, bool) {
	v, ok := cellFloat(s)
	if !ok || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}

// cell returns row[i], or "" when the row is shorter than the header.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// headerIndex maps trimmed header names to column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

// findColumn returns the first header column whose lowercased name contains
// every needle.
func findColumn(header []string, needles ...string) (int, bool) {
	for i, name := range header {
		lower := strings.ToLower(name)
		all := true
		for _, n := range needles {
			if !strings.Contains(lower, n) {
				all = false
				break
			}
		}
		if all {
			return i, true
		}
	}
	return -1, false
}

// progressInterval is how often the streaming CSV reader reports row counts
// for the very large exports.
const progressInterval = 5_000_000

// forEachCSVRow streams a delimited file row by row, calling fn with a field
// accessor keyed by header name. utf16Encoded selects UTF-16 decoding for
// exports written by Windows tooling. Rows with a field count different from
// the header are skipped rather than failing the whole file.
func forEachCSVRow(path string, comma rune, utf16Encoded bool, required []string, fn func(get func(string) string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var src io.Reader = f
	if utf16Encoded {
		src = transform.NewReader(f, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	}

	r := csv.NewReader(src)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header of %s: %w", filepath.Base(path), err)
	}
	idx := headerIndex(header)
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return fmt.Errorf("%s: missing column %q", filepath.Base(path), name)
		}
	}

	var rows int64
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// Malformed row, drop it and keep reading.
			continue
		}
		get := func(name string) string {
			i, ok := idx[name]
			if !ok {
				return ""
			}
			return cell(record, i)
		}
		if err := fn(get); err != nil {
			return err
		}
		rows++
		if rows%progressInterval == 0 {
			fmt.Fprintf(os.Stderr, "  %s: %d rows\n", filepath.Base(path), rows)
		}
	}
}
