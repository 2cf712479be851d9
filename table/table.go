// Package table turns classified suspension records into the monthly category
// tables the per-jurisdiction jobs emit, and derives the cross-jurisdiction
// summary rows from them.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/dlsproj/suspensions/classify"
)

// SentinelTotal is the time value of the grand-total row, and the bucket used
// by sources with no time axis at all.
const SentinelTotal = "total"

var bucketPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidBucket reports whether s is a well-formed YYYY-MM time bucket.
func ValidBucket(s string) bool {
	return bucketPattern.MatchString(s)
}

// Bucket formats a year/month pair as a YYYY-MM time bucket.
func Bucket(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Builder accumulates weighted (bucket, category) contributions. Weights stay
// fractional until the final pivot so that evenly-distributed annual totals
// sum back exactly before any rounding happens.
type Builder struct {
	categories []classify.Category
	cells      map[string]map[classify.Category]float64
}

// NewBuilder returns a Builder whose output table has exactly the given
// category columns, in the given order. Categories the jurisdiction never
// produces still appear as zero columns.
func NewBuilder(categories ...classify.Category) *Builder {
	return &Builder{
		categories: categories,
		cells:      make(map[string]map[classify.Category]float64),
	}
}

// Add records weight against (bucket, category). Buckets must be YYYY-MM or
// the "total" sentinel; callers drop records they cannot bucket.
func (b *Builder) Add(bucket string, cat classify.Category, weight float64) {
	row, ok := b.cells[bucket]
	if !ok {
		row = make(map[classify.Category]float64)
		b.cells[bucket] = row
	}
	row[cat] += weight
}

// Empty reports whether nothing has been accumulated.
func (b *Builder) Empty() bool {
	return len(b.cells) == 0
}

// Table pivots the accumulated cells into the final table: one row per bucket
// sorted chronologically, a total column per row, and a grand-total row. A
// pre-existing "total" sentinel bucket (from a source with no time axis)
// passes through into the grand-total row rather than being summed twice.
// Values are rounded to integers only here, after all summation.
func (b *Builder) Table() *Table {
	buckets := make([]string, 0, len(b.cells))
	for bucket := range b.cells {
		if bucket != SentinelTotal {
			buckets = append(buckets, bucket)
		}
	}
	sort.Strings(buckets)

	t := &Table{Categories: append([]classify.Category(nil), b.categories...)}

	grand := make(map[classify.Category]float64)
	for _, bucket := range buckets {
		row := Row{Time: bucket, Counts: make([]int64, len(b.categories))}
		for i, cat := range b.categories {
			v := b.cells[bucket][cat]
			grand[cat] += v
			row.Counts[i] = round(v)
			row.Total += row.Counts[i]
		}
		t.Rows = append(t.Rows, row)
	}

	// Sentinel contributions from no-time-axis sources join the grand total.
	if sentinel, ok := b.cells[SentinelTotal]; ok {
		for _, cat := range b.categories {
			grand[cat] += sentinel[cat]
		}
	}

	totalRow := Row{Time: SentinelTotal, Counts: make([]int64, len(b.categories))}
	for i, cat := range b.categories {
		totalRow.Counts[i] = round(grand[cat])
		totalRow.Total += totalRow.Counts[i]
	}
	t.Rows = append(t.Rows, totalRow)

	return t
}

func round(v float64) int64 {
	return int64(math.Round(v))
}

// Row is one output line: a YYYY-MM bucket (or the "total" sentinel), one
// count per category, and the row total.
type Row struct {
	Time   string
	Counts []int64
	Total  int64
}

// Table is a jurisdiction's finished monthly category table. Rows are sorted
// by time with the grand-total sentinel last.
type Table struct {
	Categories []classify.Category
	Rows       []Row
}

// HasCategory reports whether the table carries the given category column.
func (t *Table) HasCategory(cat classify.Category) bool {
	return t.categoryIndex(cat) >= 0
}

// Buckets returns the non-sentinel time buckets in row order.
func (t *Table) Buckets() []string {
	var buckets []string
	for _, row := range t.Rows {
		if row.Time != SentinelTotal {
			buckets = append(buckets, row.Time)
		}
	}
	return buckets
}

// Column returns one category's per-bucket values aligned with Buckets, or nil
// when the table has no such column.
func (t *Table) Column(cat classify.Category) []int64 {
	i := t.categoryIndex(cat)
	if i < 0 {
		return nil
	}
	var vals []int64
	for _, row := range t.Rows {
		if row.Time != SentinelTotal {
			vals = append(vals, row.Counts[i])
		}
	}
	return vals
}

// Totals returns the per-bucket row totals aligned with Buckets.
func (t *Table) Totals() []int64 {
	var vals []int64
	for _, row := range t.Rows {
		if row.Time != SentinelTotal {
			vals = append(vals, row.Total)
		}
	}
	return vals
}

func (t *Table) categoryIndex(cat classify.Category) int {
	for i, c := range t.Categories {
		if c == cat {
			return i
		}
	}
	return -1
}

// Write emits the table as CSV: header "time,<categories...>,total", one row
// per bucket, integer cells without decimal points.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"time"}
	for _, cat := range t.Categories {
		header = append(header, string(cat))
	}
	header = append(header, "total")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range t.Rows {
		record := []string{row.Time}
		for _, v := range row.Counts {
			record = append(record, strconv.FormatInt(v, 10))
		}
		record = append(record, strconv.FormatInt(row.Total, 10))
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, creating or truncating it.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads a table previously written by WriteFile. It is used both for
// the cached-output fast path and for chart rendering.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: empty table", path)
	}

	header := records[0]
	if len(header) < 3 || header[0] != "time" || header[len(header)-1] != "total" {
		return nil, fmt.Errorf("%s: unexpected header %v", path, header)
	}

	t := &Table{}
	for _, name := range header[1 : len(header)-1] {
		t.Categories = append(t.Categories, classify.Category(name))
	}

	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("%s: row has %d fields, want %d", path, len(record), len(header))
		}
		row := Row{Time: record[0], Counts: make([]int64, len(t.Categories))}
		for i := range t.Categories {
			v, err := strconv.ParseInt(record[i+1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: bad count %q: %w", path, record[i+1], err)
			}
			row.Counts[i] = v
		}
		total, err := strconv.ParseInt(record[len(record)-1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad total %q: %w", path, record[len(record)-1], err)
		}
		row.Total = total
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// YearRange returns "{min}-{max}" over the years of all parseable non-sentinel
// buckets, or "Unknown" when no bucket parses.
func (t *Table) YearRange() string {
	minYear, maxYear := 0, 0
	for _, row := range t.Rows {
		if !ValidBucket(row.Time) {
			continue
		}
		year, err := strconv.Atoi(row.Time[:4])
		if err != nil {
			continue
		}
		if minYear == 0 || year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}
	if minYear == 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%d-%d", minYear, maxYear)
}

// Summary is one row of the cross-jurisdiction table, with the categories
// remapped to their presentation names.
type Summary struct {
	State        string
	Years        string
	Driving      int64 // Other
	Fees         int64 // FTP
	FTA          int64
	ChildSupport int64 // zero when the jurisdiction folds support into FTP
	RoadSafety   int64
}

// Summarize derives the jurisdiction's summary row. The grand-total sentinel
// row is preferred; when absent, category totals are recomputed by summing the
// non-sentinel rows. A jurisdiction without a Child_Support column reports 0
// there, with support implicitly left inside Fees.
func (t *Table) Summarize(state string) Summary {
	totals := make(map[classify.Category]int64)

	if sentinel := t.sentinelRow(); sentinel != nil {
		for i, cat := range t.Categories {
			totals[cat] = sentinel.Counts[i]
		}
	} else {
		for _, row := range t.Rows {
			if row.Time == SentinelTotal {
				continue
			}
			for i, cat := range t.Categories {
				totals[cat] += row.Counts[i]
			}
		}
	}

	return Summary{
		State:        state,
		Years:        t.YearRange(),
		Driving:      totals[classify.Other],
		Fees:         totals[classify.FTP],
		FTA:          totals[classify.FTA],
		ChildSupport: totals[classify.ChildSupport],
		RoadSafety:   totals[classify.RoadSafety],
	}
}

func (t *Table) sentinelRow() *Row {
	for i := range t.Rows {
		if t.Rows[i].Time == SentinelTotal {
			return &t.Rows[i]
		}
	}
	return nil
}

// WriteSummaries writes the combined cross-jurisdiction table, one row per
// jurisdiction sorted by name.
func WriteSummaries(w io.Writer, summaries []Summary) error {
	sorted := append([]Summary(nil), summaries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].State < sorted[j].State })

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"State", "Years", "Driving", "Fees", "FTA", "Child support", "Road safety"}); err != nil {
		return err
	}
	for _, s := range sorted {
		record := []string{
			s.State, s.Years,
			strconv.FormatInt(s.Driving, 10),
			strconv.FormatInt(s.Fees, 10),
			strconv.FormatInt(s.FTA, 10),
			strconv.FormatInt(s.ChildSupport, 10),
			strconv.FormatInt(s.RoadSafety, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
