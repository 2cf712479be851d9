package table

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dlsproj/suspensions/classify"
)

func assertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBucket(t *testing.T) {
	assertEqual(t, Bucket(2022, 3), "2022-03")
	assertEqual(t, Bucket(1998, 11), "1998-11")
}

func TestValidBucket(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2022-01", true},
		{"2022-12", true},
		{"2022-13", false},
		{"2022-00", false},
		{"total", false},
		{"2022-1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidBucket(tt.in); got != tt.want {
			t.Errorf("ValidBucket(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuilderPivot(t *testing.T) {
	b := NewBuilder(classify.FTP, classify.FTA, classify.Other)
	b.Add("2022-02", classify.FTA, 1)
	b.Add("2022-01", classify.FTP, 3)
	b.Add("2022-01", classify.FTA, 2)
	b.Add("2022-01", classify.FTP, 1)

	got := b.Table()

	want := &Table{
		Categories: []classify.Category{classify.FTP, classify.FTA, classify.Other},
		Rows: []Row{
			{Time: "2022-01", Counts: []int64{4, 2, 0}, Total: 6},
			{Time: "2022-02", Counts: []int64{0, 1, 0}, Total: 1},
			{Time: "total", Counts: []int64{4, 3, 0}, Total: 7},
		},
	}
	assertEqual(t, got, want)
}

func TestRowTotalEqualsCategorySum(t *testing.T) {
	b := NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.ChildSupport, classify.Other)
	b.Add("2021-05", classify.FTP, 7)
	b.Add("2021-05", classify.RoadSafety, 2)
	b.Add("2021-06", classify.ChildSupport, 9)
	b.Add("2021-06", classify.Other, 4)

	for _, row := range b.Table().Rows {
		var sum int64
		for _, v := range row.Counts {
			sum += v
		}
		if row.Total != sum {
			t.Errorf("row %s: total %d != category sum %d", row.Time, row.Total, sum)
		}
	}
}

// Yearly totals spread evenly across twelve months must survive the round
// trip through fractional weights: 1200/12 per month rounds to 100 and the
// grand total stays 1200.
func TestFractionalWeightsConserveAnnualTotal(t *testing.T) {
	b := NewBuilder(classify.FTP, classify.Other)
	for m := 1; m <= 12; m++ {
		b.Add(Bucket(2019, m), classify.FTP, 1200.0/12.0)
	}
	tbl := b.Table()

	for _, row := range tbl.Rows[:12] {
		assertEqual(t, row.Counts[0], int64(100))
	}
	assertEqual(t, tbl.Rows[12].Time, SentinelTotal)
	assertEqual(t, tbl.Rows[12].Counts[0], int64(1200))
}

// A source with no time axis accumulates straight into the "total" bucket;
// the pivot must carry it into the grand-total row without double counting.
func TestSentinelBucketPassthrough(t *testing.T) {
	b := NewBuilder(classify.FTP, classify.FTA)
	b.Add(SentinelTotal, classify.FTP, 50)
	b.Add("2020-01", classify.FTA, 3)

	got := b.Table()
	want := &Table{
		Categories: []classify.Category{classify.FTP, classify.FTA},
		Rows: []Row{
			{Time: "2020-01", Counts: []int64{0, 3}, Total: 3},
			{Time: "total", Counts: []int64{50, 3}, Total: 53},
		},
	}
	assertEqual(t, got, want)
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := NewBuilder(classify.FTP, classify.FTA, classify.Other)
	b.Add("2022-01", classify.FTP, 4)
	b.Add("2022-03", classify.Other, 1)
	tbl := b.Table()

	path := filepath.Join(t.TempDir(), "state.csv")
	if err := tbl.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	assertEqual(t, got, tbl)
}

// The same accumulation must serialize to byte-identical CSV on every run.
func TestWriteIsDeterministic(t *testing.T) {
	build := func() *bytes.Buffer {
		b := NewBuilder(classify.FTP, classify.FTA, classify.ChildSupport, classify.Other)
		b.Add("2018-11", classify.FTA, 2)
		b.Add("2018-10", classify.FTP, 5)
		b.Add("2018-10", classify.ChildSupport, 1)
		var buf bytes.Buffer
		if err := b.Table().Write(&buf); err != nil {
			t.Fatalf("Write: %v", err)
		}
		return &buf
	}
	first, second := build(), build()
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("outputs differ:\n%s\n---\n%s", first, second)
	}
}

func TestWriteHeaderAndIntegerCells(t *testing.T) {
	b := NewBuilder(classify.FTP, classify.FTA, classify.Other)
	b.Add("2022-01", classify.FTP, 2.4)
	var buf bytes.Buffer
	if err := b.Table().Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assertEqual(t, lines[0], "time,FTP,FTA,Other,total")
	assertEqual(t, lines[1], "2022-01,2,0,0,2")
	if strings.Contains(buf.String(), ".") {
		t.Errorf("output contains a decimal point:\n%s", buf.String())
	}
}

func TestYearRange(t *testing.T) {
	tests := []struct {
		name    string
		buckets []string
		want    string
	}{
		{"spanning years", []string{"2015-03", "2019-12", "total"}, "2015-2019"},
		{"single year", []string{"2020-01", "2020-11"}, "2020-2020"},
		{"sentinel only", []string{"total"}, "Unknown"},
		{"empty", nil, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := &Table{Categories: []classify.Category{classify.FTP}}
			for _, bucket := range tt.buckets {
				tbl.Rows = append(tbl.Rows, Row{Time: bucket, Counts: []int64{0}})
			}
			assertEqual(t, tbl.YearRange(), tt.want)
		})
	}
}

func TestSummarizePrefersSentinelRow(t *testing.T) {
	tbl := &Table{
		Categories: []classify.Category{classify.FTP, classify.FTA, classify.RoadSafety, classify.ChildSupport, classify.Other},
		Rows: []Row{
			{Time: "2021-01", Counts: []int64{1, 1, 1, 1, 1}, Total: 5},
			{Time: "total", Counts: []int64{10, 20, 30, 40, 50}, Total: 150},
		},
	}
	got := tbl.Summarize("Maryland")
	want := Summary{
		State: "Maryland", Years: "2021-2021",
		Driving: 50, Fees: 10, FTA: 20, ChildSupport: 40, RoadSafety: 30,
	}
	assertEqual(t, got, want)
}

func TestSummarizeSumsRowsWithoutSentinel(t *testing.T) {
	tbl := &Table{
		Categories: []classify.Category{classify.FTP, classify.FTA, classify.Other},
		Rows: []Row{
			{Time: "2020-01", Counts: []int64{3, 1, 0}, Total: 4},
			{Time: "2020-02", Counts: []int64{2, 0, 5}, Total: 7},
		},
	}
	got := tbl.Summarize("New York")
	want := Summary{State: "New York", Years: "2020-2020", Driving: 5, Fees: 5, FTA: 1}
	assertEqual(t, got, want)
}

// Jurisdictions without a Child_Support column report 0 for it; Fees is not
// adjusted downward.
func TestSummarizeAbsentChildSupport(t *testing.T) {
	tbl := &Table{
		Categories: []classify.Category{classify.FTP, classify.FTA, classify.Other},
		Rows: []Row{
			{Time: "total", Counts: []int64{100, 10, 5}, Total: 115},
		},
	}
	got := tbl.Summarize("Colorado")
	assertEqual(t, got.ChildSupport, int64(0))
	assertEqual(t, got.Fees, int64(100))
}

func TestWriteSummariesSortedByState(t *testing.T) {
	summaries := []Summary{
		{State: "Washington", Years: "2016-2024", Fees: 9},
		{State: "Colorado", Years: "2019-2023", Fees: 7, FTA: 2},
	}
	var buf bytes.Buffer
	if err := WriteSummaries(&buf, summaries); err != nil {
		t.Fatalf("WriteSummaries: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"State,Years,Driving,Fees,FTA,Child support,Road safety",
		"Colorado,2019-2023,0,7,2,0,0",
		"Washington,2016-2024,0,9,0,0,0",
	}
	assertEqual(t, lines, want)
}

func TestBucketsColumnTotals(t *testing.T) {
	b := NewBuilder(classify.FTP, classify.FTA)
	b.Add("2020-01", classify.FTP, 3)
	b.Add("2020-02", classify.FTA, 5)
	tbl := b.Table()

	assertEqual(t, tbl.Buckets(), []string{"2020-01", "2020-02"})
	assertEqual(t, tbl.Column(classify.FTP), []int64{3, 0})
	assertEqual(t, tbl.Column(classify.FTA), []int64{0, 5})
	assertEqual(t, tbl.Totals(), []int64{3, 5})
	if tbl.Column(classify.ChildSupport) != nil {
		t.Error("absent column should be nil")
	}
}
