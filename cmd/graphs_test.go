package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

func TestRenderChart(t *testing.T) {
	b := table.NewBuilder(classify.FTP, classify.FTA)
	for month := 1; month <= 12; month++ {
		b.Add(table.Bucket(2020, month), classify.FTP, float64(100+month))
		b.Add(table.Bucket(2020, month), classify.FTA, float64(50+month))
	}
	tbl := b.Table()

	path := filepath.Join(t.TempDir(), "Alpha.png")
	reform := Reform{State: "Alpha", Enacted: "2020-03", Effective: "2020-09", FTAType: "full"}
	if err := renderChart(path, "Alpha", tbl, reform, true); err != nil {
		t.Fatalf("renderChart: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}
}

func TestRenderChartNoMonthlyRows(t *testing.T) {
	// A sentinel-only table (no time axis in the source) has nothing to chart.
	b := table.NewBuilder(classify.Other)
	b.Add(table.SentinelTotal, classify.Other, 42)
	tbl := b.Table()

	path := filepath.Join(t.TempDir(), "Sentinel.png")
	if err := renderChart(path, "Sentinel", tbl, Reform{}, false); err == nil {
		t.Fatal("expected an error for a table with no monthly rows")
	}
}

func TestDateTicks(t *testing.T) {
	dates := make([]string, 24)
	for i := range dates {
		dates[i] = table.Bucket(2020+i/12, i%12+1)
	}
	ticks := dateTicks(dates).Ticks(0, 23)
	if len(ticks) != 24 {
		t.Fatalf("len(ticks) = %d, want 24", len(ticks))
	}

	labeled := 0
	for _, tick := range ticks {
		if tick.Label != "" {
			labeled++
		}
	}
	if labeled == 0 || labeled > 12 {
		t.Errorf("labeled ticks = %d, want 1..12", labeled)
	}
	if ticks[0].Label != "2020-01" {
		t.Errorf("first label = %q", ticks[0].Label)
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{42, "42"},
		{1500, "2k"},
		{2500000, "2.5M"},
	}
	for _, tt := range tests {
		if got := formatCompact(tt.in); got != tt.want {
			t.Errorf("formatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
