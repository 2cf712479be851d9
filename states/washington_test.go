package states

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

func writeWashingtonWorkbook(t *testing.T, dir string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Data Set 1")
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Data Set 1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow(%d): %v", i+1, err)
		}
	}
	if err := f.SaveAs(filepath.Join(dir, "washington.xlsx")); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

func TestRunWashington(t *testing.T) {
	dir := t.TempDir()
	writeWashingtonWorkbook(t, dir, [][]interface{}{
		{"Suspension_Reason", "Suspension_Start"},
		{"FAILURE TO APPEAR", "2020-05-14"},
		{"DUI", "2020-05-03"},
		// An empty reason is a real record and counts as Other.
		{"", "2020-05-20"},
		// A misaligned row carries a date where the reason should be.
		{"2020-05-09 00:00:00", "2020-05-09"},
	})

	got, err := runWashington(dir)
	if err != nil {
		t.Fatalf("runWashington: %v", err)
	}

	want := &table.Table{
		Categories: []classify.Category{
			classify.FTP, classify.FTA, classify.RoadSafety,
			classify.ChildSupport, classify.Other,
		},
		Rows: []table.Row{
			{Time: "2020-05", Counts: []int64{0, 1, 1, 0, 1}, Total: 3},
			{Time: "total", Counts: []int64{0, 1, 1, 0, 1}, Total: 3},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("table = %+v, want %+v", got, want)
	}
}
