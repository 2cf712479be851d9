package states

import (
	"reflect"
	"testing"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/pdftext"
)

func TestVirginiaMonths(t *testing.T) {
	first := pdftext.Page{
		Number: 1,
		Lines: [][]string{
			{"COMPLIANCE SUMMARY REPORT"},
			{"FROM: 07/01/18", "TO: 06/30/19"},
		},
	}
	months, err := virginiaMonths(first)
	if err != nil {
		t.Fatalf("virginiaMonths: %v", err)
	}
	want := []string{
		"2018-07", "2018-08", "2018-09", "2018-10", "2018-11", "2018-12",
		"2019-01", "2019-02", "2019-03", "2019-04", "2019-05", "2019-06",
	}
	if !reflect.DeepEqual(months, want) {
		t.Errorf("months = %v, want %v", months, want)
	}
}

func TestVirginiaMonthsMissingRange(t *testing.T) {
	first := pdftext.Page{Number: 1, Lines: [][]string{{"NO DATES HERE"}}}
	if _, err := virginiaMonths(first); err == nil {
		t.Fatal("expected an error when the first page has no date range")
	}
}

func TestVirginiaOrderRow(t *testing.T) {
	m := virginiaOrderRow.FindStringSubmatch("CE02 FAIL TO APPEAR 1,234 567 45.9 667")
	if m == nil {
		t.Fatal("order row did not match")
	}
	if m[1] != "CE02" {
		t.Errorf("code = %q", m[1])
	}
	if m[2] != "FAIL TO APPEAR" {
		t.Errorf("description = %q", m[2])
	}
	if m[3] != "1,234" {
		t.Errorf("issued = %q", m[3])
	}

	if virginiaOrderRow.MatchString("TOTAL ORDERS 123") {
		t.Error("header totals should not match the order row shape")
	}
}

func TestVirginiaClassification(t *testing.T) {
	tests := []struct {
		code, description string
		want              classify.Category
	}{
		{"CE02", "FAIL TO APPEAR", classify.FTA},
		{"JA01", "SUSPENSION COURT FINE", classify.FTP},
		{"AP01", "ADMIN PER SE", classify.RoadSafety},
		{"CD40", "MEDICAL REVIEW", classify.Other},
		{"IM01", "UNINSURED MOTORIST", classify.FTP},
	}
	for _, tt := range tests {
		got := virginiaRules.ClassifyText(tt.code, tt.description)
		assertCategory(t, got, tt.want, tt.code+" "+tt.description)
	}
}
