package states

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dlsproj/suspensions/classify"
	"github.com/dlsproj/suspensions/table"
)

// Texas publishes pre-aggregated enforcement-action counts, one row per
// month/action pair. The action vocabulary is the richest of the sources,
// hence the long rule table; ordering matters throughout (administrative CDL
// cancellations must not be swallowed by the CDL safety group, for one).

var texasRules = classify.Ruleset{
	Groups: []classify.Group{
		{Category: classify.ChildSupport, Keywords: []string{
			"CHILD SUPPORT", "DELINQUENT CHILD SUPPORT",
		}},
		{Category: classify.FTA, Keywords: []string{
			"FAILURE TO APPEAR", "FAIL TO APPEAR", "FTA",
			"OUT-OF-STATE FTA", "OUT OF STATE FTA",
		}},
		{Category: classify.FTP, Keywords: []string{
			"NO LIABILITY INSURANCE", "CANCELLED INSURANCE", "INSURANCE",
			"FINANCIAL RESPONSIBILITY", "SR SUSPENSION",
			"SURCHARGE DUE", "DEFAULT INSTALLMENT AGREEMENT", "DEFAULTED INSTALLMENT",
			"LIABILITY JUDGMENT", "OUT OF STATE JUDGMENT", "OUT-OF STATE JUDGMENT",
			"FAILURE TO COMPLY", "FAIL TO COMPLY", "FTC", "OUT-OF STATE FTC", "OUT OF STATE FTC",
			"OUT-OF-STATE FTP", "OUT OF STATE FTP",
			"DHS OVERPAYMENT",
			"DENIED RENEWAL OUT-OF STATE FTC", "DENIED RENEWAL OUT-OF-STATE FTP",
		}},
		{Category: classify.RoadSafety, Keywords: []string{"ALR"}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DWI", "DUI", "DRIVING WHILE INTOXICATED", "INTOXICATED", "INTOXICATION",
			"ALCOHOL", "BAC", "CHEMICAL TEST", "REFUSAL", "UNDER 21",
			"BOATING WHILE INTOXICATED", "BOATING REFUSAL", "BOATING FAILURE",
			"FLYING WHILE INTOXICATED", "AMUSEMENT RIDE INTOXICATION",
			"INTOXICATION ASSAULT", "INTOXICATION MANSLAUGHTER",
			"ADMINISTRATIVE PER SE", "IMPLIED CONSENT",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DRUG", "CONTROLLED SUBSTANCE", "DANGEROUS DRUG", "DRUG OFFENSE",
			"DWI EDUCATION PROGRAM", "DRUG EDUCATION PROGRAM",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"SERIOUS TRAFFIC VIOLATIONS", "HABITUAL VIOLATOR", "HARDSHIP VIOLATOR",
			"REPEAT OFFENDER", "REPEATED", "SUBSEQUENT",
			"CRASH SERIOUS", "CRASH", "FATAL ACC", "INJ ACC", "PDO ACC",
			"FSRA", "LVSC", "VEHICLE MANSLAUGHTER", "CRIMINAL NEGLIGENT HOMICIDE",
			"MURDER WITH MOTOR VEHICLE",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"FLEE POLICE", "EVADE ARREST", "EVADE DETENTION",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"FAILURE TO STOP AND RENDER AID", "FAIL TO STOP", "FAIL TO SLOW",
			"FAILED TO OBEY", "FAIL TO STOP FOR SCHOOL BUS",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"RACING", "PROHIBITION RACING",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"VIOLATE RESTRICTION", "RESTRICTION", "PROHIBITION", "ORDER OF PROHIBITION",
		}},
		{Category: classify.Other, Keywords: []string{
			"CANCELLED - CDL ONLY", "CANCELLED - CLP ONLY",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"CMV", "CDL", "CLP", "COMMERCIAL", "HAZMAT", "OUT OF SERVICE",
			"RAILROAD VIOLATION", "RR XING", "RR GATE", "INSUFFICIENT SPACE",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"DWLI", "DWLD", "DRIVING WHILE LICENSE", "DWL", "DRIVING WHILE LICENSE INVALID",
			"DRIVING WHILE LICENSE SUSPENDED", "DRIVING WHILE LICENSE REVOKED",
			"DRIVING WHILE LICENSE CANCELED", "DRIVING WHILE LICENSE DISQUALIFIED",
			"DRIVING WHILE LICENSE WITHDRAWN",
		}},
		{Category: classify.RoadSafety, Keywords: []string{
			"OUT OF STATE CONVICTION", "OUT-OF STATE CONVICTION",
			"OUT OF STATE CRASH", "OUT-OF STATE CRASH",
		}},
		{Category: classify.Other, Keywords: []string{
			"MEDICAL", "INCAPABLE", "TEST REQUIRED", "MEDICAL ADVISORY",
		}},
		{Category: classify.Other, Keywords: []string{
			"CANCELLED", "DENY ISSUANCE", "DENIED RENEWAL",
		}},
		{Category: classify.Other, Keywords: []string{"JUVENILE"}},
		{Category: classify.Other, Keywords: []string{
			"MINOR LICENSE VIOLATION", "TOBACCO MINOR EDUCATION COURSE",
		}},
		{Category: classify.Other, Keywords: []string{
			"FALSIFICATION", "FICTITIOUS", "MISREPRESENTATION", "POSSESS DECEPTIVE",
			"POSSESS MORE THAN ONE", "UNLAWFUL DISPLAY", "LEND/PERMIT USE",
		}},
		{Category: classify.Other, Keywords: []string{"CONTEMPT"}},
		{Category: classify.Other, Keywords: []string{"SEX OFFENDER"}},
		{Category: classify.Other, Keywords: []string{"SECTION 521.319"}},
		{Category: classify.Other, Keywords: []string{"NRVC"}},
	},
}

const texasSheet = "EAs & EA Status"

// texasMonth resolves the Month column: the full English name or anything
// starting with its first three letters. The column never holds bare digits,
// so none are accepted.
func texasMonth(name string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(name))
	for i, mn := range monthNames {
		if s == mn || strings.HasPrefix(s, mn[:3]) {
			return i + 1, true
		}
	}
	return 0, false
}

func runTexas(dataDir string) (*table.Table, error) {
	files, err := listFiles(dataDir, ".xlsx")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .xlsx files in %s", dataDir)
	}

	b := table.NewBuilder(classify.FTP, classify.FTA, classify.RoadSafety, classify.ChildSupport, classify.Other)

	for _, path := range files {
		fmt.Fprintf(os.Stderr, "processing %s\n", filepath.Base(path))
		if err := texasWorkbook(b, path); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	if b.Empty() {
		return nil, fmt.Errorf("no records extracted from %s", dataDir)
	}
	return b.Table(), nil
}

func texasWorkbook(b *table.Builder, path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := texasSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return fmt.Errorf("no data rows")
	}

	idx := headerIndex(rows[0])
	monthIdx, okMonth := idx["Month"]
	yearIdx, okYear := idx["Year of Enforcement Action"]
	actionIdx, okAction := idx["Enforcement Action"]
	countIdx, okCount := idx["Count"]
	if !okMonth || !okYear || !okAction || !okCount {
		return fmt.Errorf("missing required columns")
	}

	for _, row := range rows[1:] {
		year, ok := cellInt(cell(row, yearIdx))
		if !ok || year < 2010 || year > 2025 {
			continue
		}
		month, ok := texasMonth(cell(row, monthIdx))
		if !ok {
			continue
		}
		count, ok := cellFloat(cell(row, countIdx))
		if !ok {
			continue
		}
		cat := texasRules.ClassifyText(cell(row, actionIdx))
		b.Add(table.Bucket(year, month), cat, count)
	}
	return nil
}
