// Package classify maps a suspension record's free-text reason (and, for some
// jurisdictions, an explicit action code) to one of a fixed set of categories.
// Each jurisdiction owns its own Ruleset; the rule tables are data, and their
// order is significant because source vocabularies overlap (e.g. "failure to
// comply" is FTA in one state and FTP in another).
package classify

import "strings"

// Category is one of the fixed suspension-reason categories. The string values
// double as the column names of the output tables.
type Category string

const (
	FTP          Category = "FTP"
	FTA          Category = "FTA"
	RoadSafety   Category = "road_safety"
	ChildSupport Category = "Child_Support"
	Other        Category = "Other"
)

// Group is an ordered list of keywords that all resolve to one category.
// Keywords must be uppercase; matching is substring containment against the
// uppercased record text, not word-bounded.
type Group struct {
	Category Category
	Keywords []string
}

// Ruleset is one jurisdiction's classification table: an explicit code
// override map checked first, then keyword groups checked in order. A record
// that matches nothing is Other.
type Ruleset struct {
	// Codes maps normalized (trimmed, uppercased) action codes to categories.
	// A code hit wins over any keyword in the record text.
	Codes map[string]Category

	// Groups are evaluated in order; within a group, keywords are tried in
	// order and the first containment match decides the category.
	Groups []Group
}

// NormalizeCode trims and uppercases an action code for table lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Classify resolves a category for one record. code may be empty when the
// jurisdiction has no explicit code table; fields are the record's available
// text fields, concatenated for keyword matching.
func (rs Ruleset) Classify(code string, fields ...string) Category {
	if code != "" && rs.Codes != nil {
		if cat, ok := rs.Codes[NormalizeCode(code)]; ok {
			return cat
		}
	}
	return rs.ClassifyText(fields...)
}

// ClassifyText runs only the keyword groups against the concatenated fields.
func (rs Ruleset) ClassifyText(fields ...string) Category {
	text := JoinUpper(fields...)
	for _, g := range rs.Groups {
		for _, kw := range g.Keywords {
			if strings.Contains(text, kw) {
				return g.Category
			}
		}
	}
	return Other
}

// JoinUpper concatenates the non-empty fields with single spaces and
// uppercases the result, the canonical form keyword groups match against.
func JoinUpper(fields ...string) string {
	var parts []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.ToUpper(strings.Join(parts, " "))
}
