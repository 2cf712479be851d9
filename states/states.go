// Package states holds one job per reporting jurisdiction. Each job reads its
// jurisdiction's raw export format from a data directory, classifies every
// suspension record with the jurisdiction's own rule table, and returns the
// finished monthly category table.
package states

import (
	"strings"

	"github.com/dlsproj/suspensions/table"
)

// Job is one jurisdiction's processing unit. Run reads the raw files from
// dataDir (the jurisdiction's own subdirectory) and returns the aggregated
// table, or an error when nothing usable was found.
type Job struct {
	Name string
	Dir  string
	Run  func(dataDir string) (*table.Table, error)
}

// All returns every jurisdiction job in output order.
func All() []Job {
	return []Job{
		{Name: "Colorado", Dir: "Colorado", Run: runColorado},
		{Name: "Illinois", Dir: "Illinois", Run: runIllinois},
		{Name: "Maryland", Dir: "Maryland", Run: runMaryland},
		{Name: "Minnesota", Dir: "Minnesota", Run: runMinnesota},
		{Name: "Nevada", Dir: "Nevada", Run: runNevada},
		{Name: "NewMexico", Dir: "New Mexico", Run: runNewMexico},
		{Name: "NewYork", Dir: "New York", Run: runNewYork},
		{Name: "Oregon", Dir: "Oregon", Run: runOregon},
		{Name: "Texas", Dir: "Texas", Run: runTexas},
		{Name: "Utah", Dir: "Utah", Run: runUtah},
		{Name: "Vermont", Dir: "Vermont", Run: runVermont},
		{Name: "Virginia", Dir: "Virginia", Run: runVirginia},
		{Name: "Washington", Dir: "Washington", Run: runWashington},
	}
}

// Find returns the job with the given name, matched case-insensitively.
func Find(name string) (Job, bool) {
	for _, job := range All() {
		if strings.EqualFold(job.Name, name) {
			return job, true
		}
	}
	return Job{}, false
}
