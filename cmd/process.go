package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dlsproj/suspensions/states"
	"github.com/dlsproj/suspensions/table"
)

// Process implements the "process" subcommand: run every jurisdiction job (or
// one, with --state), write one table per jurisdiction plus the combined
// All.csv, and report the jurisdictions that failed.
func Process(args []string) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	dataDir := fs.String("data", "data", "directory with one source subdirectory per jurisdiction")
	outDir := fs.String("out", "output", "directory for jurisdiction tables and All.csv")
	state := fs.String("state", "", "process a single jurisdiction by name")
	useCache := fs.Bool("use-cache", false, "reuse a jurisdiction's previous output when fresh enough")
	cacheMaxAge := fs.Float64("cache-max-age", 24, "cache freshness threshold in hours")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: suspensions process [data-dir] [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Process every jurisdiction's raw suspension exports into monthly\ncategory tables and the combined All.csv summary.\n\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*dataDir = fs.Arg(0)
	}

	jobs := states.All()
	if *state != "" {
		job, ok := states.Find(*state)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown jurisdiction %q; known: ", *state)
			for i, j := range jobs {
				if i > 0 {
					fmt.Fprint(os.Stderr, ", ")
				}
				fmt.Fprint(os.Stderr, j.Name)
			}
			fmt.Fprintln(os.Stderr)
			os.Exit(1)
		}
		jobs = []states.Job{job}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	maxAge := time.Duration(*cacheMaxAge * float64(time.Hour))
	summaries, failures := runJobs(jobs, *dataDir, *outDir, *useCache, maxAge)

	if len(summaries) > 0 {
		allPath := filepath.Join(*outDir, "All.csv")
		f, err := os.Create(allPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", allPath, err)
			os.Exit(1)
		}
		if err := table.WriteSummaries(f, summaries); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", allPath, err)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %v\n", allPath, err)
			os.Exit(1)
		}
	}

	fmt.Printf("%d of %d jurisdictions processed\n", len(summaries), len(jobs))
	for _, s := range summaries {
		fmt.Printf("  %-12s %-10s driving=%d fees=%d fta=%d child_support=%d road_safety=%d\n",
			s.State, s.Years, s.Driving, s.Fees, s.FTA, s.ChildSupport, s.RoadSafety)
	}
	if len(failures) > 0 {
		fmt.Printf("failed:\n")
		for _, f := range failures {
			fmt.Printf("  %s: %v\n", f.name, f.err)
		}
	}
	if len(summaries) == 0 {
		os.Exit(1)
	}
}

type jobFailure struct {
	name string
	err  error
}

// runJobs executes each jurisdiction in isolation: one failure never stops the
// run. A failed jurisdiction falls back to its previously written table when
// one exists; only jurisdictions with no usable output at all are reported
// failed.
func runJobs(jobs []states.Job, dataDir, outDir string, useCache bool, maxAge time.Duration) ([]table.Summary, []jobFailure) {
	var summaries []table.Summary
	var failures []jobFailure

	for _, job := range jobs {
		// Output files use the compact job name; summary rows carry the
		// spaced display name (Dir), "New Mexico" rather than "NewMexico".
		outPath := filepath.Join(outDir, job.Name+".csv")

		if useCache && freshEnough(outPath, maxAge) {
			if cached, err := table.ReadFile(outPath); err == nil {
				fmt.Fprintf(os.Stderr, "%s: using cached output\n", job.Name)
				summaries = append(summaries, cached.Summarize(job.Dir))
				continue
			}
		}

		fmt.Fprintf(os.Stderr, "== %s ==\n", job.Name)
		tbl, err := runWithProgress(job, filepath.Join(dataDir, job.Dir))
		if err != nil {
			if prev, readErr := table.ReadFile(outPath); readErr == nil {
				fmt.Fprintf(os.Stderr, "%s: %v; reusing previous output\n", job.Name, err)
				summaries = append(summaries, prev.Summarize(job.Dir))
				continue
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", job.Name, err)
			failures = append(failures, jobFailure{name: job.Name, err: err})
			continue
		}

		if err := tbl.WriteFile(outPath); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", job.Name, err)
			failures = append(failures, jobFailure{name: job.Name, err: err})
			continue
		}
		summaries = append(summaries, tbl.Summarize(job.Dir))
	}

	return summaries, failures
}

// runWithProgress runs a job with an advisory elapsed-time line every half
// minute, for the jurisdictions whose exports take minutes to stream.
func runWithProgress(job states.Job, dir string) (*table.Table, error) {
	done := make(chan struct{})
	go func() {
		start := time.Now()
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "  %s: still running, %s elapsed\n",
					job.Name, time.Since(start).Round(time.Second))
			}
		}
	}()
	defer close(done)
	return job.Run(dir)
}

func freshEnough(path string, maxAge time.Duration) bool {
	info, err := os.Stat(path)
	return err == nil && time.Since(info.ModTime()) < maxAge
}
