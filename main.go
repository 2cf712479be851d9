package main

import (
	"fmt"
	"os"

	"github.com/dlsproj/suspensions/cmd"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		cmd.Process(os.Args[2:])
	case "graphs":
		cmd.Graphs(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: suspensions <command>\n\nCommands:\n  process   Process raw suspension exports into monthly category tables\n  graphs    Render per-jurisdiction charts from the processed tables\n")
}
