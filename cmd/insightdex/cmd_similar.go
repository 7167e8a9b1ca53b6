package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kb2232/insightdex/internal/config"
)

// handleSimilar implements the similar subcommand
func handleSimilar(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)

	var limit int
	var jsonOutput bool
	fs.IntVar(&limit, "k", 0, "Number of results to return")
	fs.BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    insightdex similar [options] <chunk-id>

DESCRIPTION:
    Find indexed chunks similar to an already-indexed chunk, excluding
    the chunk itself.

EXAMPLES:
    insightdex similar 3f2a9c_4 -k 5
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: chunk id is required\n\n")
		fs.Usage()
		os.Exit(1)
	}
	chunkID := fs.Arg(0)

	if limit <= 0 {
		limit = cfg.Search.DefaultLimit
	}

	comp, err := openComponents(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	hits, err := comp.index.FindSimilar(chunkID, limit)
	if err != nil {
		log.Fatalf("Similarity lookup failed: %v", err)
	}
	printResults(enrichHits(comp.store, hits), jsonOutput)
}
