package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/store"
)

// handleList implements the list subcommand
func handleList(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var jsonOutput bool
	fs.BoolVar(&jsonOutput, "json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    insightdex list [options]

DESCRIPTION:
    List stored interviews, most recent first.
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	comp, err := openComponents(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	interviews, err := comp.store.List()
	if err != nil {
		log.Fatalf("Failed to list interviews: %v", err)
	}

	if jsonOutput {
		type row struct {
			ID              string `json:"id"`
			ProjectName     string `json:"project_name"`
			IntervieweeName string `json:"interviewee_name"`
			CreatedAt       string `json:"created_at"`
			Status          string `json:"status"`
			Chunks          int    `json:"chunks"`
		}
		rows := make([]row, 0, len(interviews))
		for _, iv := range interviews {
			rows = append(rows, row{
				ID:              iv.ID,
				ProjectName:     iv.ProjectName,
				IntervieweeName: iv.IntervieweeName,
				CreatedAt:       iv.CreatedAt,
				Status:          iv.Status,
				Chunks:          len(iv.Chunks),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			log.Fatalf("Failed to encode: %v", err)
		}
		return
	}

	if len(interviews) == 0 {
		fmt.Println("No interviews.")
		return
	}
	for _, iv := range interviews {
		who := iv.IntervieweeName
		if who == "" {
			who = "(unknown)"
		}
		fmt.Printf("%s  %-20s  %s  %d chunks  %s\n", iv.ID, who, iv.ProjectName, len(iv.Chunks), iv.CreatedAt)
	}
}

// handleRemove implements the remove subcommand
func handleRemove(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    insightdex remove <interview-id>

DESCRIPTION:
    Delete an interview document and remove its chunks from the
    embedding index.
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: interview id is required\n\n")
		fs.Usage()
		os.Exit(1)
	}
	id := fs.Arg(0)

	comp, err := openComponents(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := comp.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Fatalf("Interview %s not found", id)
		}
		log.Fatalf("Failed to remove interview: %v", err)
	}
	fmt.Printf("Removed interview %s\n", id)
}

// handleStats implements the stats subcommand
func handleStats(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	var jsonOutput bool
	fs.BoolVar(&jsonOutput, "json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    insightdex stats [options]

DESCRIPTION:
    Show statistics about the store and the embedding index.
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	comp, err := openComponents(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	interviewCount, err := comp.store.Count()
	if err != nil {
		log.Fatalf("Failed to count interviews: %v", err)
	}
	chunkCount := comp.index.Count()
	indexed := comp.index.Interviews()

	if jsonOutput {
		stats := map[string]interface{}{
			"interviews":         interviewCount,
			"indexed_chunks":     chunkCount,
			"indexed_interviews": len(indexed),
			"dimensions":         cfg.Embedding.Dimensions,
			"index_path":         cfg.Index.Path,
			"store_path":         cfg.Store.Path,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			log.Fatalf("Failed to encode: %v", err)
		}
		return
	}

	fmt.Printf("Interviews:          %d\n", interviewCount)
	fmt.Printf("Indexed chunks:      %d\n", chunkCount)
	fmt.Printf("Indexed interviews:  %d\n", len(indexed))
	fmt.Printf("Dimensions:          %d\n", cfg.Embedding.Dimensions)
	fmt.Printf("Index path:          %s\n", cfg.Index.Path)
	fmt.Printf("Store path:          %s\n", cfg.Store.Path)
}
