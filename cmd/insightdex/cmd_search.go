package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/store"
	"github.com/kb2232/insightdex/internal/vecindex"
)

// handleSearch implements the search subcommand
func handleSearch(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)

	var mode string
	var limit int
	var jsonOutput bool

	fs.StringVar(&mode, "mode", "index", "Search mode: index, text, semantic, emotion, theme, insight")
	fs.IntVar(&limit, "k", 0, "Number of results to return")
	fs.BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    insightdex search [options] "<query>"

DESCRIPTION:
    Search ingested interviews. The default "index" mode ranks whole
    interviews via the embedding index and enriches hits from the store.
    The other modes scan the store directly.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Ranked search over the embedding index
    insightdex search "trouble finding the export button"

    # Brute-force semantic scan of the store
    insightdex search -mode semantic "frustrations with onboarding"

    # Emotion group search
    insightdex search -mode emotion "frustration"

    # Theme search with JSON output
    insightdex search -mode theme "team dynamics" -json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: search query is required\n\n")
		fs.Usage()
		os.Exit(1)
	}
	query := fs.Arg(0)

	if limit <= 0 {
		limit = cfg.Search.DefaultLimit
	}

	comp, err := openComponents(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()

	if mode == "index" {
		hits, err := comp.index.Search(ctx, query, limit)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		results := enrichHits(comp.store, hits)
		printResults(results, jsonOutput)
		return
	}

	parsed, err := store.ParseMode(mode)
	if err != nil {
		log.Fatalf("%v", err)
	}
	results, err := comp.store.Search(ctx, query, parsed, limit)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	printResults(results, jsonOutput)
}

// enrichHits joins index hits with store metadata. Hits whose interview
// document is missing fall back to the text carried in the index.
func enrichHits(st *store.Store, hits []vecindex.Hit) []store.Result {
	results := make([]store.Result, 0, len(hits))
	for _, h := range hits {
		r, err := st.ResultForChunk(h.InterviewID, h.ChunkID, h.Score)
		if err != nil {
			r = store.Result{
				InterviewID: h.InterviewID,
				ChunkID:     h.ChunkID,
				Content:     h.Text,
				Similarity:  h.Score,
			}
		}
		results = append(results, r)
	}
	return results
}

// truncate shortens s to at most max runes, cutting on a rune boundary
// so multibyte characters are never split.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func printResults(results []store.Result, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("Failed to encode results: %v", err)
		}
		return
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	pretty := term.IsTerminal(int(os.Stdout.Fd()))
	for i, r := range results {
		who := r.IntervieweeName
		if who == "" {
			who = r.InterviewID
		}
		if pretty {
			fmt.Printf("%d. [%.3f] %s | %s\n", i+1, r.Similarity, who, r.ProjectName)
		} else {
			fmt.Printf("%d\t%.3f\t%s\t%s\n", i+1, r.Similarity, r.InterviewID, r.ChunkID)
		}
		content := r.Content
		if pretty {
			content = truncate(content, 240)
		}
		fmt.Printf("   %s\n", strings.ReplaceAll(content, "\n", " "))
		if pretty && (r.Metadata.Emotion != "" || len(r.Metadata.Themes) > 0) {
			fmt.Printf("   emotion=%s(%.2f) themes=%s\n",
				r.Metadata.Emotion, r.Metadata.EmotionIntensity, strings.Join(r.Metadata.Themes, ","))
		}
	}
}
