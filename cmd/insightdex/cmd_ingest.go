package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/splitter"
	"github.com/kb2232/insightdex/internal/store"
	"github.com/kb2232/insightdex/internal/vecindex"
)

// handleIngest implements the ingest subcommand
func handleIngest(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)

	var project, name, id, interviewer string
	var chunkWords int

	fs.StringVar(&project, "project", "", "Project name for the interview")
	fs.StringVar(&name, "name", "", "Interviewee name")
	fs.StringVar(&id, "id", "", "Interview id (default: generated)")
	fs.StringVar(&interviewer, "interviewer", "", "Speaker name whose turns are excluded from indexing")
	fs.IntVar(&chunkWords, "chunk-words", 150, "Maximum words per chunk")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    insightdex ingest [options] <transcript-file>

DESCRIPTION:
    Split a transcript into chunks, embed and index them, and store the
    processed interview document.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Ingest with project and participant metadata
    insightdex ingest -project "Checkout Study" -name "Dana" session1.txt

    # Keep the full transcript but index only the participant's turns
    insightdex ingest -interviewer "Alex" session1.txt

    # Smaller chunks
    insightdex ingest -chunk-words 80 session1.txt
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: transcript file is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read transcript: %v", err)
	}

	transcript := prepareTranscript(string(data))
	if transcript == "" {
		log.Fatalf("Transcript %s is empty", path)
	}

	comp, err := openComponents(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if id == "" {
		id = uuid.NewString()
	}

	// The stored transcript keeps the interviewer's questions; only the
	// chunks fed to the index drop them.
	indexText := transcript
	if interviewer != "" {
		indexText = splitter.StripSpeakerTurns(transcript, interviewer)
		if indexText == "" {
			log.Fatalf("Transcript %s has no turns outside speaker %q", path, interviewer)
		}
	}

	pieces := splitter.Split(indexText, chunkWords)
	if len(pieces) == 0 {
		log.Fatalf("Transcript %s produced no chunks", path)
	}

	chunks := make([]store.Chunk, 0, len(pieces))
	entries := make([]vecindex.Entry, 0, len(pieces))
	for i, text := range pieces {
		chunkID := fmt.Sprintf("%s_%d", id, i)
		chunks = append(chunks, store.Chunk{
			ID:          chunkID,
			InterviewID: id,
			Text:        text,
			Metadata: store.ChunkMetadata{
				Emotion:          "neutral",
				EmotionIntensity: 0.5,
			},
		})
		entries = append(entries, vecindex.Entry{
			ChunkID:     chunkID,
			InterviewID: id,
			Text:        text,
		})
	}

	iv := &store.Interview{
		ID:              id,
		ProjectName:     project,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		Status:          "processed",
		IntervieweeName: name,
		Transcript:      transcript,
		Chunks:          chunks,
	}
	if err := comp.store.SaveInterview(iv); err != nil {
		log.Fatalf("Failed to save interview: %v", err)
	}

	ctx := context.Background()
	bar := progressbar.Default(int64(len(entries)), "indexing")
	batchSize := cfg.Embedding.BatchSize
	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := comp.index.AddBatch(ctx, entries[start:end]); err != nil {
			log.Fatalf("Failed to index chunks %d-%d: %v", start, end, err)
		}
		_ = bar.Add(end - start)
	}
	_ = bar.Finish()

	fmt.Printf("Ingested %s: interview %s, %d chunks\n", filepath.Base(path), id, len(chunks))
}

var crlfRe = regexp.MustCompile(`\r\n?`)
var blankRunsRe = regexp.MustCompile(`\n{3,}`)

// prepareTranscript normalizes line endings and collapses runs of blank
// lines so paragraph detection in the splitter behaves.
func prepareTranscript(text string) string {
	text = crlfRe.ReplaceAllString(text, "\n")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
