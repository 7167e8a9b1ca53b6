package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kb2232/insightdex/cmd/insightdex/internal"
	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/fileutil"
	"github.com/kb2232/insightdex/internal/synthesis"
	"github.com/kb2232/insightdex/internal/tokens"
)

// handleSynthesize implements the synthesize subcommand
func handleSynthesize(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("synthesize", flag.ExitOnError)

	var output string
	var ids internal.StringList
	var findingsOnly bool

	fs.StringVar(&output, "output", "", "Write the result JSON to this file (default: stdout)")
	fs.Var(&ids, "interview", "Interview id to include (repeatable; default: all)")
	fs.BoolVar(&findingsOnly, "findings-only", false, "Stop after the findings document, skip the structured artifact")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    insightdex synthesize [options]

DESCRIPTION:
    Summarize each interview, synthesize the summaries into one
    cross-interview findings document, and generate a structured
    research artifact from it.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Synthesize everything
    insightdex synthesize -output findings.json

    # Only two interviews, findings document only
    insightdex synthesize -interview a1b2 -interview c3d4 -findings-only
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	comp, err := openComponents(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	transcripts, err := collectTranscripts(comp, ids)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if len(transcripts) == 0 {
		log.Fatalf("No interviews with transcripts to synthesize")
	}

	completion, err := synthesis.NewOpenAIClient(&cfg.Completion)
	if err != nil {
		log.Fatalf("%v", err)
	}
	counter := tokens.NewCounter()
	pipeline := synthesis.NewPipeline(completion, counter, &cfg.Synthesis)

	ctx := context.Background()
	var result *synthesis.Output

	if findingsOnly {
		summaries := pipeline.Summarizer.SummarizeAll(ctx, transcripts)
		if len(summaries) == 0 {
			log.Fatalf("No interview could be summarized")
		}
		findings, err := pipeline.Synthesizer.Synthesize(ctx, summaries)
		if err != nil {
			log.Fatalf("Synthesis failed: %v", err)
		}
		result = &synthesis.Output{Summaries: summaries, Findings: findings}
	} else {
		result, err = pipeline.Run(ctx, transcripts)
		if err != nil {
			log.Fatalf("Synthesis failed: %v", err)
		}
	}

	if output != "" {
		if err := fileutil.WriteJSONAtomic(output, result, true); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Wrote %s (%d interviews)\n", output, len(result.Summaries))
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
}

func collectTranscripts(comp *components, ids []string) ([]synthesis.Transcript, error) {
	var transcripts []synthesis.Transcript

	appendInterview := func(id string) error {
		iv, err := comp.store.LoadInterview(id)
		if err != nil {
			return err
		}
		if iv.Transcript == "" {
			return nil
		}
		transcripts = append(transcripts, synthesis.Transcript{
			InterviewID:     iv.ID,
			IntervieweeName: iv.IntervieweeName,
			Text:            iv.Transcript,
		})
		return nil
	}

	if len(ids) > 0 {
		for _, id := range ids {
			if err := appendInterview(id); err != nil {
				return nil, err
			}
		}
		return transcripts, nil
	}

	interviews, err := comp.store.List()
	if err != nil {
		return nil, err
	}
	for _, iv := range interviews {
		if iv.Transcript == "" {
			continue
		}
		transcripts = append(transcripts, synthesis.Transcript{
			InterviewID:     iv.ID,
			IntervieweeName: iv.IntervieweeName,
			Text:            iv.Transcript,
		})
	}
	return transcripts, nil
}
