package synthesis

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/splitter"
	"github.com/kb2232/insightdex/internal/tokens"
)

// pieceSeparator joins the per-piece summaries of one long transcript.
const pieceSeparator = "\n\n---\n\n"

// Transcript is one interview's raw text plus identity, the input to
// stage one of the pipeline.
type Transcript struct {
	InterviewID     string
	IntervieweeName string
	Text            string
}

// InterviewSummary is stage one's output for one interview.
type InterviewSummary struct {
	InterviewID     string `json:"interview_id"`
	IntervieweeName string `json:"interviewee_name,omitempty"`
	Summary         string `json:"summary"`
}

// Summarizer reduces a transcript of any length to one bounded summary.
// Transcripts over budget are split into paragraph-bounded pieces that
// are summarized independently and joined, so total token cost scales
// with transcript length, never with a single call's context window.
type Summarizer struct {
	client  CompletionClient
	counter *tokens.Counter
	cfg     *config.SynthesisConfig
}

// NewSummarizer creates a summarizer.
func NewSummarizer(client CompletionClient, counter *tokens.Counter, cfg *config.SynthesisConfig) *Summarizer {
	return &Summarizer{client: client, counter: counter, cfg: cfg}
}

// Summarize reduces one transcript to a single summary string.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("transcript is empty")
	}

	budget, err := s.counter.AvailableForPayload(
		summaryInstructions, s.cfg.SummaryModel,
		s.cfg.SummaryMaxInputTokens, s.cfg.SummaryOutputTokens)
	if err != nil {
		return "", err
	}

	if s.counter.Count(transcript, s.cfg.SummaryModel) <= budget {
		return s.summarizeOnce(ctx, transcript)
	}

	measure := func(t string) int { return s.counter.Count(t, s.cfg.SummaryModel) }
	pieces := splitter.SplitFunc(transcript, budget, measure)

	summaries := make([]string, 0, len(pieces))
	for i, piece := range pieces {
		summary, err := s.summarizeOnce(ctx, piece)
		if err != nil {
			return "", fmt.Errorf("failed to summarize piece %d/%d: %w", i+1, len(pieces), err)
		}
		summaries = append(summaries, summary)
	}

	return strings.Join(summaries, pieceSeparator), nil
}

func (s *Summarizer) summarizeOnce(ctx context.Context, text string) (string, error) {
	out, err := s.client.Complete(ctx, Request{
		Model:           s.cfg.SummaryModel,
		Instructions:    summaryInstructions,
		Input:           text,
		MaxOutputTokens: s.cfg.SummaryOutputTokens,
		Temperature:     0.3,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty summary", ErrMalformedResponse)
	}
	return out, nil
}

// SummarizeAll summarizes each transcript, skipping and logging
// failures so one bad interview never aborts the whole batch.
func (s *Summarizer) SummarizeAll(ctx context.Context, transcripts []Transcript) []InterviewSummary {
	summaries := make([]InterviewSummary, 0, len(transcripts))
	for _, t := range transcripts {
		summary, err := s.Summarize(ctx, t.Text)
		if err != nil {
			log.Printf("skipping interview %s: %v", t.InterviewID, err)
			continue
		}
		summaries = append(summaries, InterviewSummary{
			InterviewID:     t.InterviewID,
			IntervieweeName: t.IntervieweeName,
			Summary:         summary,
		})
	}
	return summaries
}
