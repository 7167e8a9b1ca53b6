package synthesis

import (
	"context"
	"fmt"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/tokens"
)

// Pipeline chains the three stages: per-interview summarization,
// cross-interview synthesis, final structured generation. Each stage
// consumes only the previous stage's output, which bounds total token
// cost regardless of corpus size.
type Pipeline struct {
	Summarizer  *Summarizer
	Synthesizer *Synthesizer
	Generator   *Generator
}

// Output collects every stage's result so callers can inspect or
// persist the intermediates.
type Output struct {
	Summaries []InterviewSummary `json:"summaries"`
	Findings  string             `json:"findings"`
	Artifact  *Artifact          `json:"artifact"`
}

// NewPipeline wires the three stages to one completion client.
func NewPipeline(client CompletionClient, counter *tokens.Counter, cfg *config.SynthesisConfig) *Pipeline {
	return &Pipeline{
		Summarizer:  NewSummarizer(client, counter, cfg),
		Synthesizer: NewSynthesizer(client, counter, cfg),
		Generator:   NewGenerator(client, counter, cfg),
	}
}

// Run executes all three stages. Individual interviews that fail to
// summarize are skipped; failures in the later stages propagate because
// there is no safe partial result.
func (p *Pipeline) Run(ctx context.Context, transcripts []Transcript) (*Output, error) {
	summaries := p.Summarizer.SummarizeAll(ctx, transcripts)
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no interview could be summarized")
	}

	findings, err := p.Synthesizer.Synthesize(ctx, summaries)
	if err != nil {
		return nil, err
	}

	artifact, err := p.Generator.Generate(ctx, findings)
	if err != nil {
		return nil, err
	}

	return &Output{
		Summaries: summaries,
		Findings:  findings,
		Artifact:  artifact,
	}, nil
}
