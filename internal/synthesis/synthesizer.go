package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/tokens"
)

// summarySeparator joins the per-interview summaries for the synthesis
// call. The model is told about it, so the string must stay stable.
const summarySeparator = "\n\n---INTERVIEW SUMMARY SEPARATOR---\n\n"

// Synthesizer combines per-interview summaries into one cross-interview
// findings document (stage two of the pipeline).
type Synthesizer struct {
	client  CompletionClient
	counter *tokens.Counter
	cfg     *config.SynthesisConfig
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(client CompletionClient, counter *tokens.Counter, cfg *config.SynthesisConfig) *Synthesizer {
	return &Synthesizer{client: client, counter: counter, cfg: cfg}
}

// Synthesize concatenates the summaries and asks for recurring themes,
// goals and pain points with supporting quotes drawn only from the
// summaries. Fails fast with ErrTooLongForSynthesis when the combined
// input exceeds the model's hard limit.
func (s *Synthesizer) Synthesize(ctx context.Context, summaries []InterviewSummary) (string, error) {
	if len(summaries) == 0 {
		return "", fmt.Errorf("no summaries to synthesize")
	}

	parts := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		header := "Interview " + sum.InterviewID
		if sum.IntervieweeName != "" {
			header += " (" + sum.IntervieweeName + ")"
		}
		parts = append(parts, header+":\n"+sum.Summary)
	}
	combined := strings.Join(parts, summarySeparator)

	n := s.counter.Count(combined, s.cfg.SynthesisModel)
	if n > s.cfg.SynthesisMaxInputTokens {
		return "", &TooLongError{
			Tokens: n,
			Limit:  s.cfg.SynthesisMaxInputTokens,
			Model:  s.cfg.SynthesisModel,
		}
	}

	out, err := s.client.Complete(ctx, Request{
		Model:           s.cfg.SynthesisModel,
		Instructions:    synthesisInstructions,
		Input:           combined,
		MaxOutputTokens: s.cfg.SynthesisOutputTokens,
		Temperature:     0.3,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty findings document", ErrMalformedResponse)
	}
	return out, nil
}
