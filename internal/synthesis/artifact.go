package synthesis

import (
	"context"
	"fmt"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/tokens"
)

// Artifact is the structured output of the final generation stage.
type Artifact struct {
	Themes        []Theme  `json:"themes" jsonschema_description:"Recurring themes across the interviews"`
	Goals         []string `json:"goals" jsonschema_description:"Goals shared by the participants"`
	PainPoints    []string `json:"pain_points" jsonschema_description:"Pain points shared by the participants"`
	Opportunities []string `json:"opportunities" jsonschema_description:"Concrete opportunities for improvement"`
}

// Theme is one recurring theme with its supporting evidence.
type Theme struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Quotes      []string `json:"quotes" jsonschema_description:"Verbatim supporting quotes"`
}

var artifactSchema = GenerateSchema[Artifact]()

// Generator drives the final, larger-context generation call (stage
// three). It consumes only the findings document, never the summaries
// or raw transcripts.
type Generator struct {
	client  CompletionClient
	counter *tokens.Counter
	cfg     *config.SynthesisConfig
}

// NewGenerator creates a generator.
func NewGenerator(client CompletionClient, counter *tokens.Counter, cfg *config.SynthesisConfig) *Generator {
	return &Generator{client: client, counter: counter, cfg: cfg}
}

// Generate turns a findings document into the structured artifact. The
// output budget is computed per call from what the input left of the
// model's context window, capped and floor-checked so the request can
// never exceed the provider's true ceiling or be too starved to answer.
func (g *Generator) Generate(ctx context.Context, findings string) (*Artifact, error) {
	if findings == "" {
		return nil, fmt.Errorf("findings document is empty")
	}

	inputTokens := g.counter.Count(artifactInstructions, g.cfg.FinalModel) +
		g.counter.Count(findings, g.cfg.FinalModel)

	maxOutput := g.cfg.FinalContextLimit - inputTokens - g.cfg.FinalSafetyMargin
	if maxOutput > g.cfg.FinalOutputCap {
		maxOutput = g.cfg.FinalOutputCap
	}
	if maxOutput < g.cfg.FinalMinOutput {
		return nil, fmt.Errorf("%w: findings consume %d of %d tokens, leaving %d for output (need %d)",
			tokens.ErrBudgetExceeded, inputTokens, g.cfg.FinalContextLimit, maxOutput, g.cfg.FinalMinOutput)
	}

	out, err := g.client.Complete(ctx, Request{
		Model:           g.cfg.FinalModel,
		Instructions:    artifactInstructions,
		Input:           findings,
		MaxOutputTokens: maxOutput,
		Temperature:     0.4,
		Format: &SchemaFormat{
			Name:   "ResearchArtifact",
			Schema: artifactSchema,
		},
	})
	if err != nil {
		return nil, err
	}

	var artifact Artifact
	if err := decodeModelJSON(out, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}
