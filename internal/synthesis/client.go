package synthesis

import "context"

// SchemaFormat requests structured JSON output conforming to a schema.
type SchemaFormat struct {
	Name   string
	Schema map[string]any
}

// Request is one completion call.
type Request struct {
	Model           string
	Instructions    string
	Input           string
	MaxOutputTokens int
	Temperature     float64
	Format          *SchemaFormat
}

// CompletionClient is the provider contract the pipeline depends on.
// The pipeline owns all token budgeting; implementations just make the
// call and return the output text.
type CompletionClient interface {
	Complete(ctx context.Context, req Request) (string, error)
}
