package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/tokens"
)

type fakeCompletion struct {
	requests []Request
	respond  func(req Request) (string, error)
}

func (f *fakeCompletion) Complete(ctx context.Context, req Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.respond(req)
}

func testSynthesisConfig() *config.SynthesisConfig {
	return &config.SynthesisConfig{
		SummaryModel:          "gpt-3.5-turbo",
		SummaryMaxInputTokens: 15000,
		SummaryOutputTokens:   300,

		SynthesisModel:          "gpt-4",
		SynthesisMaxInputTokens: 8000,
		SynthesisOutputTokens:   500,

		FinalModel:        "gpt-4-turbo",
		FinalContextLimit: 128000,
		FinalSafetyMargin: 100,
		FinalOutputCap:    4000,
		FinalMinOutput:    500,
	}
}

func TestSummarizeShortTranscriptDirect(t *testing.T) {
	client := &fakeCompletion{respond: func(req Request) (string, error) {
		return "a tidy summary", nil
	}}
	s := NewSummarizer(client, tokens.NewCounter(), testSynthesisConfig())

	got, err := s.Summarize(context.Background(), "Short transcript about the checkout flow.")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "a tidy summary" {
		t.Errorf("got %q", got)
	}
	if len(client.requests) != 1 {
		t.Fatalf("expected one call, got %d", len(client.requests))
	}
	if client.requests[0].Model != "gpt-3.5-turbo" || client.requests[0].MaxOutputTokens != 300 {
		t.Errorf("unexpected request: %+v", client.requests[0])
	}
}

func TestSummarizeLongTranscriptChunksAndJoins(t *testing.T) {
	cfg := testSynthesisConfig()
	cfg.SummaryMaxInputTokens = 400
	cfg.SummaryOutputTokens = 50

	client := &fakeCompletion{respond: func(req Request) (string, error) {
		return "piece summary", nil
	}}
	s := NewSummarizer(client, tokens.NewCounter(), cfg)

	// well past the per-call budget, no speaker markers or paragraphs,
	// sparse sentence boundaries
	transcript := strings.TrimSpace(strings.Repeat("the participant described the workflow in detail. ", 400))

	got, err := s.Summarize(context.Background(), transcript)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(client.requests) < 2 {
		t.Fatalf("expected a chunked summarization, got %d calls", len(client.requests))
	}
	want := strings.Repeat("piece summary"+pieceSeparator, len(client.requests)-1) + "piece summary"
	if got != want {
		t.Errorf("pieces not joined with separator:\n%q", got)
	}
}

func TestSummarizeZeroPayloadBudget(t *testing.T) {
	counter := tokens.NewCounter()
	cfg := testSynthesisConfig()
	// instructions plus reserved output fill the window exactly, leaving
	// no room for any transcript text
	cfg.SummaryMaxInputTokens = counter.Count(summaryInstructions, cfg.SummaryModel) + cfg.SummaryOutputTokens

	client := &fakeCompletion{respond: func(req Request) (string, error) {
		t.Fatal("completion must not be called with no payload room")
		return "", nil
	}}
	s := NewSummarizer(client, counter, cfg)

	got, err := s.Summarize(context.Background(), "a transcript that has nowhere to go")
	if !errors.Is(err, tokens.ErrBudgetExceeded) {
		t.Fatalf("got %v, want ErrBudgetExceeded", err)
	}
	if got != "" {
		t.Errorf("summary should be empty on budget failure, got %q", got)
	}
}

func TestSummarizeAllSkipsFailures(t *testing.T) {
	client := &fakeCompletion{respond: func(req Request) (string, error) {
		if strings.Contains(req.Input, "POISON") {
			return "", errors.New("provider exploded")
		}
		return "summary of " + req.Input[:4], nil
	}}
	s := NewSummarizer(client, tokens.NewCounter(), testSynthesisConfig())

	summaries := s.SummarizeAll(context.Background(), []Transcript{
		{InterviewID: "a", Text: "good transcript one"},
		{InterviewID: "b", Text: "POISON transcript"},
		{InterviewID: "c", Text: "good transcript two"},
	})
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].InterviewID != "a" || summaries[1].InterviewID != "c" {
		t.Errorf("wrong interviews survived: %+v", summaries)
	}
}

func TestSynthesizeJoinsWithSeparator(t *testing.T) {
	var seen string
	client := &fakeCompletion{respond: func(req Request) (string, error) {
		seen = req.Input
		return "Theme: slow exports. Quote: \"it takes five clicks\". Quote: \"I gave up\".", nil
	}}
	syn := NewSynthesizer(client, tokens.NewCounter(), testSynthesisConfig())

	summaries := []InterviewSummary{
		{InterviewID: "iv1", IntervieweeName: "Morgan", Summary: "Exports are slow. \"it takes five clicks\""},
		{InterviewID: "iv2", Summary: "Also struggled with exports. \"I gave up\""},
	}
	findings, err := syn.Synthesize(context.Background(), summaries)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if !strings.Contains(seen, summarySeparator) {
		t.Error("summaries not joined with the separator")
	}
	for _, sum := range summaries {
		if !strings.Contains(seen, sum.Summary) {
			t.Errorf("summary for %s missing from synthesis input", sum.InterviewID)
		}
	}
	// supporting quotes survive verbatim from input to findings
	for _, quote := range []string{`"it takes five clicks"`, `"I gave up"`} {
		if !strings.Contains(findings, quote) {
			t.Errorf("quote %s not in findings", quote)
		}
	}
}

func TestSynthesizeFailsFastWhenTooLong(t *testing.T) {
	cfg := testSynthesisConfig()
	cfg.SynthesisMaxInputTokens = 10

	client := &fakeCompletion{respond: func(req Request) (string, error) {
		t.Fatal("completion must not be called when over the hard limit")
		return "", nil
	}}
	syn := NewSynthesizer(client, tokens.NewCounter(), cfg)

	_, err := syn.Synthesize(context.Background(), []InterviewSummary{
		{InterviewID: "iv1", Summary: strings.Repeat("far too many words for the limit ", 50)},
	})
	if !errors.Is(err, ErrTooLongForSynthesis) {
		t.Fatalf("got %v, want ErrTooLongForSynthesis", err)
	}
	var tooLong *TooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("error is not *TooLongError: %v", err)
	}
	if tooLong.Tokens <= tooLong.Limit {
		t.Errorf("counts not carried: %+v", tooLong)
	}
}

func TestGenerateParsesFencedJSON(t *testing.T) {
	client := &fakeCompletion{respond: func(req Request) (string, error) {
		return "```json\n{\"themes\":[{\"name\":\"exports\",\"description\":\"slow\",\"quotes\":[\"five clicks\"]}],\"goals\":[\"ship faster\"],\"pain_points\":[\"export flow\"],\"opportunities\":[\"one-click export\"]}\n```", nil
	}}
	g := NewGenerator(client, tokens.NewCounter(), testSynthesisConfig())

	artifact, err := g.Generate(context.Background(), "findings document")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(artifact.Themes) != 1 || artifact.Themes[0].Name != "exports" {
		t.Errorf("unexpected artifact: %+v", artifact)
	}
	if len(client.requests) != 1 || client.requests[0].Format == nil {
		t.Error("structured output format not requested")
	}
}

func TestGenerateMalformedResponse(t *testing.T) {
	client := &fakeCompletion{respond: func(req Request) (string, error) {
		return "sorry, I cannot produce JSON today", nil
	}}
	g := NewGenerator(client, tokens.NewCounter(), testSynthesisConfig())

	_, err := g.Generate(context.Background(), "findings document")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("got %v, want ErrMalformedResponse", err)
	}
}

func TestGenerateDynamicOutputBudget(t *testing.T) {
	cfg := testSynthesisConfig()
	cfg.FinalContextLimit = 1200
	cfg.FinalOutputCap = 4000
	cfg.FinalMinOutput = 100

	client := &fakeCompletion{respond: func(req Request) (string, error) {
		return `{"themes":[],"goals":[],"pain_points":[],"opportunities":[]}`, nil
	}}
	counter := tokens.NewCounter()
	g := NewGenerator(client, counter, cfg)

	findings := "a modest findings document"
	if _, err := g.Generate(context.Background(), findings); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	input := counter.Count(artifactInstructions, cfg.FinalModel) + counter.Count(findings, cfg.FinalModel)
	want := cfg.FinalContextLimit - input - cfg.FinalSafetyMargin
	if got := client.requests[0].MaxOutputTokens; got != want {
		t.Errorf("output budget: got %d, want %d", got, want)
	}
}

func TestGenerateRefusesStarvedBudget(t *testing.T) {
	cfg := testSynthesisConfig()
	cfg.FinalContextLimit = 300 // leaves < FinalMinOutput after margin

	client := &fakeCompletion{respond: func(req Request) (string, error) {
		t.Fatal("completion must not be called with a starved budget")
		return "", nil
	}}
	g := NewGenerator(client, tokens.NewCounter(), cfg)

	_, err := g.Generate(context.Background(), strings.Repeat("long findings ", 20))
	if !errors.Is(err, tokens.ErrBudgetExceeded) {
		t.Fatalf("got %v, want ErrBudgetExceeded", err)
	}
}

func TestPipelineRun(t *testing.T) {
	client := &fakeCompletion{respond: func(req Request) (string, error) {
		switch {
		case req.Format != nil:
			return `{"themes":[{"name":"exports","description":"slow","quotes":["q"]}],"goals":["g"],"pain_points":["p"],"opportunities":["o"]}`, nil
		case req.Instructions == synthesisInstructions:
			return "findings across interviews", nil
		default:
			if strings.Contains(req.Input, "POISON") {
				return "", errors.New("provider exploded")
			}
			return "summary", nil
		}
	}}
	p := NewPipeline(client, tokens.NewCounter(), testSynthesisConfig())

	out, err := p.Run(context.Background(), []Transcript{
		{InterviewID: "a", Text: "transcript one"},
		{InterviewID: "b", Text: "POISON"},
		{InterviewID: "c", Text: "transcript three"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Summaries) != 2 {
		t.Errorf("got %d summaries, want 2", len(out.Summaries))
	}
	if out.Findings != "findings across interviews" {
		t.Errorf("findings: %q", out.Findings)
	}
	if out.Artifact == nil || len(out.Artifact.Themes) != 1 {
		t.Errorf("artifact: %+v", out.Artifact)
	}
}

func TestDecodeModelJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", `{"name":"ok"}`, "ok", false},
		{"fenced json", "```json\n{\"name\":\"fenced\"}\n```", "fenced", false},
		{"bare fence", "```\n{\"name\":\"bare\"}\n```", "bare", false},
		{"prose wrapped", `Here you go: {"name":"wrapped"} hope that helps`, "wrapped", false},
		{"empty", "", "", true},
		{"no json", "there is nothing here", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p payload
			err := decodeModelJSON(tc.input, &p)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Errorf("got %v, want ErrMalformedResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.Name != tc.want {
				t.Errorf("got %q, want %q", p.Name, tc.want)
			}
		})
	}
}
