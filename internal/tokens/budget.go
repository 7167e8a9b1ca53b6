package tokens

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// ErrBudgetExceeded is returned when a prompt's fixed overhead plus the
// reserved output allowance already consumes the model's full input window.
var ErrBudgetExceeded = errors.New("token budget exceeded")

// BudgetError carries the token counts that caused a budget failure.
type BudgetError struct {
	Model          string
	BaseTokens     int
	ReservedOutput int
	MaxInput       int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("token budget exceeded for model %s: base prompt %d + reserved output %d leave no payload room in max input %d",
		e.Model, e.BaseTokens, e.ReservedOutput, e.MaxInput)
}

func (e *BudgetError) Unwrap() error { return ErrBudgetExceeded }

// Counter estimates token costs for named models. Unknown models fall back
// to the generic cl100k_base byte-pair encoding; if no encoding can be
// loaded at all, a character-based approximation is used so Count never
// fails.
type Counter struct {
	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
}

// NewCounter creates a token counter with an empty encoding cache.
func NewCounter() *Counter {
	return &Counter{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// Count returns the estimated token count of text for the given model.
func (c *Counter) Count(text, model string) int {
	if text == "" {
		return 0
	}
	enc := c.encodingFor(model)
	if enc == nil {
		return approxTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// AvailableForPayload computes how many input tokens remain for payload
// text once the base prompt (with an empty payload) and the reserved
// output allowance are accounted for. A result that leaves no room for
// any payload is an explicit error, never a zero handed downstream.
func (c *Counter) AvailableForPayload(basePrompt, model string, maxInput, reservedOutput int) (int, error) {
	base := c.Count(basePrompt, model)
	available := maxInput - base - reservedOutput
	if available <= 0 {
		return 0, &BudgetError{
			Model:          model,
			BaseTokens:     base,
			ReservedOutput: reservedOutput,
			MaxInput:       maxInput,
		}
	}
	return available, nil
}

func (c *Counter) encodingFor(model string) *tiktoken.Tiktoken {
	c.mu.Lock()
	defer c.mu.Unlock()

	if enc, ok := c.encodings[model]; ok {
		return enc
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			enc = nil
		}
	}
	c.encodings[model] = enc
	return enc
}

// approxTokens estimates token count when no BPE encoding is available:
// roughly one token per four characters, never fewer than the word count.
func approxTokens(text string) int {
	n := (utf8.RuneCountInString(text) + 3) / 4
	if words := len(strings.Fields(text)); words > n {
		n = words
	}
	return n
}
