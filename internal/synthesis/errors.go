package synthesis

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse means the completion did not return parseable
	// JSON where structured output was required, even after the
	// code-fence recovery attempt.
	ErrMalformedResponse = errors.New("completion returned unparseable output")

	// ErrProvider wraps completion-provider failures.
	ErrProvider = errors.New("completion provider error")

	// ErrTooLongForSynthesis means the combined per-interview summaries
	// exceed the synthesis model's hard input limit. Truncating instead
	// would corrupt quote attribution, so the stage fails fast.
	ErrTooLongForSynthesis = errors.New("combined summaries too long for synthesis model")
)

// TooLongError carries the token counts behind ErrTooLongForSynthesis.
type TooLongError struct {
	Tokens int
	Limit  int
	Model  string
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("combined summaries are %d tokens, synthesis model %s accepts at most %d",
		e.Tokens, e.Model, e.Limit)
}

func (e *TooLongError) Unwrap() error { return ErrTooLongForSynthesis }
