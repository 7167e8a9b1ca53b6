package tokens

import (
	"errors"
	"strings"
	"testing"
)

func TestCountNeverFails(t *testing.T) {
	c := NewCounter()

	cases := []struct {
		name  string
		text  string
		model string
	}{
		{"empty", "", "gpt-4"},
		{"known model", "the quick brown fox", "gpt-4"},
		{"unknown model", "the quick brown fox", "model-that-does-not-exist"},
		{"unicode", "café naïve über", "gpt-3.5-turbo"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := c.Count(tc.text, tc.model)
			if tc.text == "" && n != 0 {
				t.Errorf("Count(empty) = %d, want 0", n)
			}
			if tc.text != "" && n <= 0 {
				t.Errorf("Count(%q, %q) = %d, want > 0", tc.text, tc.model, n)
			}
		})
	}
}

func TestCountMonotonicInLength(t *testing.T) {
	c := NewCounter()
	short := c.Count("one sentence", "gpt-4")
	long := c.Count(strings.Repeat("one sentence ", 50), "gpt-4")
	if long <= short {
		t.Errorf("longer text should cost more tokens: short=%d long=%d", short, long)
	}
}

func TestAvailableForPayload(t *testing.T) {
	c := NewCounter()

	available, err := c.AvailableForPayload("summarize:", "gpt-4", 1000, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available <= 0 || available >= 800+1 {
		t.Errorf("available = %d, want in (0, 800]", available)
	}
}

func TestAvailableForPayloadBudgetExceeded(t *testing.T) {
	c := NewCounter()
	base := strings.Repeat("a very long base prompt ", 100)

	_, err := c.AvailableForPayload(base, "gpt-4", 50, 40)
	if err == nil {
		t.Fatal("expected budget error, got nil")
	}
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("error does not wrap ErrBudgetExceeded: %v", err)
	}

	var budgetErr *BudgetError
	if !errors.As(err, &budgetErr) {
		t.Fatalf("error is not *BudgetError: %v", err)
	}
	if budgetErr.MaxInput != 50 || budgetErr.ReservedOutput != 40 {
		t.Errorf("counts not carried: %+v", budgetErr)
	}
	if budgetErr.BaseTokens <= 0 {
		t.Errorf("base token count missing: %+v", budgetErr)
	}
}

func TestAvailableForPayloadExactFit(t *testing.T) {
	c := NewCounter()
	base := "summarize the following:"

	// window sized so base + reserved output fill it exactly
	maxInput := c.Count(base, "gpt-4") + 200
	_, err := c.AvailableForPayload(base, "gpt-4", maxInput, 200)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("zero payload room must be an error, got %v", err)
	}
}

func TestApproxTokens(t *testing.T) {
	cases := []struct {
		text string
		min  int
	}{
		{"word", 1},
		{"four words in here", 4},
		{strings.Repeat("x", 40), 10},
	}
	for _, tc := range cases {
		if got := approxTokens(tc.text); got < tc.min {
			t.Errorf("approxTokens(%q) = %d, want >= %d", tc.text, got, tc.min)
		}
	}
}
