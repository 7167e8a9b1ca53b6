package splitter

import (
	"fmt"
	"strings"
	"testing"
)

func TestSplitEmptyInput(t *testing.T) {
	cases := []string{"", "   ", "\n\n\t\n"}
	for _, input := range cases {
		if got := Split(input, 100); got != nil {
			t.Errorf("Split(%q) = %v, want nil", input, got)
		}
	}
}

func TestSplitRespectsBudget(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 50)
	for _, maxUnits := range []int{5, 12, 40, 200} {
		for _, frag := range Split(text, maxUnits) {
			if n := Words(frag); n > maxUnits {
				t.Errorf("maxUnits=%d: fragment has %d words: %q", maxUnits, n, frag)
			}
		}
	}
}

func TestSplitCoversAllWords(t *testing.T) {
	text := "[Alex] Tell me about your workflow.\n" +
		"[Participant 2] I usually start with the dashboard. It is slow! Very slow.\n" +
		"[Alex] What would you change?\n" +
		"[Participant 2] " + strings.Repeat("word ", 40)

	fragments := Split(text, 10)
	joined := strings.Join(fragments, " ")
	if gotWords, wantWords := Words(joined), Words(text); gotWords != wantWords {
		t.Fatalf("coverage: got %d words, want %d", gotWords, wantWords)
	}
}

func TestSplitKeepsSpeakerTurnsAtomic(t *testing.T) {
	text := "Alex: How did that feel?\nSam: Honestly pretty frustrating.\nAlex: Tell me more."
	fragments := Split(text, 100)
	if len(fragments) != 1 {
		t.Fatalf("small turns should accumulate into one fragment, got %d: %v", len(fragments), fragments)
	}

	fragments = Split(text, 6)
	for _, frag := range fragments {
		if strings.Count(frag, "Alex:")+strings.Count(frag, "Sam:") != 1 {
			t.Errorf("fragment mixes or splits turns: %q", frag)
		}
	}
}

func TestSplitOversizedSentenceFallsBackToWords(t *testing.T) {
	sentence := strings.TrimSpace(strings.Repeat("endless ", 30)) // no sentence boundary
	fragments := Split(sentence, 8)
	if len(fragments) < 3 {
		t.Fatalf("expected word-level split, got %d fragments", len(fragments))
	}
	total := 0
	for _, frag := range fragments {
		n := Words(frag)
		if n > 8 {
			t.Errorf("fragment exceeds budget: %d words", n)
		}
		total += n
	}
	if total != 30 {
		t.Errorf("dropped words: got %d, want 30", total)
	}
}

func TestSplitSentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second one follows! Third asks a question? Fourth closes."
	fragments := Split(text, 4)
	if len(fragments) != 4 {
		t.Fatalf("expected one fragment per sentence, got %d: %v", len(fragments), fragments)
	}
	if fragments[2] != "Third asks a question?" {
		t.Errorf("unexpected sentence split: %q", fragments[2])
	}
}

func TestSplitFuncCustomMeasure(t *testing.T) {
	// a measure that doubles every word's cost halves the capacity
	double := func(text string) int { return 2 * Words(text) }
	text := strings.Repeat("one two three four. ", 10)
	for _, frag := range SplitFunc(text, 8, double) {
		if Words(frag) > 4 {
			t.Errorf("fragment too large under doubled measure: %q", frag)
		}
	}
}

func TestSplitLongUnmarkedTranscript(t *testing.T) {
	// 50,000 words, no speaker markers, sparse sentence boundaries
	var b strings.Builder
	for i := 0; i < 50000; i++ {
		fmt.Fprintf(&b, "w%d ", i)
		if i%97 == 0 {
			b.WriteString(". ")
		}
	}
	text := b.String()

	fragments := Split(text, 500)
	if len(fragments) == 0 {
		t.Fatal("no fragments produced")
	}
	total := 0
	for _, frag := range fragments {
		n := Words(frag)
		if n > 500 {
			t.Errorf("fragment has %d words", n)
		}
		total += n
	}
	if total != Words(text) {
		t.Errorf("coverage: got %d words, want %d", total, Words(text))
	}
}

func TestStripSpeakerTurns(t *testing.T) {
	text := "Alex: How do you use the system?\n" +
		"You: I use it daily for booking\n" +
		"Alex: Can you elaborate?\n" +
		"You: Yes, I book flights and hotels.\n" +
		"And sometimes rental cars too."

	got := StripSpeakerTurns(text, "alex")
	want := "You: I use it daily for booking\n" +
		"You: Yes, I book flights and hotels.\n" +
		"And sometimes rental cars too."
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}

	if got := StripSpeakerTurns("Alex: one\nAlex: two", "Alex"); got != "" {
		t.Errorf("all-interviewer transcript should strip to empty, got %q", got)
	}
}

func TestStripSpeakerTurnsBracketMarkers(t *testing.T) {
	text := "[Alex] What slows you down?\n[Participant 2] The export flow, mostly."
	got := StripSpeakerTurns(text, "Alex")
	if got != "[Participant 2] The export flow, mostly." {
		t.Errorf("got %q", got)
	}
}

func TestStripSpeakerTurnsRemovesPromptArtifacts(t *testing.T) {
	text := "You: Daily usage\n" +
		"Previous response: noted\n" +
		"Role: interviewer\n" +
		"I use it for work"

	got := StripSpeakerTurns(text, "Alex")
	if strings.Contains(got, "Previous response") || strings.Contains(got, "Role:") {
		t.Errorf("artifacts survived: %q", got)
	}
	for _, keep := range []string{"Daily usage", "I use it for work"} {
		if !strings.Contains(got, keep) {
			t.Errorf("%q missing from %q", keep, got)
		}
	}
}
