// Package splitter breaks interview transcripts into bounded-size fragments
// while keeping speaker turns and sentences intact wherever the budget allows.
package splitter

import (
	"regexp"
	"strings"
)

// Measure reports the size of a fragment in caller-defined units
// (words, tokens for a specific model, and so on).
type Measure func(text string) int

// Words measures a fragment by whitespace-separated word count.
func Words(text string) int {
	return len(strings.Fields(text))
}

var (
	// [Participant 2] or [Alex]
	bracketSpeaker = regexp.MustCompile(`^\[[^\]\n]+\]\s*`)
	// Alex: or P. O'Neil:
	colonSpeaker = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 ._'-]{0,40}:\s`)
)

// Split divides text into fragments of at most maxUnits words each.
// Speaker turns are kept atomic where possible; turns that exceed the
// budget are split at sentence boundaries, and single oversized sentences
// are split by raw word count so no input is ever dropped. Whitespace-only
// input yields an empty list.
func Split(text string, maxUnits int) []string {
	return SplitFunc(text, maxUnits, Words)
}

// SplitFunc is Split with a caller-supplied size measure, used when the
// budget is expressed in model tokens rather than words.
func SplitFunc(text string, maxUnits int, measure Measure) []string {
	if maxUnits <= 0 || measure == nil {
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var fragments []string
	var current []string
	currentUnits := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(current, " "))
		if joined != "" {
			fragments = append(fragments, joined)
		}
		current = nil
		currentUnits = 0
	}

	for _, unit := range atomicUnits(text) {
		unit = strings.TrimSpace(unit)
		if unit == "" {
			continue
		}
		size := measure(unit)

		if size > maxUnits {
			flush()
			fragments = append(fragments, splitOversized(unit, maxUnits, measure)...)
			continue
		}
		if currentUnits+size > maxUnits {
			flush()
		}
		current = append(current, unit)
		currentUnits += size
	}
	flush()

	return fragments
}

// atomicUnits returns the largest pieces the splitter tries to keep whole:
// speaker turns when the transcript carries speaker markup, paragraphs
// otherwise.
func atomicUnits(text string) []string {
	lines := strings.Split(text, "\n")

	marked := false
	for _, line := range lines {
		if isSpeakerLine(strings.TrimSpace(line)) {
			marked = true
			break
		}
	}

	if !marked {
		return splitParagraphs(text)
	}

	var turns []string
	var turn []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isSpeakerLine(trimmed) && len(turn) > 0 {
			turns = append(turns, strings.Join(turn, "\n"))
			turn = nil
		}
		turn = append(turn, trimmed)
	}
	if len(turn) > 0 {
		turns = append(turns, strings.Join(turn, "\n"))
	}
	return turns
}

func isSpeakerLine(line string) bool {
	return bracketSpeaker.MatchString(line) || colonSpeaker.MatchString(line)
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// splitOversized handles a single unit that exceeds the budget on its own:
// first by sentence boundary, then by raw word count as the last resort.
func splitOversized(unit string, maxUnits int, measure Measure) []string {
	var out []string
	var current []string
	currentUnits := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(current, " "))
		if joined != "" {
			out = append(out, joined)
		}
		current = nil
		currentUnits = 0
	}

	for _, sentence := range splitSentences(unit) {
		size := measure(sentence)
		if size > maxUnits {
			flush()
			out = append(out, splitWords(sentence, maxUnits, measure)...)
			continue
		}
		if currentUnits+size > maxUnits {
			flush()
		}
		current = append(current, sentence)
		currentUnits += size
	}
	flush()

	return out
}

// splitSentences cuts text after `.`, `!` or `?` followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && !isSpace(runes[i+1]) {
				continue
			}
			s := strings.TrimSpace(string(runes[start : i+1]))
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if start < len(runes) {
		s := strings.TrimSpace(string(runes[start:]))
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// splitWords is the last-resort split: greedy word groups that stay under
// the budget, never dropping a word even when a single word exceeds it.
func splitWords(text string, maxUnits int, measure Measure) []string {
	words := strings.Fields(text)
	var out []string
	var current []string
	for _, w := range words {
		candidate := strings.Join(append(current, w), " ")
		if len(current) > 0 && measure(candidate) > maxUnits {
			out = append(out, strings.Join(current, " "))
			current = nil
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, " "))
	}
	return out
}
