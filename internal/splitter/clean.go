package splitter

import (
	"strings"
)

// promptArtifacts are transcript lines left behind by interview tooling
// rather than spoken by anyone. Lines containing them are dropped.
var promptArtifacts = []string{
	"previous response:",
	"continue the interview",
	"role:",
	"objective:",
	"instructions:",
}

// StripSpeakerTurns removes every turn spoken by the named speaker,
// along with prompt-artifact lines, leaving only the other speakers'
// material. Speaker matching is case-insensitive and accepts both
// "Name:" and "[Name]" markers. A turn runs until the next speaker
// marker, so multi-line answers stay intact. An empty speaker name
// returns the text unchanged apart from artifact removal.
func StripSpeakerTurns(text, speaker string) string {
	speaker = strings.ToLower(strings.TrimSpace(speaker))

	var kept []string
	skipping := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if name, ok := speakerName(trimmed); ok {
			skipping = speaker != "" && strings.ToLower(name) == speaker
		}
		if skipping || isPromptArtifact(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n")
}

// speakerName extracts the speaker from a "Name:" or "[Name]" line.
func speakerName(line string) (string, bool) {
	if m := bracketSpeaker.FindString(line); m != "" {
		m = strings.TrimSpace(m)
		return strings.TrimSuffix(strings.TrimPrefix(m, "["), "]"), true
	}
	if m := colonSpeaker.FindString(line); m != "" {
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m), ":")), true
	}
	return "", false
}

func isPromptArtifact(line string) bool {
	lower := strings.ToLower(line)
	for _, artifact := range promptArtifacts {
		if strings.HasPrefix(lower, artifact) {
			return true
		}
	}
	return false
}
