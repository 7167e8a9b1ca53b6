package internal

import (
	"fmt"
	"os"
	"strings"
)

const Version = "0.3.1"

// PrintUsage writes the top-level usage text to stderr.
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `insightdex - Interview Retrieval and Synthesis

Version: %s

USAGE:
    insightdex [global options] <command> [command options]

GLOBAL OPTIONS:
    -config <path>
        Path to config file (default: ~/.insightdex/config/insightdex.yaml)

    -v, -version
        Show version information

    -h, -help
        Show this help message

COMMANDS:
    init
        Create a starter config file

    ingest
        Chunk, index and store an interview transcript

    search
        Search interviews (index, text, semantic, emotion, theme, insight)

    similar
        Find chunks similar to an already-indexed chunk

    list
        List stored interviews

    remove
        Delete an interview and its index entries

    synthesize
        Summarize interviews and build a cross-interview research artifact

    stats
        Show store and index statistics

EXAMPLES:
    # Ingest a transcript
    insightdex ingest -project "Checkout Study" transcript.txt

    # Ranked search over the embedding index
    insightdex search "frustrations with onboarding"

    # Emotion search
    insightdex search -mode emotion "frustration"

    # Synthesize all interviews into one artifact
    insightdex synthesize -output findings.json

For detailed help on each command, use:
    insightdex <command> -help
`, Version)
}

// StringList is a flag.Value that collects repeated string flags.
type StringList []string

func (s *StringList) String() string {
	return strings.Join(*s, ",")
}

func (s *StringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
