package store

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The on-disk interview documents were written by several generations of
// the annotation pipeline, each with its own ideas about where fields
// live. These raw types accept every shape we have seen in the wild;
// normalize.go collapses them into the canonical Chunk/Interview types.

type rawInterview struct {
	ID              string               `json:"id"`
	InterviewID     string               `json:"interview_id"`
	ProjectName     string               `json:"project_name"`
	TranscriptName  string               `json:"transcript_name"`
	ParticipantName string               `json:"participant_name"`
	CreatedAt       string               `json:"created_at"`
	Status          string               `json:"status"`
	Transcript      string               `json:"transcript"`
	Interviewee     rawNamed             `json:"interviewee"`
	Participant     rawNamed             `json:"participant"`
	Metadata        rawInterviewMetadata `json:"metadata"`
	Chunks          []rawChunk           `json:"chunks"`
}

type rawNamed struct {
	Name string `json:"name"`
}

type rawInterviewMetadata struct {
	Interviewee    rawNamed `json:"interviewee"`
	Participant    rawNamed `json:"participant"`
	Researcher     rawNamed `json:"researcher"`
	TranscriptName string   `json:"transcript_name"`
	Date           string   `json:"date"`
}

type rawChunk struct {
	ChunkID          string           `json:"chunk_id"`
	ID               string           `json:"id"`
	Speaker          string           `json:"speaker"`
	Content          string           `json:"content"`
	Text             string           `json:"text"`
	CombinedText     string           `json:"combined_text"`
	Timestamp        string           `json:"timestamp"`
	Emotion          string           `json:"emotion"`
	EmotionIntensity *flexFloat       `json:"emotion_intensity"`
	Themes           []string         `json:"themes"`
	InsightTags      []string         `json:"insight_tags"`
	Entries          []rawEntry       `json:"entries"`
	Analysis         rawAnnotations   `json:"analysis"`
	Metadata         rawChunkMetadata `json:"metadata"`
}

type rawEntry struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type rawAnnotations struct {
	Emotion          string     `json:"emotion"`
	EmotionIntensity *flexFloat `json:"emotion_intensity"`
	Themes           []string   `json:"themes"`
	InsightTags      []string   `json:"insight_tags"`
}

type rawChunkMetadata struct {
	Emotion          string     `json:"emotion"`
	EmotionIntensity *flexFloat `json:"emotion_intensity"`
	Themes           []string   `json:"themes"`
	InsightTags      []string   `json:"insight_tags"`
	RelatedFeature   string     `json:"related_feature"`
	Timestamp        string     `json:"timestamp"`
}

// flexFloat decodes intensity values that were stored as numbers in some
// documents and as quoted strings in others. Unparseable values are
// recorded as unset and fall through to the 0.5 default.
type flexFloat struct {
	value float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// treat like a missing value rather than failing the whole record
		return nil
	}
	f.value = v
	f.valid = true
	return nil
}

var _ json.Unmarshaler = (*flexFloat)(nil)
