package store

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Chunk is the canonical, normalized view of one transcript fragment.
// All legacy-shape ambiguity is resolved here and never leaks past the
// store's public contract.
type Chunk struct {
	ID          string        `json:"chunk_id"`
	InterviewID string        `json:"interview_id"`
	Speaker     string        `json:"speaker,omitempty"`
	Text        string        `json:"text"`
	Timestamp   string        `json:"timestamp,omitempty"`
	Metadata    ChunkMetadata `json:"metadata"`
}

// ChunkMetadata holds the annotation fields. EmotionIntensity is always
// in [0, 1]; Themes and InsightTags are deduplicated, lowercase merges
// of every location historical pipelines wrote them to.
type ChunkMetadata struct {
	Emotion          string   `json:"emotion"`
	EmotionIntensity float64  `json:"emotion_intensity"`
	Themes           []string `json:"themes"`
	InsightTags      []string `json:"insight_tags"`
	RelatedFeature   string   `json:"related_feature,omitempty"`
}

// Interview is the canonical view of one processed interview document.
type Interview struct {
	ID              string  `json:"id"`
	ProjectName     string  `json:"project_name"`
	CreatedAt       string  `json:"created_at"`
	Status          string  `json:"status"`
	IntervieweeName string  `json:"interviewee_name"`
	Transcript      string  `json:"transcript"`
	Chunks          []Chunk `json:"chunks"`

	path string
}

// Path returns the backing file, empty for records not yet saved.
func (iv *Interview) Path() string { return iv.path }

// normalizeInterview collapses a raw legacy document into the canonical
// Interview. path is the backing file, used for id recovery.
func normalizeInterview(raw *rawInterview, path string, scaleMax float64, defaultProject string) *Interview {
	iv := &Interview{
		ID:              recoverInterviewID(raw, path),
		ProjectName:     raw.ProjectName,
		CreatedAt:       raw.CreatedAt,
		Status:          raw.Status,
		IntervieweeName: intervieweeName(raw),
		Transcript:      raw.Transcript,
		path:            path,
	}
	if iv.ProjectName == "" {
		iv.ProjectName = defaultProject
	}
	if iv.CreatedAt == "" {
		iv.CreatedAt = raw.Metadata.Date
	}

	iv.Chunks = make([]Chunk, 0, len(raw.Chunks))
	for i := range raw.Chunks {
		iv.Chunks = append(iv.Chunks, normalizeChunk(&raw.Chunks[i], raw, iv.ID, scaleMax))
	}
	return iv
}

func normalizeChunk(rc *rawChunk, raw *rawInterview, interviewID string, scaleMax float64) Chunk {
	id := rc.ChunkID
	if id == "" {
		id = rc.ID
	}
	if id == "" {
		id = uuid.NewString()
	}

	emotion := firstNonEmpty(rc.Emotion, rc.Analysis.Emotion, rc.Metadata.Emotion)
	if emotion == "" {
		emotion = "neutral"
	}

	intensity := firstSetIntensity(rc.EmotionIntensity, rc.Analysis.EmotionIntensity, rc.Metadata.EmotionIntensity)

	return Chunk{
		ID:          id,
		InterviewID: interviewID,
		Speaker:     rc.Speaker,
		Text:        chunkContent(rc),
		Timestamp:   chunkTimestamp(rc, raw),
		Metadata: ChunkMetadata{
			Emotion:          strings.ToLower(emotion),
			EmotionIntensity: normalizeIntensity(intensity, scaleMax),
			Themes:           mergeTags(rc.Themes, rc.Analysis.Themes, rc.Metadata.Themes),
			InsightTags:      mergeTags(rc.InsightTags, rc.Analysis.InsightTags, rc.Metadata.InsightTags),
			RelatedFeature:   rc.Metadata.RelatedFeature,
		},
	}
}

// chunkContent resolves text from the four locations legacy documents
// used: entries (joined), content, text, combined_text.
func chunkContent(rc *rawChunk) string {
	if len(rc.Entries) > 0 {
		var parts []string
		for _, e := range rc.Entries {
			if e.Text != "" {
				parts = append(parts, e.Text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return firstNonEmpty(rc.Content, rc.Text, rc.CombinedText)
}

func chunkTimestamp(rc *rawChunk, raw *rawInterview) string {
	if len(rc.Entries) > 0 && rc.Entries[0].Timestamp != "" {
		return rc.Entries[0].Timestamp
	}
	return firstNonEmpty(rc.Timestamp, rc.Metadata.Timestamp, raw.Metadata.Date)
}

// intervieweeName walks the priority chain of every field a name was
// ever stored in, participant fields before the researcher fallback.
func intervieweeName(raw *rawInterview) string {
	return firstNonEmpty(
		raw.Metadata.Interviewee.Name,
		raw.Interviewee.Name,
		raw.Metadata.Participant.Name,
		raw.Participant.Name,
		raw.ParticipantName,
		raw.Metadata.TranscriptName,
		raw.Metadata.Researcher.Name,
	)
}

// recoverInterviewID resolves the interview id, preferring the first
// chunk's id prefix, then the record's own id fields, then the backing
// file name. A random id is a last resort for records with none of those.
func recoverInterviewID(raw *rawInterview, path string) string {
	for i := range raw.Chunks {
		chunkID := raw.Chunks[i].ChunkID
		if chunkID == "" {
			continue
		}
		if prefix, _, ok := strings.Cut(chunkID, "_"); ok && prefix != "" {
			return prefix
		}
	}
	if raw.InterviewID != "" {
		return raw.InterviewID
	}
	if raw.ID != "" {
		return raw.ID
	}
	if path != "" {
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return uuid.NewString()
}

// normalizeIntensity maps a raw intensity onto [0, 1]. Values already in
// range pass through; values above 1 are assumed to be on a 0-scaleMax
// annotation scale; missing or unparseable values default to 0.5.
func normalizeIntensity(f *flexFloat, scaleMax float64) float64 {
	if f == nil || !f.valid {
		return 0.5
	}
	v := f.value
	if v >= 0 && v <= 1 {
		return v
	}
	if v > 1 {
		v /= scaleMax
		if v > 1 {
			return 1
		}
		return v
	}
	return 0
}

func firstSetIntensity(candidates ...*flexFloat) *flexFloat {
	for _, f := range candidates {
		if f != nil && f.valid {
			return f
		}
	}
	return nil
}

// mergeTags flattens the tag lists from every storage location into one
// lowercase, deduplicated set, preserving first-seen order.
func mergeTags(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, tag := range list {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
