package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kb2232/insightdex/internal/embedding"
)

// Mode selects which of the independent search entry points runs.
type Mode string

const (
	ModeText     Mode = "text"
	ModeSemantic Mode = "semantic"
	ModeEmotion  Mode = "emotion"
	ModeTheme    Mode = "theme"
	ModeInsight  Mode = "insight"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeText:
		return ModeText, nil
	case ModeSemantic:
		return ModeSemantic, nil
	case ModeEmotion:
		return ModeEmotion, nil
	case ModeTheme:
		return ModeTheme, nil
	case ModeInsight:
		return ModeInsight, nil
	default:
		return "", fmt.Errorf("unknown search mode: %s (want text, semantic, emotion, theme or insight)", s)
	}
}

// Result is the single normalized shape every search mode produces.
type Result struct {
	InterviewID     string        `json:"interview_id"`
	ChunkID         string        `json:"chunk_id"`
	ProjectName     string        `json:"project_name"`
	Content         string        `json:"content"`
	Similarity      float64       `json:"similarity"`
	Timestamp       string        `json:"timestamp"`
	IntervieweeName string        `json:"interviewee_name"`
	Metadata        ChunkMetadata `json:"metadata"`
}

// Search runs one of the five search modes. All modes are read-only and
// safe to run concurrently.
func (s *Store) Search(ctx context.Context, query string, mode Mode, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	interviews, err := s.List()
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeText:
		return s.textSearch(interviews, query, limit), nil
	case ModeSemantic:
		return s.semanticSearch(ctx, interviews, query, limit)
	case ModeEmotion:
		return s.emotionSearch(interviews, query, limit), nil
	case ModeTheme:
		return s.tagSearch(interviews, query, limit, func(c *Chunk) []string { return c.Metadata.Themes }), nil
	case ModeInsight:
		return s.tagSearch(interviews, query, limit, func(c *Chunk) []string { return c.Metadata.InsightTags }), nil
	default:
		return nil, fmt.Errorf("unknown search mode: %s", mode)
	}
}

// textSearch is a case-insensitive substring match, most recent first.
func (s *Store) textSearch(interviews []*Interview, query string, limit int) []Result {
	query = strings.ToLower(query)
	var results []Result
	for _, iv := range interviews {
		for i := range iv.Chunks {
			chunk := &iv.Chunks[i]
			if chunk.Text == "" {
				continue
			}
			if strings.Contains(strings.ToLower(chunk.Text), query) {
				results = append(results, s.result(iv, chunk, 1.0))
			}
		}
	}
	sortByRecency(results)
	return clip(results, limit)
}

// semanticSearch embeds the query and every chunk on the fly and scores
// by cosine similarity. This is deliberately index-free: stale vectors
// can never shadow a freshly edited document. Criteria extracted from
// the query soft-filter the hits.
func (s *Store) semanticSearch(ctx context.Context, interviews []*Interview, query string, limit int) ([]Result, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("semantic search requires an embedding client")
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	criteria := s.groups.ExtractCriteria(query)

	type candidate struct {
		iv    *Interview
		chunk *Chunk
	}
	var candidates []candidate
	var texts []string
	for _, iv := range interviews {
		for i := range iv.Chunks {
			chunk := &iv.Chunks[i]
			if chunk.Text == "" {
				continue
			}
			candidates = append(candidates, candidate{iv: iv, chunk: chunk})
			texts = append(texts, chunk.Text)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed corpus: %w", err)
	}

	var results []Result
	for i, cand := range candidates {
		if vectors[i] == nil {
			continue
		}
		sim := float64(embedding.Similarity(queryVec, vectors[i]))
		if sim <= s.threshold {
			continue
		}
		if !criteria.Empty() && !s.matchesCriteria(cand.chunk, criteria) {
			continue
		}
		results = append(results, s.result(cand.iv, cand.chunk, sim))
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	return clip(results, limit), nil
}

// matchesCriteria applies the soft filter: a chunk passes if it matches
// the emotion side or the theme side of the extracted criteria.
func (s *Store) matchesCriteria(chunk *Chunk, criteria Criteria) bool {
	emotionMatch := len(criteria.Emotions) == 0
	if !emotionMatch {
		group := s.groups.Normalize(chunk.Metadata.Emotion)
		for wanted := range criteria.Emotions {
			if group[wanted] {
				emotionMatch = true
				break
			}
		}
	}

	themeMatch := len(criteria.Themes) == 0
	if !themeMatch {
		for _, theme := range chunk.Metadata.Themes {
			if criteria.Themes[theme] {
				themeMatch = true
				break
			}
		}
	}

	return emotionMatch || themeMatch
}

// emotionSearch matches the requested emotion's whole synonym group and
// ranks hits by normalized intensity.
func (s *Store) emotionSearch(interviews []*Interview, emotion string, limit int) []Result {
	wanted := s.groups.Normalize(emotion)

	var results []Result
	for _, iv := range interviews {
		for i := range iv.Chunks {
			chunk := &iv.Chunks[i]
			if !wanted[chunk.Metadata.Emotion] {
				continue
			}
			results = append(results, s.result(iv, chunk, chunk.Metadata.EmotionIntensity))
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	return clip(results, limit)
}

// tagSearch is the shared theme/insight matcher. The tag sets were
// merged from all storage locations at normalization time, so a plain
// lookup here sees every tag the chunk ever carried.
func (s *Store) tagSearch(interviews []*Interview, query string, limit int, tags func(*Chunk) []string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))

	var results []Result
	for _, iv := range interviews {
		for i := range iv.Chunks {
			chunk := &iv.Chunks[i]
			for _, tag := range tags(chunk) {
				if tag == query {
					results = append(results, s.result(iv, chunk, 1.0))
					break
				}
			}
		}
	}
	sortByRecency(results)
	return clip(results, limit)
}

// ResultForChunk builds the normalized Result for a known chunk, used
// to enrich embedding-index hits with store metadata.
func (s *Store) ResultForChunk(interviewID, chunkID string, similarity float64) (Result, error) {
	iv, err := s.LoadInterview(interviewID)
	if err != nil {
		return Result{}, err
	}
	for i := range iv.Chunks {
		if iv.Chunks[i].ID == chunkID {
			return s.result(iv, &iv.Chunks[i], similarity), nil
		}
	}
	return Result{}, fmt.Errorf("%w: chunk %s in interview %s", ErrNotFound, chunkID, interviewID)
}

func (s *Store) result(iv *Interview, chunk *Chunk, similarity float64) Result {
	timestamp := chunk.Timestamp
	if timestamp == "" {
		timestamp = iv.CreatedAt
	}
	return Result{
		InterviewID:     iv.ID,
		ChunkID:         chunk.ID,
		ProjectName:     iv.ProjectName,
		Content:         chunk.Text,
		Similarity:      similarity,
		Timestamp:       timestamp,
		IntervieweeName: iv.IntervieweeName,
		Metadata:        chunk.Metadata,
	}
}

func sortByRecency(results []Result) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Timestamp > results[j].Timestamp })
}

func clip(results []Result, limit int) []Result {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
