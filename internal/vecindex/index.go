package vecindex

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/embedding"
)

// Embedder is the slice of the embedding service the index needs
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Entry is one indexed chunk
type Entry struct {
	ChunkID     string `json:"chunk_id"`
	InterviewID string `json:"interview_id"`
	Text        string `json:"text"`
}

// Hit is one search result
type Hit struct {
	ChunkID     string  `json:"chunk_id"`
	InterviewID string  `json:"interview_id"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}

// Index is a brute-force L2 vector index over interview chunks.
// Vectors live in a flat binary file, entry metadata in a JSON side-file,
// written together so the pair stays consistent.
type Index struct {
	mu       sync.RWMutex
	dim      int
	entries  []Entry
	vectors  [][]float32
	embedder Embedder
	path     string

	fanOut        int
	temperature   float64
	minSimilarity float64

	inconsistent bool
}

// Open loads the index from disk, or creates an empty one if no files exist
func Open(cfg *config.IndexConfig, embedder Embedder) (*Index, error) {
	idx := &Index{
		dim:           embedder.Dimensions(),
		embedder:      embedder,
		path:          cfg.Path,
		fanOut:        cfg.FanOut,
		temperature:   cfg.Temperature,
		minSimilarity: cfg.MinSimilarity,
	}

	if err := idx.load(); err != nil {
		return nil, err
	}

	if idx.inconsistent {
		log.Printf("warning: index at %s is inconsistent (%d vectors, %d entries); writes are blocked until rebuild",
			cfg.Path, len(idx.vectors), len(idx.entries))
	}

	return idx, nil
}

// Count returns the number of indexed chunks
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Interviews returns the distinct interview ids in the index
func (idx *Index) Interviews() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for _, e := range idx.entries {
		if !seen[e.InterviewID] {
			seen[e.InterviewID] = true
			ids = append(ids, e.InterviewID)
		}
	}
	sort.Strings(ids)
	return ids
}

// AddBatch embeds and indexes a batch of chunks. The batch is all-or-nothing:
// if any embedding fails, nothing is appended and nothing is persisted.
func (idx *Index) AddBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.inconsistent {
		return ErrInconsistent
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed batch: %w", err)
	}

	for i, vec := range vectors {
		if len(vec) != idx.dim {
			return fmt.Errorf("entry %s: expected %d dimensions, got %d",
				entries[i].ChunkID, idx.dim, len(vec))
		}
	}

	idx.entries = append(idx.entries, entries...)
	idx.vectors = append(idx.vectors, vectors...)

	if err := idx.save(); err != nil {
		// roll back the in-memory append so memory matches disk
		idx.entries = idx.entries[:len(idx.entries)-len(entries)]
		idx.vectors = idx.vectors[:len(idx.vectors)-len(vectors)]
		return fmt.Errorf("failed to persist index: %w", err)
	}

	return nil
}

// Remove deletes every entry for an interview and persists the result.
// Returns ErrNotFound if the interview has no entries.
func (idx *Index) Remove(interviewID string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.inconsistent {
		return 0, ErrInconsistent
	}

	keptEntries := make([]Entry, 0, len(idx.entries))
	keptVectors := make([][]float32, 0, len(idx.vectors))
	removed := 0
	for i, e := range idx.entries {
		if e.InterviewID == interviewID {
			removed++
			continue
		}
		keptEntries = append(keptEntries, e)
		keptVectors = append(keptVectors, idx.vectors[i])
	}

	if removed == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, interviewID)
	}

	oldEntries, oldVectors := idx.entries, idx.vectors
	idx.entries = keptEntries
	idx.vectors = keptVectors

	if err := idx.save(); err != nil {
		idx.entries = oldEntries
		idx.vectors = oldVectors
		return 0, fmt.Errorf("failed to persist index: %w", err)
	}

	return removed, nil
}

// Search embeds the query and returns the best chunk per interview,
// scored by a sigmoid over L2 distance and filtered by the similarity floor.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if k <= 0 {
		k = 10
	}

	queryVec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.searchVector(queryVec, k, ""), nil
}

// FindSimilar returns chunks similar to an already-indexed chunk,
// excluding the chunk itself. Returns ErrNotFound for unknown chunk ids.
func (idx *Index) FindSimilar(chunkID string, k int) ([]Hit, error) {
	if k <= 0 {
		k = 10
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	pos := -1
	for i, e := range idx.entries {
		if e.ChunkID == chunkID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, chunkID)
	}

	return idx.searchVector(idx.vectors[pos], k, chunkID), nil
}

// searchVector is the shared brute-force scan. Callers hold at least a
// read lock. excludeChunk, when non-empty, is skipped entirely.
func (idx *Index) searchVector(queryVec []float32, k int, excludeChunk string) []Hit {
	n := len(idx.vectors)
	if n > len(idx.entries) {
		n = len(idx.entries)
	}
	if n == 0 {
		return nil
	}

	type scored struct {
		pos  int
		dist float64
	}

	candidates := make([]scored, 0, n)
	for i := 0; i < n; i++ {
		if excludeChunk != "" && idx.entries[i].ChunkID == excludeChunk {
			continue
		}
		d := float64(embedding.L2Distance(queryVec, idx.vectors[i]))
		candidates = append(candidates, scored{pos: i, dist: d})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	// Over-fetch before deduplication so one chatty interview cannot
	// crowd every other interview out of the final k.
	kPrime := k * idx.fanOut
	if kPrime > len(candidates) {
		kPrime = len(candidates)
	}

	best := make(map[string]Hit)
	var order []string
	for _, c := range candidates[:kPrime] {
		e := idx.entries[c.pos]
		score := idx.sigmoidScore(c.dist)
		if score < idx.minSimilarity {
			continue
		}
		if existing, ok := best[e.InterviewID]; ok && existing.Score >= score {
			continue
		}
		if _, ok := best[e.InterviewID]; !ok {
			order = append(order, e.InterviewID)
		}
		best[e.InterviewID] = Hit{
			ChunkID:     e.ChunkID,
			InterviewID: e.InterviewID,
			Text:        e.Text,
			Score:       score,
		}
	}

	hits := make([]Hit, 0, len(best))
	for _, id := range order {
		hits = append(hits, best[id])
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// sigmoidScore squashes an L2 distance into (0, 0.5].
// Distance 0 maps to 0.5; larger distances decay toward 0.
func (idx *Index) sigmoidScore(dist float64) float64 {
	return 1.0 / (1.0 + math.Exp(dist/idx.temperature))
}
