package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/fileutil"
	"github.com/kb2232/insightdex/internal/vecindex"
)

// ErrNotFound is returned when an interview document does not exist.
var ErrNotFound = errors.New("interview not found")

const defaultProjectName = "Research of Researchers"

// Embedder is the slice of the embedding service the semantic search
// mode needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Remover removes an interview's vectors from the embedding index.
type Remover interface {
	Remove(interviewID string) (int, error)
}

// Store holds processed interview documents, one JSON file per
// interview, and exposes the five search modes over them. Reads always
// go back to disk so concurrent searches see a fresh corpus.
type Store struct {
	dir            string
	exclude        []string
	scaleMax       float64
	threshold      float64
	defaultProject string
	groups         EmotionGroups
	embedder       Embedder
	remover        Remover
}

// NewStore creates a store over the configured directory.
func NewStore(cfg *config.StoreConfig, searchCfg *config.SearchConfig, embedder Embedder) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	groups, err := LoadEmotionGroups(cfg.SynonymsFile)
	if err != nil {
		return nil, err
	}

	scaleMax := cfg.EmotionScaleMax
	if scaleMax < 1 {
		scaleMax = 3
	}
	threshold := 0.3
	if searchCfg != nil && searchCfg.SemanticThreshold > 0 {
		threshold = searchCfg.SemanticThreshold
	}

	return &Store{
		dir:            cfg.Path,
		exclude:        cfg.Exclude,
		scaleMax:       scaleMax,
		threshold:      threshold,
		defaultProject: defaultProjectName,
		groups:         groups,
		embedder:       embedder,
	}, nil
}

// AttachIndex wires the embedding index in so Delete can cascade.
func (s *Store) AttachIndex(r Remover) {
	s.remover = r
}

// EmotionGroups exposes the loaded synonym groups.
func (s *Store) EmotionGroups() EmotionGroups {
	return s.groups
}

func (s *Store) interviewPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// SaveInterview persists an interview document.
func (s *Store) SaveInterview(iv *Interview) error {
	if iv.ID == "" {
		return fmt.Errorf("interview id is required")
	}
	path := s.interviewPath(iv.ID)
	if err := fileutil.WriteJSONAtomic(path, iv, true); err != nil {
		return fmt.Errorf("failed to save interview %s: %w", iv.ID, err)
	}
	iv.path = path
	return nil
}

// LoadInterview reads and normalizes one interview document.
func (s *Store) LoadInterview(id string) (*Interview, error) {
	return s.loadFile(s.interviewPath(id))
}

func (s *Store) loadFile(path string) (*Interview, error) {
	var raw rawInterview
	if err := fileutil.ReadJSON(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSuffix(filepath.Base(path), ".json"))
		}
		return nil, fmt.Errorf("failed to read interview %s: %w", path, err)
	}
	return normalizeInterview(&raw, path, s.scaleMax, s.defaultProject), nil
}

// List loads every interview document in the store, sorted most recent
// first. Corrupt files are skipped, not fatal, matching the tolerance
// the legacy corpus demands.
func (s *Store) List() ([]*Interview, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var interviews []*Interview
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if s.excluded(entry.Name()) {
			continue
		}
		iv, err := s.loadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		interviews = append(interviews, iv)
	}

	sort.SliceStable(interviews, func(i, j int) bool {
		return interviews[i].CreatedAt > interviews[j].CreatedAt
	})
	return interviews, nil
}

func (s *Store) excluded(name string) bool {
	for _, pattern := range s.exclude {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Delete removes an interview document and cascades the removal to the
// embedding index when one is attached.
func (s *Store) Delete(id string) error {
	path := s.interviewPath(id)
	if !fileutil.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete interview %s: %w", id, err)
	}

	if s.remover != nil {
		if _, err := s.remover.Remove(id); err != nil && !errors.Is(err, vecindex.ErrNotFound) {
			return fmt.Errorf("interview %s deleted but index cleanup failed: %w", id, err)
		}
	}
	return nil
}

// Count returns the number of interview documents on disk.
func (s *Store) Count() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") || s.excluded(entry.Name()) {
			continue
		}
		n++
	}
	return n, nil
}
