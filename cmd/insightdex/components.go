package main

import (
	"fmt"

	"github.com/kb2232/insightdex/internal/config"
	"github.com/kb2232/insightdex/internal/embedding"
	"github.com/kb2232/insightdex/internal/store"
	"github.com/kb2232/insightdex/internal/vecindex"
)

// components wires the embedding service, the index and the store
// together once per invocation.
type components struct {
	cfg      *config.Config
	embedder *embedding.Service
	index    *vecindex.Index
	store    *store.Store
}

func openComponents(cfg *config.Config) (*components, error) {
	embedder, err := embedding.NewService(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}

	index, err := vecindex.Open(&cfg.Index, embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	st, err := store.NewStore(&cfg.Store, &cfg.Search, embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	st.AttachIndex(index)

	return &components{
		cfg:      cfg,
		embedder: embedder,
		index:    index,
		store:    st,
	}, nil
}
