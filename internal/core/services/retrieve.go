package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driven"
	"github.com/custodia-labs/askdoc/internal/logger"
)

// DefaultRetrievalLimit is the number of chunks returned when the caller
// does not specify one.
const DefaultRetrievalLimit = 3

// RetrievalService ranks indexed chunks against a query. It is stateless
// across calls: every retrieval consults the live index, which may have
// grown since the previous call. A query that overlaps a concurrent
// ingestion may or may not see the new chunks.
type RetrievalService struct {
	index driven.VectorIndex
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(index driven.VectorIndex) *RetrievalService {
	return &RetrievalService{index: index}
}

// Retrieve returns up to k chunks ranked by similarity to the query,
// most relevant first. An empty index returns no results without
// touching the store's query path, and k is clamped to the current
// index size so the store is never asked for more results than exist.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultRetrievalLimit
	}

	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("index count: %w", err)
	}
	if count == 0 {
		logger.Debug("Index is empty, skipping query")
		return nil, nil
	}

	if k > count {
		k = count
	}

	chunks, err := s.index.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("index query: %w", err)
	}

	logger.Debug("Retrieved %d chunk(s) for query", len(chunks))
	return chunks, nil
}
