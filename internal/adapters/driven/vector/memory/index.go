// Package memory provides an in-memory vector index using brute-force
// cosine similarity. Suitable for tests and small single-process
// collections; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry pairs a stored chunk with its embedding.
type entry struct {
	chunk     domain.Chunk
	embedding []float32
}

// Index is an in-memory implementation of driven.VectorIndex.
// Embeddings are computed at write time via the embedding service.
type Index struct {
	mu       sync.RWMutex
	embedder driven.EmbeddingService
	entries  map[string]entry
}

// NewIndex creates a new in-memory vector index. The embedding service
// is required: this adapter embeds chunk and query text itself so the
// core can stay text-only.
func NewIndex(embedder driven.EmbeddingService) (*Index, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return &Index{
		embedder: embedder,
		entries:  make(map[string]entry),
	}, nil
}

// Add inserts a chunk, embedding its text. A duplicate ID is rejected
// with domain.ErrAlreadyExists; the stored chunk is never overwritten.
func (i *Index) Add(ctx context.Context, chunk domain.Chunk) error {
	embedding, err := i.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		return fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.entries[chunk.ID]; ok {
		return domain.ErrAlreadyExists
	}
	i.entries[chunk.ID] = entry{chunk: chunk, embedding: embedding}
	return nil
}

// Has reports whether a chunk ID is already indexed.
func (i *Index) Has(_ context.Context, id string) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.entries[id]
	return ok, nil
}

// Query embeds the text and returns the k most similar chunks by cosine
// similarity, most similar first.
func (i *Index) Query(ctx context.Context, text string, k int) ([]domain.Chunk, error) {
	queryVec, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	type scored struct {
		chunk domain.Chunk
		score float64
	}
	ranked := make([]scored, 0, len(i.entries))
	for _, e := range i.entries {
		ranked = append(ranked, scored{chunk: e.chunk, score: cosineSimilarity(queryVec, e.embedding)})
	}

	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		// Deterministic order for equal scores.
		return ranked[a].chunk.ID < ranked[b].chunk.ID
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	if k < 0 {
		k = 0
	}

	chunks := make([]domain.Chunk, k)
	for idx := 0; idx < k; idx++ {
		chunks[idx] = ranked[idx].chunk
	}
	return chunks, nil
}

// Count returns the number of indexed chunks.
func (i *Index) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries), nil
}

// DeleteBySource removes every chunk belonging to a document ID.
func (i *Index) DeleteBySource(_ context.Context, source string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for id, e := range i.entries {
		if e.chunk.Source == source {
			delete(i.entries, id)
		}
	}
	return nil
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths are compared over the shorter prefix.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
