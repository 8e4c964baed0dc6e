package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdoc/internal/core/domain"
)

// stubEmbedder maps known texts to fixed vectors so similarity ranking
// is predictable. Unknown texts embed to a zero-adjacent default.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int               { return 3 }
func (s *stubEmbedder) ModelName() string             { return "stub" }
func (s *stubEmbedder) Ping(_ context.Context) error  { return nil }
func (s *stubEmbedder) Close() error                  { return nil }

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := NewIndex(&stubEmbedder{vectors: map[string][]float32{
		"about cats": {1, 0, 0},
		"about dogs": {0, 1, 0},
		"about fish": {0, 0, 1},
		"cats":       {0.9, 0.1, 0},
	}})
	require.NoError(t, err)
	return index
}

func TestNewIndex(t *testing.T) {
	t.Run("requires an embedder", func(t *testing.T) {
		_, err := NewIndex(nil)

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestIndex_AddHas(t *testing.T) {
	ctx := context.Background()

	t.Run("add then has", func(t *testing.T) {
		index := newTestIndex(t)

		err := index.Add(ctx, domain.Chunk{ID: "doc_chunk_0", Source: "doc", Text: "about cats"})
		require.NoError(t, err)

		has, err := index.Has(ctx, "doc_chunk_0")
		require.NoError(t, err)
		assert.True(t, has)

		has, err = index.Has(ctx, "doc_chunk_1")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("duplicate ID is rejected and not overwritten", func(t *testing.T) {
		index := newTestIndex(t)

		err := index.Add(ctx, domain.Chunk{ID: "doc_chunk_0", Text: "about cats"})
		require.NoError(t, err)

		err = index.Add(ctx, domain.Chunk{ID: "doc_chunk_0", Text: "about dogs"})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)

		chunks, err := index.Query(ctx, "about cats", 1)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "about cats", chunks[0].Text, "first write must win")
	})

	t.Run("embedding failure surfaces from add", func(t *testing.T) {
		index, err := NewIndex(&stubEmbedder{err: errors.New("embedder down")})
		require.NoError(t, err)

		err = index.Add(ctx, domain.Chunk{ID: "doc_chunk_0", Text: "x"})
		assert.Error(t, err)
	})
}

func TestIndex_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		index := newTestIndex(t)
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "a", Text: "about cats"}))
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "b", Text: "about dogs"}))
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "c", Text: "about fish"}))

		chunks, err := index.Query(ctx, "cats", 2)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "about cats", chunks[0].Text)
		assert.Equal(t, "about dogs", chunks[1].Text)
	})

	t.Run("k larger than the index returns everything", func(t *testing.T) {
		index := newTestIndex(t)
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "a", Text: "about cats"}))

		chunks, err := index.Query(ctx, "cats", 10)

		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})

	t.Run("equal scores break ties by chunk ID", func(t *testing.T) {
		index := newTestIndex(t)
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "b", Text: "about cats"}))
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "a", Text: "about cats"}))

		chunks, err := index.Query(ctx, "about cats", 2)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "a", chunks[0].ID)
		assert.Equal(t, "b", chunks[1].ID)
	})
}

func TestIndex_CountDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("count tracks adds", func(t *testing.T) {
		index := newTestIndex(t)

		count, err := index.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "a", Text: "about cats"}))
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "b", Text: "about dogs"}))

		count, err = index.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("delete by source removes only that document", func(t *testing.T) {
		index := newTestIndex(t)
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "cv_chunk_0", Source: "cv", Text: "about cats"}))
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "cv_chunk_1", Source: "cv", Text: "about dogs"}))
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "notes_chunk_0", Source: "notes", Text: "about fish"}))

		require.NoError(t, index.DeleteBySource(ctx, "cv"))

		count, err := index.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		has, err := index.Has(ctx, "notes_chunk_0")
		require.NoError(t, err)
		assert.True(t, has)
	})
}
