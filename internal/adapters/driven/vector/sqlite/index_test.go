package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdoc/internal/core/domain"
)

// stubEmbedder maps known texts to fixed vectors so similarity ranking
// is predictable.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, _ := s.Embed(ctx, t)
		out[i] = v
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int              { return 3 }
func (s *stubEmbedder) ModelName() string            { return "stub" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                 { return nil }

func newTestEmbedder() *stubEmbedder {
	return &stubEmbedder{vectors: map[string][]float32{
		"about cats": {1, 0, 0},
		"about dogs": {0, 1, 0},
		"cats":       {0.9, 0.1, 0},
	}}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	index, err := NewIndex(t.TempDir(), newTestEmbedder())
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	return index
}

func TestNewIndex(t *testing.T) {
	t.Run("requires an embedder", func(t *testing.T) {
		_, err := NewIndex(t.TempDir(), nil)

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("creates the database file", func(t *testing.T) {
		dir := t.TempDir()

		index, err := NewIndex(dir, newTestEmbedder())

		require.NoError(t, err)
		defer index.Close()
		assert.Equal(t, filepath.Join(dir, "index.db"), index.Path())
	})

	t.Run("migrations are idempotent across reopens", func(t *testing.T) {
		dir := t.TempDir()

		index, err := NewIndex(dir, newTestEmbedder())
		require.NoError(t, err)
		require.NoError(t, index.Close())

		index, err = NewIndex(dir, newTestEmbedder())
		require.NoError(t, err)
		assert.NoError(t, index.Close())
	})
}

func TestIndex_AddHasQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("add then has", func(t *testing.T) {
		index := newTestIndex(t)

		err := index.Add(ctx, domain.Chunk{ID: "cv_chunk_0", Source: "cv", Index: 0, Total: 1, Text: "about cats"})
		require.NoError(t, err)

		has, err := index.Has(ctx, "cv_chunk_0")
		require.NoError(t, err)
		assert.True(t, has)

		has, err = index.Has(ctx, "cv_chunk_1")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("duplicate ID maps to ErrAlreadyExists", func(t *testing.T) {
		index := newTestIndex(t)

		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "cv_chunk_0", Text: "about cats"}))
		err := index.Add(ctx, domain.Chunk{ID: "cv_chunk_0", Text: "about dogs"})

		assert.ErrorIs(t, err, domain.ErrAlreadyExists)

		// The first write survives.
		chunks, err := index.Query(ctx, "about cats", 1)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "about cats", chunks[0].Text)
	})

	t.Run("query ranks by similarity and restores fields", func(t *testing.T) {
		index := newTestIndex(t)
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "a", Source: "cv", Index: 0, Total: 2, Text: "about cats"}))
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "b", Source: "cv", Index: 1, Total: 2, Text: "about dogs"}))

		chunks, err := index.Query(ctx, "cats", 2)

		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "about cats", chunks[0].Text)
		assert.Equal(t, "cv", chunks[0].Source)
		assert.Equal(t, 0, chunks[0].Index)
		assert.Equal(t, 2, chunks[0].Total)
		assert.Equal(t, "about dogs", chunks[1].Text)
	})

	t.Run("k larger than stored rows returns everything", func(t *testing.T) {
		index := newTestIndex(t)
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "a", Text: "about cats"}))

		chunks, err := index.Query(ctx, "cats", 50)

		require.NoError(t, err)
		assert.Len(t, chunks, 1)
	})
}

func TestIndex_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("chunks survive a reopen", func(t *testing.T) {
		dir := t.TempDir()

		index, err := NewIndex(dir, newTestEmbedder())
		require.NoError(t, err)
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "cv_chunk_0", Source: "cv", Text: "about cats"}))
		require.NoError(t, index.Close())

		index, err = NewIndex(dir, newTestEmbedder())
		require.NoError(t, err)
		defer index.Close()

		count, err := index.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		chunks, err := index.Query(ctx, "about cats", 1)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "about cats", chunks[0].Text)
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

		count, err = index.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("delete by source removes only that document", func(t *testing.T) {
		index := newTestIndex(t)
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "cv_chunk_0", Source: "cv", Text: "about cats"}))
		require.NoError(t, index.Add(ctx, domain.Chunk{ID: "notes_chunk_0", Source: "notes", Text: "about dogs"}))

		require.NoError(t, index.DeleteBySource(ctx, "cv"))

		count, err := index.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		has, err := index.Has(ctx, "notes_chunk_0")
		require.NoError(t, err)
		assert.True(t, has)
	})
}

func TestFloat32Roundtrip(t *testing.T) {
	vec := []float32{0.5, -1.25, 3.75, 0}

	got := bytesToFloat32Slice(float32SliceToBytes(vec))

	assert.Equal(t, vec, got)
}
