package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/postprocessors/chunker"
)

func newTestIngestService(t *testing.T, index *mockIndex) *IngestService {
	t.Helper()
	splitter, err := chunker.New(chunker.WithChunkSize(10), chunker.WithOverlap(0))
	require.NoError(t, err)
	return NewIngestService(index, splitter)
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes all chunks of a new document", func(t *testing.T) {
		index := newMockIndex()
		svc := newTestIngestService(t, index)

		doc := domain.Document{ID: "cv", Text: strings.Repeat("a", 25)}
		report, err := svc.Ingest(ctx, doc, domain.IngestOptions{})

		require.NoError(t, err)
		assert.Equal(t, "cv", report.Source)
		assert.Equal(t, 3, report.ChunkCount)
		assert.Equal(t, 3, report.Indexed)
		assert.Equal(t, 0, report.Skipped)
		assert.Empty(t, report.Failures)
		assert.Equal(t, 3, index.len())
	})

	t.Run("chunk IDs are deterministic", func(t *testing.T) {
		index := newMockIndex()
		svc := newTestIngestService(t, index)

		doc := domain.Document{ID: "notes", Text: strings.Repeat("b", 15)}
		_, err := svc.Ingest(ctx, doc, domain.IngestOptions{})
		require.NoError(t, err)

		has, err := index.Has(ctx, "notes_chunk_0")
		require.NoError(t, err)
		assert.True(t, has)
		has, err = index.Has(ctx, "notes_chunk_1")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("re-ingesting the same document is idempotent", func(t *testing.T) {
		index := newMockIndex()
		svc := newTestIngestService(t, index)
		doc := domain.Document{ID: "cv", Text: strings.Repeat("a", 25)}

		first, err := svc.Ingest(ctx, doc, domain.IngestOptions{})
		require.NoError(t, err)
		second, err := svc.Ingest(ctx, doc, domain.IngestOptions{})
		require.NoError(t, err)

		assert.Equal(t, first.ChunkCount, second.ChunkCount)
		assert.Equal(t, 0, second.Indexed)
		assert.Equal(t, second.ChunkCount, second.Skipped)
		assert.Equal(t, 3, index.len(), "index size must not grow on re-ingest")
	})

	t.Run("documents with different IDs never collide", func(t *testing.T) {
		index := newMockIndex()
		svc := newTestIngestService(t, index)
		text := strings.Repeat("c", 25)

		_, err := svc.Ingest(ctx, domain.Document{ID: "doc1", Text: text}, domain.IngestOptions{})
		require.NoError(t, err)
		report, err := svc.Ingest(ctx, domain.Document{ID: "doc2", Text: text}, domain.IngestOptions{})
		require.NoError(t, err)

		assert.Equal(t, 3, report.Indexed)
		assert.Equal(t, 0, report.Skipped)
		assert.Equal(t, 6, index.len())
	})

	t.Run("empty document ingests nothing", func(t *testing.T) {
		index := newMockIndex()
		svc := newTestIngestService(t, index)

		report, err := svc.Ingest(ctx, domain.Document{ID: "empty", Text: "   \n "}, domain.IngestOptions{})

		require.NoError(t, err)
		assert.Equal(t, 0, report.ChunkCount)
		assert.Equal(t, 0, index.len())
	})

	t.Run("a failing chunk does not abort the rest", func(t *testing.T) {
		index := newMockIndex()
		index.addFailIDs = map[string]error{
			"cv_chunk_1": errors.New("write failed"),
		}
		svc := newTestIngestService(t, index)

		doc := domain.Document{ID: "cv", Text: strings.Repeat("a", 25)}
		report, err := svc.Ingest(ctx, doc, domain.IngestOptions{})

		require.NoError(t, err, "per-chunk failures must not fail the ingest")
		assert.Equal(t, 3, report.ChunkCount)
		assert.Equal(t, 2, report.Indexed)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, "cv_chunk_1", report.Failures[0].ChunkID)
		assert.Equal(t, 2, index.len())
	})

	t.Run("duplicate race is counted as skipped", func(t *testing.T) {
		index := newMockIndex()
		// Has says absent, Add says duplicate: simulates losing the race.
		index.addFailIDs = map[string]error{
			"cv_chunk_0": domain.ErrAlreadyExists,
		}
		svc := newTestIngestService(t, index)

		doc := domain.Document{ID: "cv", Text: strings.Repeat("a", 15)}
		report, err := svc.Ingest(ctx, doc, domain.IngestOptions{})

		require.NoError(t, err)
		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, 1, report.Indexed)
		assert.Empty(t, report.Failures)
	})

	t.Run("replace deletes existing chunks first", func(t *testing.T) {
		index := newMockIndex()
		svc := newTestIngestService(t, index)

		// Longer original leaves trailing chunks a plain re-ingest
		// would never clean up.
		_, err := svc.Ingest(ctx, domain.Document{ID: "cv", Text: strings.Repeat("a", 45)}, domain.IngestOptions{})
		require.NoError(t, err)
		require.Equal(t, 5, index.len())

		report, err := svc.Ingest(ctx,
			domain.Document{ID: "cv", Text: strings.Repeat("b", 25)},
			domain.IngestOptions{Replace: true})

		require.NoError(t, err)
		assert.Equal(t, 1, index.deleteCalls)
		assert.Equal(t, 3, report.Indexed)
		assert.Equal(t, 3, index.len(), "stale chunks must be gone")
	})

	t.Run("replace delete failure aborts the ingest", func(t *testing.T) {
		index := newMockIndex()
		index.deleteErr = errors.New("delete failed")
		svc := newTestIngestService(t, index)

		_, err := svc.Ingest(ctx,
			domain.Document{ID: "cv", Text: "hello"},
			domain.IngestOptions{Replace: true})

		assert.Error(t, err)
		assert.Equal(t, 0, index.len())
	})

	t.Run("existence check failure is recorded per chunk", func(t *testing.T) {
		index := newMockIndex()
		index.hasErr = errors.New("index offline")
		svc := newTestIngestService(t, index)

		report, err := svc.Ingest(ctx,
			domain.Document{ID: "cv", Text: strings.Repeat("a", 15)},
			domain.IngestOptions{})

		require.NoError(t, err)
		assert.Equal(t, 0, report.Indexed)
		assert.Len(t, report.Failures, 2)
	})
}
