package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driven"
	"github.com/custodia-labs/askdoc/internal/logger"
	"github.com/custodia-labs/askdoc/internal/postprocessors/chunker"
)

// IngestService chunks documents and writes the chunks into the vector
// index with deterministic IDs, deduplicating against what is already
// indexed. It is the write path of the pipeline.
type IngestService struct {
	index    driven.VectorIndex
	splitter *chunker.Processor
}

// NewIngestService creates a new ingest service.
func NewIngestService(index driven.VectorIndex, splitter *chunker.Processor) *IngestService {
	return &IngestService{
		index:    index,
		splitter: splitter,
	}
}

// Ingest splits the document into windows and indexes each one under
// "{source}_chunk_{i}". Chunks whose IDs are already present are skipped
// silently, making re-ingestion of an unchanged document idempotent.
// With opts.Replace, previously indexed chunks for the document are
// deleted first, so content edits under the same ID take effect.
//
// A write failure on one chunk is recorded in the report and does not
// abort the remaining chunks; the index is not transactional across a
// document. The report's ChunkCount always equals the number of windows
// produced, not the number newly written.
func (s *IngestService) Ingest(
	ctx context.Context, doc domain.Document, opts domain.IngestOptions,
) (domain.IngestReport, error) {
	report := domain.IngestReport{Source: doc.ID}

	if strings.TrimSpace(doc.Text) == "" {
		logger.Debug("Document %q is empty, nothing to ingest", doc.ID)
		return report, nil
	}

	if opts.Replace {
		logger.Debug("Replace mode: deleting existing chunks for %q", doc.ID)
		if err := s.index.DeleteBySource(ctx, doc.ID); err != nil {
			return report, fmt.Errorf("delete existing chunks for %q: %w", doc.ID, err)
		}
	}

	windows := s.splitter.Split(doc.Text)
	report.ChunkCount = len(windows)
	logger.Debug("Document %q produced %d windows", doc.ID, len(windows))

	for i, window := range windows {
		chunk := domain.Chunk{
			ID:     domain.ChunkID(doc.ID, i),
			Source: doc.ID,
			Index:  i,
			Total:  len(windows),
			Text:   window,
		}

		exists, err := s.index.Has(ctx, chunk.ID)
		if err != nil {
			logger.Warn("Existence check for %s failed: %v", chunk.ID, err)
			report.Failures = append(report.Failures, domain.ChunkFailure{ChunkID: chunk.ID, Err: err})
			continue
		}
		if exists {
			report.Skipped++
			continue
		}

		err = s.index.Add(ctx, chunk)
		switch {
		case err == nil:
			report.Indexed++
		case errors.Is(err, domain.ErrAlreadyExists):
			// Lost a race with a concurrent ingest of the same chunk;
			// the index kept the first write, which is what we want.
			report.Skipped++
		default:
			logger.Warn("Indexing %s failed: %v", chunk.ID, err)
			report.Failures = append(report.Failures, domain.ChunkFailure{ChunkID: chunk.ID, Err: err})
		}
	}

	logger.Info("Ingested %q: %d chunks (%d new, %d present, %d failed)",
		doc.ID, report.ChunkCount, report.Indexed, report.Skipped, len(report.Failures))

	return report, nil
}
