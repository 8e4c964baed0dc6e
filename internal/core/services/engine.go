// Package services implements the core RAG pipeline behind the driving
// ports: chunking and indexing on the write path, retrieval and answer
// synthesis on the read path, composed by the Engine facade.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driven"
	"github.com/custodia-labs/askdoc/internal/core/ports/driving"
	"github.com/custodia-labs/askdoc/internal/logger"
	"github.com/custodia-labs/askdoc/internal/postprocessors/chunker"
)

// Ensure Engine implements the interface.
var _ driving.EngineService = (*Engine)(nil)

// Engine is the single entry point to the pipeline. It holds the
// one-time-constructed handles to the vector index and the generation
// service for the process lifetime and performs no internal locking:
// concurrent ingests of different documents are safe by ID construction,
// and same-chunk races are settled by the index's duplicate rejection.
type Engine struct {
	index     driven.VectorIndex
	llm       driven.LLMService
	ingestor  *IngestService
	retriever *RetrievalService
	answerer  *AnswerService
}

// EngineOption configures the engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	chunkSize    int
	chunkOverlap int
	promptStore  driven.PromptStore
}

// WithChunking overrides the default window size and overlap.
func WithChunking(size, overlap int) EngineOption {
	return func(c *engineConfig) {
		c.chunkSize = size
		c.chunkOverlap = overlap
	}
}

// WithPromptStore supplies customisable prompt templates.
func WithPromptStore(store driven.PromptStore) EngineOption {
	return func(c *engineConfig) {
		c.promptStore = store
	}
}

// NewEngine composes the pipeline around the two external service
// handles. Both are required: a missing index or generation service is a
// configuration error and the engine refuses to construct rather than
// run degraded.
func NewEngine(index driven.VectorIndex, llm driven.LLMService, opts ...EngineOption) (*Engine, error) {
	if index == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	cfg := engineConfig{
		chunkSize:    chunker.DefaultChunkSize,
		chunkOverlap: chunker.DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(cfg.chunkSize),
		chunker.WithOverlap(cfg.chunkOverlap),
	)
	if err != nil {
		return nil, fmt.Errorf("configure chunker: %w", err)
	}

	retriever := NewRetrievalService(index)
	answerer := NewAnswerService(retriever, llm)
	if cfg.promptStore != nil {
		answerer.SetPromptStore(cfg.promptStore)
	}

	return &Engine{
		index:     index,
		llm:       llm,
		ingestor:  NewIngestService(index, splitter),
		retriever: retriever,
		answerer:  answerer,
	}, nil
}

// Ingest chunks the document and indexes its chunks.
func (e *Engine) Ingest(
	ctx context.Context, doc domain.Document, opts domain.IngestOptions,
) (domain.IngestReport, error) {
	if strings.TrimSpace(doc.ID) == "" {
		return domain.IngestReport{}, fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}
	return e.ingestor.Ingest(ctx, doc, opts)
}

// Ask answers a query with or without retrieval. An empty query is a
// content error, not a fault: it yields an empty answer with zero side
// effects. Backend failures are folded into the answer text, so a
// well-formed ask never returns an error.
func (e *Engine) Ask(ctx context.Context, query string, useRAG bool) (domain.Answer, error) {
	mode := domain.ModeDirect
	if useRAG {
		mode = domain.ModeRAG
	}

	if strings.TrimSpace(query) == "" {
		logger.Debug("Empty query, nothing to ask")
		return domain.Answer{
			Sources: []string{},
			Mode:    mode,
			Model:   e.llm.ModelName(),
		}, nil
	}

	logger.Section("Ask")
	logger.Debug("Query: %q (mode: %s)", query, mode)

	return e.answerer.Synthesize(ctx, query, useRAG), nil
}

// Stats queries the index's live chunk count, not a cached counter.
func (e *Engine) Stats(ctx context.Context) (domain.Stats, error) {
	count, err := e.index.Count(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("index count: %w", err)
	}
	return domain.Stats{
		TotalChunks: count,
		Model:       e.llm.ModelName(),
	}, nil
}

// Close releases the two external service handles.
func (e *Engine) Close() error {
	indexErr := e.index.Close()
	llmErr := e.llm.Close()
	if indexErr != nil {
		return indexErr
	}
	return llmErr
}
