package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdoc/internal/core/domain"
)

// mockEngine is a canned driving.EngineService.
type mockEngine struct {
	answer    domain.Answer
	askErr    error
	report    domain.IngestReport
	ingestErr error
	stats     domain.Stats
	statsErr  error

	lastQuery  string
	lastUseRAG bool
	lastDoc    domain.Document
	lastOpts   domain.IngestOptions
}

func (m *mockEngine) Ingest(_ context.Context, doc domain.Document, opts domain.IngestOptions) (domain.IngestReport, error) {
	m.lastDoc = doc
	m.lastOpts = opts
	return m.report, m.ingestErr
}

func (m *mockEngine) Ask(_ context.Context, query string, useRAG bool) (domain.Answer, error) {
	m.lastQuery = query
	m.lastUseRAG = useRAG
	return m.answer, m.askErr
}

func (m *mockEngine) Stats(_ context.Context) (domain.Stats, error) {
	return m.stats, m.statsErr
}

func TestPorts_Validate(t *testing.T) {
	t.Run("valid with engine only", func(t *testing.T) {
		ports := &Ports{Engine: &mockEngine{}}

		assert.NoError(t, ports.Validate())
	})

	t.Run("missing engine returns error", func(t *testing.T) {
		ports := &Ports{}

		assert.ErrorIs(t, ports.Validate(), ErrMissingEngine)
	})
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid ports", func(t *testing.T) {
		server, err := NewServer(&Ports{Engine: &mockEngine{}})

		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("rejects missing engine", func(t *testing.T) {
		_, err := NewServer(&Ports{})

		assert.Error(t, err)
	})
}

func TestHandleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the engine answer", func(t *testing.T) {
		engine := &mockEngine{answer: domain.Answer{
			Text:        "the answer",
			Sources:     []string{"ctx"},
			Mode:        domain.ModeRAG,
			Model:       "test-model",
			ContextUsed: true,
		}}
		server, err := NewServer(&Ports{Engine: engine})
		require.NoError(t, err)

		_, out, err := server.handleAsk(ctx, nil, AskInput{Query: "who is X?"})

		require.NoError(t, err)
		assert.Equal(t, "the answer", out.Answer)
		assert.Equal(t, []string{"ctx"}, out.Sources)
		assert.Equal(t, "RAG", out.Mode)
		assert.True(t, out.ContextUsed)
		assert.True(t, engine.lastUseRAG, "RAG is the default")
	})

	t.Run("use_rag false is passed through", func(t *testing.T) {
		engine := &mockEngine{}
		server, err := NewServer(&Ports{Engine: engine})
		require.NoError(t, err)

		useRAG := false
		_, _, err = server.handleAsk(ctx, nil, AskInput{Query: "q", UseRAG: &useRAG})

		require.NoError(t, err)
		assert.False(t, engine.lastUseRAG)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		server, err := NewServer(&Ports{Engine: &mockEngine{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Query: "  "})

		assert.Error(t, err)
	})
}

func TestHandleIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests inline text", func(t *testing.T) {
		engine := &mockEngine{report: domain.IngestReport{
			Source:     "cv",
			ChunkCount: 3,
			Indexed:    3,
		}}
		server, err := NewServer(&Ports{Engine: engine})
		require.NoError(t, err)

		_, out, err := server.handleIngest(ctx, nil, IngestInput{
			DocumentID: "cv",
			Text:       "document text",
			Replace:    true,
		})

		require.NoError(t, err)
		assert.Equal(t, "cv", out.Source)
		assert.Equal(t, 3, out.ChunkCount)
		assert.Equal(t, "cv", engine.lastDoc.ID)
		assert.True(t, engine.lastOpts.Replace)
	})

	t.Run("empty document ID is rejected", func(t *testing.T) {
		server, err := NewServer(&Ports{Engine: &mockEngine{}})
		require.NoError(t, err)

		_, _, err = server.handleIngest(ctx, nil, IngestInput{Text: "text"})

		assert.Error(t, err)
	})
}

func TestHandleStats(t *testing.T) {
	engine := &mockEngine{stats: domain.Stats{TotalChunks: 7, Model: "test-model"}}
	server, err := NewServer(&Ports{Engine: engine})
	require.NoError(t, err)

	_, out, err := server.handleStats(context.Background(), nil, struct{}{})

	require.NoError(t, err)
	assert.Equal(t, 7, out.TotalChunks)
	assert.Equal(t, "test-model", out.Model)
}
