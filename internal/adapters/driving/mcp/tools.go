package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/askdoc/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query  string `json:"query" jsonschema:"the question to answer from the indexed documents"`
	UseRAG *bool  `json:"use_rag,omitempty" jsonschema:"retrieve document context before answering (default true)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources,omitempty"`
	Mode        string   `json:"mode"`
	Model       string   `json:"model"`
	ContextUsed bool     `json:"context_used"`
}

// IngestInput is the input schema for the ingest_document tool.
type IngestInput struct {
	DocumentID string `json:"document_id" jsonschema:"identifier for the document, used to derive chunk IDs"`
	Text       string `json:"text" jsonschema:"the document text to index"`
	Replace    bool   `json:"replace,omitempty" jsonschema:"drop any existing chunks for this document first"`
}

// IngestOutput is the output schema for the ingest_document tool.
type IngestOutput struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
	Indexed    int    `json:"indexed"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	TotalChunks int    `json:"total_chunks"`
	Model       string `json:"model"`
}

// ReloadOutput is the output schema for the reload tool.
type ReloadOutput struct {
	FilesFound  int `json:"files_found"`
	FilesLoaded int `json:"files_loaded"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed documents as context",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Index a document so later questions can draw on it",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report how many chunks are indexed and which model answers",
	}, s.handleStats)

	// The reload tool needs filesystem access, so it is only offered
	// when a loader is wired in.
	if s.ports.Loader != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "reload",
			Description: "Re-index every document in the data folder",
		}, s.handleReload)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, AskOutput{}, fmt.Errorf("query is required")
	}

	useRAG := true
	if input.UseRAG != nil {
		useRAG = *input.UseRAG
	}

	answer, err := s.ports.Engine.Ask(ctx, input.Query, useRAG)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:      answer.Text,
		Sources:     answer.Sources,
		Mode:        string(answer.Mode),
		Model:       answer.Model,
		ContextUsed: answer.ContextUsed,
	}, nil
}

// handleIngest handles the ingest_document tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if strings.TrimSpace(input.DocumentID) == "" {
		return nil, IngestOutput{}, fmt.Errorf("document_id is required")
	}

	doc := domain.Document{ID: input.DocumentID, Text: input.Text}
	report, err := s.ports.Engine.Ingest(ctx, doc, domain.IngestOptions{Replace: input.Replace})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		Source:     report.Source,
		ChunkCount: report.ChunkCount,
		Indexed:    report.Indexed,
		Skipped:    report.Skipped,
		Failed:     len(report.Failures),
	}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Engine.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	return nil, StatsOutput{
		TotalChunks: stats.TotalChunks,
		Model:       stats.Model,
	}, nil
}

// handleReload handles the reload tool invocation.
func (s *Server) handleReload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ReloadOutput, error) {
	run, err := s.ports.Loader.LoadAll(ctx, domain.IngestOptions{})
	if err != nil {
		return nil, ReloadOutput{}, err
	}

	return nil, ReloadOutput{
		FilesFound:  run.FilesFound,
		FilesLoaded: run.FilesLoaded,
	}, nil
}
