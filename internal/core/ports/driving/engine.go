package driving

import (
	"context"

	"github.com/custodia-labs/askdoc/internal/core/domain"
)

// EngineService is the single entry point to the RAG pipeline. It is the
// only contract the surrounding CLI/API/MCP layers may depend on.
type EngineService interface {
	// Ingest chunks a document and indexes the chunks. The report's
	// ChunkCount covers every window produced, including ones already
	// present from a prior ingestion of the same document ID.
	Ingest(ctx context.Context, doc domain.Document, opts domain.IngestOptions) (domain.IngestReport, error)

	// Ask answers a query, either grounded in retrieved context
	// (useRAG) or by sending the query to the model verbatim. A
	// well-formed ask never returns an error: backend failures are
	// folded into the answer text.
	Ask(ctx context.Context, query string, useRAG bool) (domain.Answer, error)

	// Stats reports the live index chunk count and the model in use.
	Stats(ctx context.Context) (domain.Stats, error)
}
