package driven

import (
	"context"

	"github.com/custodia-labs/askdoc/internal/core/domain"
)

// VectorIndex stores chunks and ranks them by semantic similarity to a
// query. The core treats it as an opaque store keyed by chunk ID: how
// text becomes a vector is the adapter's concern.
//
// Implementations must guarantee that writing an existing ID is rejected
// with domain.ErrAlreadyExists, never silently overwritten, and that
// Query never returns more results than Count.
type VectorIndex interface {
	// Add inserts a chunk. Returns domain.ErrAlreadyExists if the chunk
	// ID is already indexed.
	Add(ctx context.Context, chunk domain.Chunk) error

	// Has reports whether a chunk ID is already indexed.
	Has(ctx context.Context, id string) (bool, error)

	// Query returns up to k chunks ranked by similarity to the text,
	// most relevant first.
	Query(ctx context.Context, text string, k int) ([]domain.Chunk, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// DeleteBySource removes every chunk belonging to a document ID.
	// Used by replace-mode ingestion.
	DeleteBySource(ctx context.Context, source string) error

	// Close releases resources.
	Close() error
}
