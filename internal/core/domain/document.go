package domain

import "fmt"

// Document is a unit of ingestion: a caller-supplied identifier plus the
// full raw text. The ID must be stable across re-ingestion (it is derived
// from a filename by the loader) because chunk identifiers, and therefore
// deduplication, are built from it.
type Document struct {
	// ID is the unique, caller-supplied identifier.
	ID string

	// Text is the full raw content before chunking.
	Text string
}

// Chunk is the unit of indexing and retrieval: a bounded window of a
// document's text. A chunk is owned by the vector index once written and
// is never mutated in place.
type Chunk struct {
	// ID is deterministic: "{source}_chunk_{index}". Re-ingesting an
	// unchanged document reproduces the same IDs, making ingestion
	// idempotent.
	ID string

	// Source is the ID of the originating document.
	Source string

	// Index is the ordinal position among the retained windows of the
	// document. Dense over kept chunks, not over raw windows.
	Index int

	// Total is the number of chunks the document produced in the same
	// chunking pass.
	Total int

	// Text is the window content. Non-empty after trimming.
	Text string
}

// ChunkID builds the deterministic chunk identifier for a document chunk.
func ChunkID(source string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", source, index)
}

// IngestOptions configures a single ingestion call.
type IngestOptions struct {
	// Replace deletes all previously indexed chunks for the document ID
	// before ingesting. Required for content edits to take effect under
	// the same ID; without it, existing chunk IDs are silently skipped.
	Replace bool
}

// ChunkFailure records a chunk whose index write failed. Ingestion is
// fail-open per chunk: one failure does not abort the rest.
type ChunkFailure struct {
	// ChunkID is the chunk that could not be written.
	ChunkID string

	// Err is the write error.
	Err error
}

// IngestReport is the outcome of one ingestion call. ChunkCount counts
// every window the chunker produced for the document, including ones that
// were already present, so repeated ingestion of an unchanged document
// reports the same number without growing the index.
type IngestReport struct {
	// Source is the document ID that was ingested.
	Source string

	// ChunkCount is the total number of windows produced.
	ChunkCount int

	// Indexed is the number of chunks newly written.
	Indexed int

	// Skipped is the number of chunks already present in the index.
	Skipped int

	// Failures lists chunks whose writes failed.
	Failures []ChunkFailure
}

// Stats describes the live state of the index.
type Stats struct {
	// TotalChunks is the index's current chunk count.
	TotalChunks int `json:"total_chunks"`

	// Model is the generation model name.
	Model string `json:"model"`
}
