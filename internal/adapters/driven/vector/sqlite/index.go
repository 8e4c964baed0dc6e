// Package sqlite provides a persistent vector index backed by SQLite.
// Embeddings are stored as little-endian float32 blobs and ranked with
// brute-force cosine similarity, which is plenty for a private document
// collection of a few thousand chunks.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/askdoc/internal/adapters/driven/vector/sqlite/migrations"
	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a SQLite-backed implementation of driven.VectorIndex.
type Index struct {
	db       *sql.DB
	embedder driven.EmbeddingService
	path     string
}

// NewIndex creates a SQLite vector index at the specified data
// directory. If dataDir is empty, defaults to ~/.askdoc/data. The
// embedding service is required: chunk and query text are embedded at
// this boundary so the core stays text-only.
func NewIndex(dataDir string, embedder driven.EmbeddingService) (*Index, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".askdoc", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode for better concurrency between ingestion and queries
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	i := &Index{
		db:       db,
		embedder: embedder,
		path:     dbPath,
	}

	if err := i.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return i, nil
}

// Path returns the database file path.
func (i *Index) Path() string {
	return i.path
}

// Close closes the database connection.
func (i *Index) Close() error {
	return i.db.Close()
}

// migrate runs all pending migrations.
func (i *Index) migrate(fsys embed.FS) error {
	_, err := i.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := i.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := i.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := i.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Add inserts a chunk, embedding its text. The primary key rejects
// duplicate IDs; the stored row is never overwritten.
func (i *Index) Add(ctx context.Context, chunk domain.Chunk) error {
	embedding, err := i.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		return fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
	}

	_, err = i.db.ExecContext(ctx, `
		INSERT INTO chunks (id, source, position, total, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`, chunk.ID, chunk.Source, chunk.Index, chunk.Total, chunk.Text, float32SliceToBytes(embedding))

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("inserting chunk: %w", err)
	}
	return nil
}

// Has reports whether a chunk ID is already indexed.
func (i *Index) Has(ctx context.Context, id string) (bool, error) {
	var exists bool
	row := i.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM chunks WHERE id = ?)", id)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("checking chunk existence: %w", err)
	}
	return exists, nil
}

// Query embeds the text, ranks all stored chunks by cosine similarity
// and returns the top k, most similar first.
func (i *Index) Query(ctx context.Context, text string, k int) ([]domain.Chunk, error) {
	queryVec, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := i.db.QueryContext(ctx, `
		SELECT id, source, position, total, content, embedding FROM chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	type scored struct {
		chunk domain.Chunk
		score float64
	}
	var ranked []scored //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var blob []byte
		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.Index, &chunk.Total, &chunk.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		ranked = append(ranked, scored{
			chunk: chunk,
			score: cosineSimilarity(queryVec, bytesToFloat32Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		return ranked[a].chunk.ID < ranked[b].chunk.ID
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	if k < 0 {
		k = 0
	}

	chunks := make([]domain.Chunk, k)
	for idx := 0; idx < k; idx++ {
		chunks[idx] = ranked[idx].chunk
	}
	return chunks, nil
}

// Count returns the number of indexed chunks.
func (i *Index) Count(ctx context.Context) (int, error) {
	var count int
	row := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// DeleteBySource removes every chunk belonging to a document ID.
func (i *Index) DeleteBySource(ctx context.Context, source string) error {
	if _, err := i.db.ExecContext(ctx, "DELETE FROM chunks WHERE source = ?", source); err != nil {
		return fmt.Errorf("deleting chunks for %q: %w", source, err)
	}
	return nil
}

// isUniqueViolation reports whether an insert failed on the primary key.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr interface{ Code() int }
	if errors.As(err, &sqliteErr) {
		// SQLITE_CONSTRAINT family
		return sqliteErr.Code()%256 == 19
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
