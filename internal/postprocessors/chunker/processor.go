// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"fmt"
	"strings"
)

// DefaultChunkSize is the default number of characters per window.
const DefaultChunkSize = 300

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive windows.
const DefaultChunkOverlap = 100

// Processor splits raw text into overlapping fixed-size windows.
// Splitting is by character count with no regard for token or sentence
// boundaries; the overlap keeps context that straddles a window edge
// retrievable from both sides.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
// The overlap must be strictly smaller than the window size, otherwise
// the window start would never advance; that configuration is rejected
// here rather than detected mid-split.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than chunk size %d", p.overlap, p.chunkSize)
	}

	return p, nil
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured window overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split cuts text into windows of ChunkSize characters, each starting
// (ChunkSize - Overlap) characters after the previous one. Size and
// overlap count runes, not bytes, so multi-byte text is never cut
// mid-rune. Windows that are empty after trimming whitespace are
// dropped, so the returned slice is dense: a fully-whitespace input
// produces no windows at all, and a text shorter than the window size
// produces exactly one.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	step := p.chunkSize - p.overlap
	windows := make([]string, 0, len(runes)/step+1)

	for start := 0; start < len(runes); start += step {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		window := string(runes[start:end])
		if strings.TrimSpace(window) == "" {
			continue
		}
		windows = append(windows, window)
	}

	return windows
}
