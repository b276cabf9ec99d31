// Package chunker splits extracted text into overlapping bounded
// segments for embedding and retrieval.
package chunker

import (
	"strings"

	"github.com/google/uuid"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultMaxChunks is the default cap on chunks per document.
const DefaultMaxChunks = 64

// separators are tried in priority order when looking for a natural
// split boundary inside the target window.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter produces overlapping text segments.
// Boundaries prefer paragraph, line, sentence and word breaks, falling
// back to hard cuts. Every character of the input is covered exactly
// once outside the declared overlap.
type Splitter struct {
	chunkSize int
	overlap   int
	maxChunks int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithMaxChunks caps the number of chunks per document. The remainder
// beyond the cap is discarded.
func WithMaxChunks(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.maxChunks = n
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		maxChunks: DefaultMaxChunks,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split returns the ordered overlapping segments of text.
// Empty input yields nil.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}

	textLen := len(text)
	estimated := textLen/(s.chunkSize-s.overlap) + 1
	segments := make([]string, 0, estimated)

	start := 0
	for start < textLen {
		if len(segments) == s.maxChunks {
			break
		}

		end := start + s.chunkSize
		if end >= textLen {
			segments = append(segments, text[start:])
			break
		}

		cut := s.findCut(text, start, end)
		segments = append(segments, text[start:cut])

		// Next chunk re-covers the overlap region.
		start = cut - s.overlap
	}

	return segments
}

// findCut picks the split position in (start+overlap, end], preferring
// the latest natural separator. The lower bound guarantees forward
// progress once the overlap is rewound.
func (s *Splitter) findCut(text string, start, end int) int {
	window := text[start:end]
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + idx + len(sep)
		if cut > start+s.overlap {
			return cut
		}
	}
	return end
}

// Chunks splits text and wraps each segment in a domain.Chunk owned by
// the given document, with contiguous 0-based indices.
func (s *Splitter) Chunks(documentID, text string) []domain.Chunk {
	segments := s.Split(text)
	if len(segments) == 0 {
		return nil
	}

	chunks := make([]domain.Chunk, len(segments))
	for i, segment := range segments {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Index:      i,
			Text:       segment,
		}
	}
	return chunks
}
