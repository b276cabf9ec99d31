package domain

import "time"

// Document represents one ingested file. There is exactly one Document
// per distinct file path; re-scanning the same path updates it in place.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the absolute file path. Globally unique.
	Path string

	// Name is the base file name.
	Name string

	// MediaType is the resolved MIME type (e.g. "text/plain"),
	// "application/octet-stream" when unknown.
	MediaType string

	// Contractor and Project are free-form tags applied at scan time.
	Contractor string
	Project    string

	// SizeBytes is the file size at scan time.
	SizeBytes int64

	// ModifiedAt is the file modification time, if known.
	ModifiedAt *time.Time

	// Description is a generated summary used for search and the
	// database-summary fallback context.
	Description string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt refreshes on every write.
	UpdatedAt time.Time
}

// Chunk is a bounded text segment of a document, the unit of embedding
// and retrieval. Chunks are exclusively owned by their document and are
// always replaced as a whole set on re-ingest.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the 0-based position within the document.
	// (DocumentID, Index) is unique.
	Index int

	// Text is the chunk content.
	Text string

	// Embedding is the vector representation. Empty when the embedding
	// call failed; an empty vector means "not indexable", never a zero
	// vector to be compared.
	Embedding []float32
}

// ChunkWithDocument pairs a chunk with its owning document, as returned
// by store queries that hydrate both sides.
type ChunkWithDocument struct {
	Chunk    Chunk
	Document Document
}
