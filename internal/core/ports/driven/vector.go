package driven

import "context"

// VectorIndex maintains a similarity-searchable structure over chunk
// vectors. The index is a derived cache: always rebuildable from
// persisted chunks, safe to delete at any time.
type VectorIndex interface {
	// Rebuild fully replaces the persisted structure from the given
	// entries. Entries with empty vectors are ignored; entries whose
	// dimensionality differs from the majority are excluded. Rebuilding
	// with no eligible entries removes the persisted structure.
	Rebuild(ctx context.Context, entries []VectorEntry) error

	// Search returns the k most similar chunk IDs in descending score
	// order. Returns domain.ErrVectorIndexUnavailable when no persisted
	// structure exists - distinct from an empty result.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorEntry is one vector to index, paired with its owning chunk.
type VectorEntry struct {
	// ChunkID is the owning chunk.
	ChunkID string

	// Embedding is the raw vector. May be empty (not indexable).
	Embedding []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score.
	Similarity float64
}
