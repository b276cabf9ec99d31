package driven

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for metadata and embedding storage.
type DocumentStore interface {
	// UpsertDocument creates or updates a document keyed by its unique
	// path. It fills in ID/CreatedAt for new documents and refreshes
	// UpdatedAt on every write. Returns true when a new row was created.
	UpsertDocument(ctx context.Context, doc *domain.Document) (created bool, err error)

	// ReplaceChunks deletes all chunks of a document and inserts the
	// given set. Chunks are never partially patched.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves a document's chunks ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// ChunksByIDs retrieves chunks with their owning documents.
	// Order is unspecified; callers re-rank as needed.
	ChunksByIDs(ctx context.Context, ids []string) ([]domain.ChunkWithDocument, error)

	// AllChunks retrieves every chunk with its owning document.
	// Used for index rebuilds and brute-force retrieval.
	AllChunks(ctx context.Context) ([]domain.ChunkWithDocument, error)

	// ListDocuments returns documents ordered by most recently updated.
	// A non-empty query filters by case-insensitive substring match over
	// name, description, project and contractor. A limit <= 0 means no
	// limit.
	ListDocuments(ctx context.Context, query string, limit int) ([]domain.Document, error)

	// Stats returns the database summary used as fallback context.
	Stats(ctx context.Context) (*domain.LibraryStats, error)

	// DeleteAll removes every document and, by cascade, every chunk.
	DeleteAll(ctx context.Context) error

	// InTransaction runs fn against a store view bound to a single
	// transaction. The transaction commits when fn returns nil and
	// rolls back otherwise, leaving storage untouched.
	InTransaction(ctx context.Context, fn func(DocumentStore) error) error
}
