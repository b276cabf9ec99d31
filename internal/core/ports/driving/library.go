package driving

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// LibraryService provides document listing and database management.
type LibraryService interface {
	// List returns document summaries, newest-updated first, optionally
	// filtered by a substring query.
	List(ctx context.Context, query string, limit int) ([]domain.Document, error)

	// Export returns all documents with chunk texts for portability.
	// Embeddings are intentionally omitted.
	Export(ctx context.Context) ([]domain.ExportDocument, error)

	// Import writes the given documents and chunks atomically,
	// re-embedding chunk text when an embedding service is configured.
	Import(ctx context.Context, items []domain.ExportDocument) (*domain.ImportResult, error)

	// Clear deletes every document and chunk and empties the index.
	Clear(ctx context.Context) error

	// Open opens the document's file with the OS default application.
	Open(ctx context.Context, documentID string) error
}
