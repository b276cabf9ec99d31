package services

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/google/uuid"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driving"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService provides listing, export, import, and destructive
// database management.
type LibraryService struct {
	store   driven.DocumentStore
	gateway *EmbeddingGateway
	index   driven.VectorIndex

	// openFile is swappable for tests.
	openFile func(path string) error
}

// NewLibraryService creates a new library service.
func NewLibraryService(store driven.DocumentStore, gateway *EmbeddingGateway, index driven.VectorIndex) *LibraryService {
	return &LibraryService{
		store:    store,
		gateway:  gateway,
		index:    index,
		openFile: openWithDefaultApp,
	}
}

// List returns document summaries, newest-updated first.
func (s *LibraryService) List(ctx context.Context, query string, limit int) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx, query, limit)
}

// Export returns every document with ordered chunk texts. Embeddings
// are omitted so exports stay portable across embedding models.
func (s *LibraryService) Export(ctx context.Context) ([]domain.ExportDocument, error) {
	docs, err := s.store.ListDocuments(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	items := make([]domain.ExportDocument, 0, len(docs))
	for _, doc := range docs {
		chunks, err := s.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("loading chunks for %s: %w", doc.Path, err)
		}

		exported := make([]domain.ExportChunk, 0, len(chunks))
		for _, c := range chunks {
			exported = append(exported, domain.ExportChunk{Index: c.Index, Text: c.Text})
		}

		items = append(items, domain.ExportDocument{
			Path:        doc.Path,
			Name:        doc.Name,
			MediaType:   doc.MediaType,
			Contractor:  doc.Contractor,
			Project:     doc.Project,
			SizeBytes:   doc.SizeBytes,
			ModifiedAt:  doc.ModifiedAt,
			Description: doc.Description,
			Chunks:      exported,
		})
	}
	return items, nil
}

// Import writes the given documents and chunks inside one transaction.
// Chunk text is re-embedded when an embedding service is configured;
// otherwise chunks are stored with empty vectors.
func (s *LibraryService) Import(ctx context.Context, items []domain.ExportDocument) (*domain.ImportResult, error) {
	logger.Section("Database Import")
	logger.Debug("Importing %d documents, re-embed: %t", len(items), s.gateway.Available())

	result := &domain.ImportResult{}

	err := s.store.InTransaction(ctx, func(tx driven.DocumentStore) error {
		for _, item := range items {
			if item.Path == "" {
				return fmt.Errorf("%w: document without file_path", domain.ErrInvalidInput)
			}

			doc := &domain.Document{
				Path:        item.Path,
				Name:        item.Name,
				MediaType:   item.MediaType,
				Contractor:  item.Contractor,
				Project:     item.Project,
				SizeBytes:   item.SizeBytes,
				ModifiedAt:  item.ModifiedAt,
				Description: item.Description,
			}
			created, err := tx.UpsertDocument(ctx, doc)
			if err != nil {
				return fmt.Errorf("importing %s: %w", item.Path, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}

			chunks := make([]domain.Chunk, 0, len(item.Chunks))
			texts := make([]string, 0, len(item.Chunks))
			for i, ec := range item.Chunks {
				index := ec.Index
				if index < 0 {
					index = i
				}
				chunks = append(chunks, domain.Chunk{
					ID:         uuid.New().String(),
					DocumentID: doc.ID,
					Index:      index,
					Text:       ec.Text,
				})
				texts = append(texts, ec.Text)
			}

			if len(chunks) > 0 && s.gateway.Available() {
				vectors := s.gateway.EmbedBatch(ctx, texts)
				for i := range chunks {
					chunks[i].Embedding = vectors[i]
					if len(vectors[i]) > 0 {
						result.ChunksEmbedded++
					}
				}
			}

			if err := tx.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
				return fmt.Errorf("writing chunks for %s: %w", item.Path, err)
			}
			result.ChunksWritten += len(chunks)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rebuildIndex(ctx)
	return result, nil
}

// Clear deletes every document and chunk and removes the persisted
// index.
func (s *LibraryService) Clear(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if s.index != nil {
		if err := s.index.Rebuild(ctx, nil); err != nil {
			logger.Warn("Clearing index failed: %v", err)
		}
	}
	return nil
}

// Open opens the document's file with the OS default application.
func (s *LibraryService) Open(ctx context.Context, documentID string) error {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	return s.openFile(doc.Path)
}

// rebuildIndex refreshes the vector index after a bulk import.
// Failures are logged and swallowed.
func (s *LibraryService) rebuildIndex(ctx context.Context) {
	if s.index == nil {
		return
	}

	all, err := s.store.AllChunks(ctx)
	if err != nil {
		logger.Warn("Index rebuild skipped: %v", err)
		return
	}

	entries := make([]driven.VectorEntry, 0, len(all))
	for _, cwd := range all {
		entries = append(entries, driven.VectorEntry{
			ChunkID:   cwd.Chunk.ID,
			Embedding: cwd.Chunk.Embedding,
		})
	}

	if err := s.index.Rebuild(ctx, entries); err != nil {
		logger.Warn("Index rebuild failed: %v", err)
	}
}

// openWithDefaultApp opens a path using the system default handler.
func openWithDefaultApp(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
