// Package memory provides in-memory implementations of driven port
// interfaces, primarily for testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Transactions are simulated: fn runs against a deep copy that replaces
// the live state only on success.
type DocumentStore struct {
	mu     sync.RWMutex
	docs   map[string]*domain.Document // by ID
	chunks map[string][]domain.Chunk   // by document ID
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:   make(map[string]*domain.Document),
		chunks: make(map[string][]domain.Chunk),
	}
}

// UpsertDocument creates or updates a document keyed by path.
func (s *DocumentStore) UpsertDocument(_ context.Context, doc *domain.Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, existing := range s.docs {
		if existing.Path == doc.Path {
			doc.ID = existing.ID
			doc.CreatedAt = existing.CreatedAt
			doc.UpdatedAt = now
			copied := *doc
			s.docs[doc.ID] = &copied
			return false, nil
		}
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	copied := *doc
	s.docs[doc.ID] = &copied
	return true, nil
}

// ReplaceChunks replaces a document's chunk set.
func (s *DocumentStore) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		replacement[i] = c
	}
	s.chunks[documentID] = replacement
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

// GetChunks retrieves a document's chunks ordered by index.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := append([]domain.Chunk(nil), s.chunks[documentID]...)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// ChunksByIDs retrieves chunks with their owning documents.
func (s *DocumentStore) ChunksByIDs(_ context.Context, ids []string) ([]domain.ChunkWithDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var results []domain.ChunkWithDocument
	for docID, chunks := range s.chunks {
		doc, ok := s.docs[docID]
		if !ok {
			continue
		}
		for _, c := range chunks {
			if _, hit := wanted[c.ID]; hit {
				results = append(results, domain.ChunkWithDocument{Chunk: c, Document: *doc})
			}
		}
	}
	return results, nil
}

// AllChunks retrieves every chunk with its owning document.
func (s *DocumentStore) AllChunks(_ context.Context) ([]domain.ChunkWithDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.ChunkWithDocument
	for docID, chunks := range s.chunks {
		doc, ok := s.docs[docID]
		if !ok {
			continue
		}
		for _, c := range chunks {
			results = append(results, domain.ChunkWithDocument{Chunk: c, Document: *doc})
		}
	}
	return results, nil
}

// ListDocuments returns documents ordered by most recently updated.
func (s *DocumentStore) ListDocuments(_ context.Context, query string, limit int) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	var docs []domain.Document
	for _, doc := range s.docs {
		if query != "" && !matchesQuery(doc, needle) {
			continue
		}
		docs = append(docs, *doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].UpdatedAt.After(docs[j].UpdatedAt) })
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func matchesQuery(doc *domain.Document, needle string) bool {
	for _, field := range []string{doc.Name, doc.Description, doc.Project, doc.Contractor} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Stats returns the library summary.
func (s *DocumentStore) Stats(ctx context.Context) (*domain.LibraryStats, error) {
	s.mu.RLock()
	count := len(s.docs)
	projects := map[string]struct{}{}
	contractors := map[string]struct{}{}
	for _, doc := range s.docs {
		if doc.Project != "" {
			projects[doc.Project] = struct{}{}
		}
		if doc.Contractor != "" {
			contractors[doc.Contractor] = struct{}{}
		}
	}
	s.mu.RUnlock()

	recent, err := s.ListDocuments(ctx, "", 5)
	if err != nil {
		return nil, err
	}

	return &domain.LibraryStats{
		DocumentCount: count,
		Projects:      sortedKeys(projects),
		Contractors:   sortedKeys(contractors),
		Recent:        recent,
	}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DeleteAll removes every document and chunk.
func (s *DocumentStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = make(map[string]*domain.Document)
	s.chunks = make(map[string][]domain.Chunk)
	return nil
}

// InTransaction runs fn against a snapshot that replaces the live state
// only when fn succeeds.
func (s *DocumentStore) InTransaction(_ context.Context, fn func(driven.DocumentStore) error) error {
	s.mu.RLock()
	snapshot := &DocumentStore{
		docs:   make(map[string]*domain.Document, len(s.docs)),
		chunks: make(map[string][]domain.Chunk, len(s.chunks)),
	}
	for id, doc := range s.docs {
		copied := *doc
		snapshot.docs[id] = &copied
	}
	for id, chunks := range s.chunks {
		snapshot.chunks[id] = append([]domain.Chunk(nil), chunks...)
	}
	s.mu.RUnlock()

	if err := fn(snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	s.docs = snapshot.docs
	s.chunks = snapshot.chunks
	s.mu.Unlock()
	return nil
}
