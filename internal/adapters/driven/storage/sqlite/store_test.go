package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "arkive-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func testDocument(path string) *domain.Document {
	mod := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	return &domain.Document{
		Path:       path,
		Name:       "report.pdf",
		MediaType:  "application/pdf",
		Contractor: "Acme Builders",
		Project:    "Harbor Bridge",
		SizeBytes:  2048,
		ModifiedAt: &mod,
		Description: "Structural inspection report for the " +
			"Harbor Bridge northern span.",
	}
}

func TestUpsertDocument_CreateThenUpdate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	doc := testDocument("/files/report.pdf")
	created, err := store.UpsertDocument(ctx, doc)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, doc.ID)
	firstID := doc.ID

	// Same path again updates in place.
	doc2 := testDocument("/files/report.pdf")
	doc2.Description = "Updated description"
	created, err = store.UpsertDocument(ctx, doc2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, firstID, doc2.ID)

	got, err := store.GetDocument(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "Updated description", got.Description)
	require.NotNil(t, got.ModifiedAt)
	assert.True(t, got.ModifiedAt.Equal(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)))
}

func TestGetDocument_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplaceChunks_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	doc := testDocument("/files/report.pdf")
	_, err := store.UpsertDocument(ctx, doc)
	require.NoError(t, err)

	chunks := []domain.Chunk{
		{DocumentID: doc.ID, Index: 0, Text: "first part", Embedding: []float32{0.1, 0.2, 0.3}},
		{DocumentID: doc.ID, Index: 1, Text: "second part", Embedding: nil},
	}
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, chunks))

	got, err := store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first part", got[0].Text)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, got[0].Embedding, 1e-6)
	assert.Nil(t, got[1].Embedding)

	// Replacing discards the previous set entirely.
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID,
		[]domain.Chunk{{DocumentID: doc.ID, Index: 0, Text: "only chunk"}}))

	got, err = store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "only chunk", got[0].Text)
}

func TestChunksByIDs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	doc := testDocument("/files/report.pdf")
	_, err := store.UpsertDocument(ctx, doc)
	require.NoError(t, err)

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: doc.ID, Index: 0, Text: "alpha"},
		{ID: "c2", DocumentID: doc.ID, Index: 1, Text: "beta"},
	}
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID, chunks))

	got, err := store.ChunksByIDs(ctx, []string{"c2"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "beta", got[0].Chunk.Text)
	assert.Equal(t, doc.Path, got[0].Document.Path)

	empty, err := store.ChunksByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAllChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, path := range []string{"/a.txt", "/b.txt"} {
		doc := testDocument(path)
		_, err := store.UpsertDocument(ctx, doc)
		require.NoError(t, err)
		require.NoError(t, store.ReplaceChunks(ctx, doc.ID,
			[]domain.Chunk{{DocumentID: doc.ID, Index: 0, Text: path}}))
	}

	got, err := store.AllChunks(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListDocuments_FilterAndLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	a := testDocument("/a.pdf")
	a.Name = "invoice.pdf"
	a.Project = "Harbor Bridge"
	_, err := store.UpsertDocument(ctx, a)
	require.NoError(t, err)

	b := testDocument("/b.pdf")
	b.Name = "permit.pdf"
	b.Project = "City Tunnel"
	_, err = store.UpsertDocument(ctx, b)
	require.NoError(t, err)

	all, err := store.ListDocuments(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := store.ListDocuments(ctx, "Tunnel", 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "permit.pdf", filtered[0].Name)

	limited, err := store.ListDocuments(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStats(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	a := testDocument("/a.pdf")
	a.Project = "Harbor Bridge"
	a.Contractor = "Acme Builders"
	_, err := store.UpsertDocument(ctx, a)
	require.NoError(t, err)

	b := testDocument("/b.pdf")
	b.Project = "City Tunnel"
	b.Contractor = ""
	_, err = store.UpsertDocument(ctx, b)
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentCount)
	assert.ElementsMatch(t, []string{"Harbor Bridge", "City Tunnel"}, stats.Projects)
	assert.Equal(t, []string{"Acme Builders"}, stats.Contractors)
	assert.Len(t, stats.Recent, 2)
}

func TestDeleteAll_CascadesToChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	doc := testDocument("/files/report.pdf")
	_, err := store.UpsertDocument(ctx, doc)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceChunks(ctx, doc.ID,
		[]domain.Chunk{{DocumentID: doc.ID, Index: 0, Text: "gone soon"}}))

	require.NoError(t, store.DeleteAll(ctx))

	chunks, err := store.AllChunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestInTransaction_RollbackOnError(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	err := store.InTransaction(ctx, func(tx driven.DocumentStore) error {
		doc := testDocument("/files/report.pdf")
		if _, err := tx.UpsertDocument(ctx, doc); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	docs, err := store.ListDocuments(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestInTransaction_Commit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	err := store.InTransaction(ctx, func(tx driven.DocumentStore) error {
		doc := testDocument("/files/report.pdf")
		_, err := tx.UpsertDocument(ctx, doc)
		return err
	})
	require.NoError(t, err)

	docs, err := store.ListDocuments(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestFloat32Bytes_RoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 3.75}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.InDeltaSlice(t, in, out, 1e-9)

	assert.Nil(t, bytesToFloat32Slice(nil))
	assert.Empty(t, float32SliceToBytes(nil))
}
