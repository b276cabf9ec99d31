// Package sqlite provides the SQLite-backed document store.
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
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting the same store methods run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a SQLite-based document and chunk store.
type Store struct {
	db   *sql.DB
	q    querier
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.arkive/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".arkive", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "arkive.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		q:    db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
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
		// Extract version number (e.g., "0001_init.up.sql" -> 1)
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

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// UpsertDocument creates or updates a document keyed by path.
func (s *Store) UpsertDocument(ctx context.Context, doc *domain.Document) (bool, error) {
	now := time.Now().UTC()

	var existingID string
	var createdAt time.Time
	err := s.q.QueryRowContext(ctx,
		"SELECT id, created_at FROM documents WHERE path = ?", doc.Path,
	).Scan(&existingID, &createdAt)

	switch {
	case err == nil:
		doc.ID = existingID
		doc.CreatedAt = createdAt
		doc.UpdatedAt = now

		_, err = s.q.ExecContext(ctx, `
			UPDATE documents
			SET name = ?, media_type = ?, contractor = ?, project = ?,
			    size_bytes = ?, modified_at = ?, description = ?, updated_at = ?
			WHERE id = ?
		`, doc.Name, doc.MediaType, doc.Contractor, doc.Project,
			doc.SizeBytes, nullableTime(doc.ModifiedAt), doc.Description, doc.UpdatedAt, doc.ID)
		if err != nil {
			return false, fmt.Errorf("updating document: %w", err)
		}
		return false, nil

	case errors.Is(err, sql.ErrNoRows):
		if doc.ID == "" {
			doc.ID = uuid.New().String()
		}
		doc.CreatedAt = now
		doc.UpdatedAt = now

		_, err = s.q.ExecContext(ctx, `
			INSERT INTO documents (id, path, name, media_type, contractor, project,
			                       size_bytes, modified_at, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.ID, doc.Path, doc.Name, doc.MediaType, doc.Contractor, doc.Project,
			doc.SizeBytes, nullableTime(doc.ModifiedAt), doc.Description, doc.CreatedAt, doc.UpdatedAt)
		if err != nil {
			return false, fmt.Errorf("inserting document: %w", err)
		}
		return true, nil

	default:
		return false, fmt.Errorf("looking up document by path: %w", err)
	}
}

// ReplaceChunks deletes all chunks of a document and inserts the given
// set as one unit.
func (s *Store) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	// Already inside a transaction: operate directly.
	if _, inTx := s.q.(*sql.Tx); inTx {
		return replaceChunks(ctx, s.q, documentID, chunks)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := replaceChunks(ctx, tx, documentID, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func replaceChunks(ctx context.Context, q querier, documentID string, chunks []domain.Chunk) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	for _, chunk := range chunks {
		id := chunk.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO chunks (id, document_id, chunk_index, text, embedding)
			VALUES (?, ?, ?, ?, ?)
		`, id, documentID, chunk.Index, chunk.Text, float32SliceToBytes(chunk.Embedding))
		if err != nil {
			return fmt.Errorf("saving chunk %d: %w", chunk.Index, err)
		}
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, path, name, media_type, contractor, project,
		       size_bytes, modified_at, description, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocumentRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// GetChunks retrieves a document's chunks ordered by index.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, document_id, chunk_index, text, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// ChunksByIDs retrieves chunks with their owning documents.
func (s *Store) ChunksByIDs(ctx context.Context, ids []string) ([]domain.ChunkWithDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return s.queryChunksWithDocuments(ctx, fmt.Sprintf(`
		SELECT c.id, c.document_id, c.chunk_index, c.text, c.embedding,
		       d.id, d.path, d.name, d.media_type, d.contractor, d.project,
		       d.size_bytes, d.modified_at, d.description, d.created_at, d.updated_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.id IN (%s)
	`, placeholders), args...)
}

// AllChunks retrieves every chunk with its owning document.
func (s *Store) AllChunks(ctx context.Context) ([]domain.ChunkWithDocument, error) {
	return s.queryChunksWithDocuments(ctx, `
		SELECT c.id, c.document_id, c.chunk_index, c.text, c.embedding,
		       d.id, d.path, d.name, d.media_type, d.contractor, d.project,
		       d.size_bytes, d.modified_at, d.description, d.created_at, d.updated_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
	`)
}

func (s *Store) queryChunksWithDocuments(ctx context.Context, query string, args ...any) ([]domain.ChunkWithDocument, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.ChunkWithDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		var cwd domain.ChunkWithDocument
		var embedding []byte
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&cwd.Chunk.ID, &cwd.Chunk.DocumentID, &cwd.Chunk.Index, &cwd.Chunk.Text, &embedding,
			&cwd.Document.ID, &cwd.Document.Path, &cwd.Document.Name, &cwd.Document.MediaType,
			&cwd.Document.Contractor, &cwd.Document.Project, &cwd.Document.SizeBytes,
			&modifiedAt, &cwd.Document.Description, &cwd.Document.CreatedAt, &cwd.Document.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}

		cwd.Chunk.Embedding = bytesToFloat32Slice(embedding)
		if modifiedAt.Valid {
			t := modifiedAt.Time
			cwd.Document.ModifiedAt = &t
		}
		results = append(results, cwd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return results, nil
}

// ListDocuments returns documents ordered by most recently updated,
// optionally filtered by a case-insensitive substring query.
func (s *Store) ListDocuments(ctx context.Context, query string, limit int) ([]domain.Document, error) {
	sqlQuery := `
		SELECT id, path, name, media_type, contractor, project,
		       size_bytes, modified_at, description, created_at, updated_at
		FROM documents
	`
	var args []any
	if query != "" {
		sqlQuery += `
		WHERE name LIKE ? OR description LIKE ? OR project LIKE ? OR contractor LIKE ?
		`
		like := "%" + query + "%"
		args = append(args, like, like, like, like)
	}
	sqlQuery += " ORDER BY updated_at DESC LIMIT ?"
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	args = append(args, limit)

	rows, err := s.q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// Stats returns the database summary used as fallback context.
func (s *Store) Stats(ctx context.Context) (*domain.LibraryStats, error) {
	stats := &domain.LibraryStats{}

	row := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents")
	if err := row.Scan(&stats.DocumentCount); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}

	var err error
	stats.Projects, err = s.distinctValues(ctx, "project")
	if err != nil {
		return nil, err
	}
	stats.Contractors, err = s.distinctValues(ctx, "contractor")
	if err != nil {
		return nil, err
	}

	stats.Recent, err = s.ListDocuments(ctx, "", 5)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Store) distinctValues(ctx context.Context, column string) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, fmt.Sprintf(
		"SELECT DISTINCT %s FROM documents WHERE %s != '' ORDER BY %s", column, column, column))
	if err != nil {
		return nil, fmt.Errorf("querying distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// DeleteAll removes every document; chunks follow by cascade.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// InTransaction runs fn against a store view bound to one transaction.
func (s *Store) InTransaction(ctx context.Context, fn func(driven.DocumentStore) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fmt.Errorf("sqlite: nested transactions are not supported")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	view := &Store{db: s.db, q: tx, path: s.path}
	if err := fn(view); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
// Empty slices become empty blobs, meaning "embedding unavailable".
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return []byte{}
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

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// scanDocumentRow scans a single document row.
func scanDocumentRow(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var modifiedAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Path, &doc.Name, &doc.MediaType,
		&doc.Contractor, &doc.Project, &doc.SizeBytes, &modifiedAt,
		&doc.Description, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	if modifiedAt.Valid {
		t := modifiedAt.Time
		doc.ModifiedAt = &t
	}
	return &doc, nil
}

// scanDocumentRows scans a document from a multi-row result.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var modifiedAt sql.NullTime

	if err := rows.Scan(&doc.ID, &doc.Path, &doc.Name, &doc.MediaType,
		&doc.Contractor, &doc.Project, &doc.SizeBytes, &modifiedAt,
		&doc.Description, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	if modifiedAt.Valid {
		t := modifiedAt.Time
		doc.ModifiedAt = &t
	}
	return &doc, nil
}

// scanChunk scans a chunk from a multi-row result.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embedding []byte

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index,
		&chunk.Text, &embedding); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embedding)
	return &chunk, nil
}
