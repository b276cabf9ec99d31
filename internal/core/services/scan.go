package services

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arkive-labs/arkive-cli/internal/chunker"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driving"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// Ensure ScanService implements the interface.
var _ driving.ScanService = (*ScanService)(nil)

// Scan configuration keys and defaults.
const (
	cfgMaxFileBytes = "scan.max_file_bytes"
	cfgMaxChunks    = "scan.max_chunks"
	cfgChunkSize    = "scan.chunk_size"
	cfgChunkOverlap = "scan.chunk_overlap"
	cfgIgnoreDirs   = "scan.ignore_dirs"

	defaultMaxFileBytes = 10 << 20 // 10 MiB
)

// defaultIgnoreDirs are directory names pruned from the walk unless
// overridden in configuration.
var defaultIgnoreDirs = []string{".git", ".hg", ".svn", "node_modules", "__pycache__", ".venv", "venv"}

// ScanService walks a directory tree and ingests eligible files.
type ScanService struct {
	store      driven.DocumentStore
	extractors driven.ExtractorRegistry
	gateway    *EmbeddingGateway
	index      driven.VectorIndex
	config     driven.ConfigStore
	describer  *describer
}

// NewScanService creates a new scan service. llm may be nil; Scan then
// fails up front with domain.ErrLLMUnavailable.
func NewScanService(
	store driven.DocumentStore,
	extractors driven.ExtractorRegistry,
	llm driven.LLMService,
	prompts driven.PromptStore,
	gateway *EmbeddingGateway,
	index driven.VectorIndex,
	config driven.ConfigStore,
) *ScanService {
	s := &ScanService{
		store:      store,
		extractors: extractors,
		gateway:    gateway,
		index:      index,
		config:     config,
	}
	if llm != nil {
		s.describer = newDescriber(llm, prompts)
	}
	return s
}

// Scan ingests every eligible file under opts.Root inside one
// transaction, then triggers a best-effort index rebuild.
func (s *ScanService) Scan(ctx context.Context, opts domain.ScanOptions) (*domain.ScanResult, error) {
	logger.Section("Directory Scan")
	logger.Debug("Root: %s, contractor: %q, project: %q, mode: %s",
		opts.Root, opts.Contractor, opts.Project, opts.Mode)

	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a readable directory", domain.ErrInvalidInput, opts.Root)
	}

	if s.describer == nil {
		return nil, fmt.Errorf("%w: scanning requires a configured AI provider", domain.ErrLLMUnavailable)
	}

	result := &domain.ScanResult{}
	splitter := s.newSplitter()
	ignore := s.ignoreSet()

	err = s.store.InTransaction(ctx, func(tx driven.DocumentStore) error {
		return filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				logger.Debug("Skipping %s: %v", path, walkErr)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if _, skip := ignore[d.Name()]; skip && path != opts.Root {
					return fs.SkipDir
				}
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if err := s.ingestFile(ctx, tx, path, d, opts, splitter, result); err != nil {
				return err
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Scan complete: %d processed, %d created, %d updated, %d chunks",
		result.Processed, result.Created, result.Updated, result.ChunksAdded)

	// Best-effort rebuild: the scan already committed, an index failure
	// must not fail the command.
	s.rebuildIndex(ctx)

	return result, nil
}

// ingestFile processes one regular file inside the scan transaction.
func (s *ScanService) ingestFile(
	ctx context.Context,
	tx driven.DocumentStore,
	path string,
	d fs.DirEntry,
	opts domain.ScanOptions,
	splitter *chunker.Splitter,
	result *domain.ScanResult,
) error {
	info, err := d.Info()
	if err != nil {
		logger.Debug("Skipping %s: stat failed: %v", path, err)
		return nil
	}

	modifiedAt := info.ModTime()
	if opts.Cutoff != nil && modifiedAt.Before(*opts.Cutoff) {
		return nil
	}

	mediaType := detectMediaType(path)
	text := s.extractText(ctx, path, mediaType, info.Size())

	description := s.describer.describe(ctx, path, mediaType, text, opts.Mode)

	doc := &domain.Document{
		Path:        path,
		Name:        filepath.Base(path),
		MediaType:   mediaType,
		Contractor:  opts.Contractor,
		Project:     opts.Project,
		SizeBytes:   info.Size(),
		ModifiedAt:  &modifiedAt,
		Description: description,
	}

	created, err := tx.UpsertDocument(ctx, doc)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", path, err)
	}
	result.Processed++
	if created {
		result.Created++
	} else {
		result.Updated++
	}

	// Re-ingesting a file that lost its text clears stale chunks.
	chunks := splitter.Chunks(doc.ID, text)
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors := s.gateway.EmbedBatch(ctx, texts)
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}
	if err := tx.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("replacing chunks for %s: %w", path, err)
	}
	result.ChunksAdded += len(chunks)

	return nil
}

// extractText resolves an extractor for the media type and runs it.
// Oversized files, unsupported types, and extraction failures all
// degrade to empty text.
func (s *ScanService) extractText(ctx context.Context, path, mediaType string, size int64) string {
	maxBytes := int64(defaultMaxFileBytes)
	if s.config != nil {
		if v := s.config.GetInt(cfgMaxFileBytes); v > 0 {
			maxBytes = int64(v)
		}
	}
	if size > maxBytes {
		logger.Debug("Skipping extraction for %s: %d bytes exceeds cap", path, size)
		return ""
	}

	extractor := s.extractors.Resolve(mediaType)
	if extractor == nil {
		return ""
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		logger.Debug("Extraction failed for %s: %v", path, err)
		return ""
	}
	return text
}

// newSplitter builds a splitter from configuration, falling back to
// the package defaults.
func (s *ScanService) newSplitter() *chunker.Splitter {
	var opts []chunker.Option
	if s.config != nil {
		if v := s.config.GetInt(cfgChunkSize); v > 0 {
			opts = append(opts, chunker.WithChunkSize(v))
		}
		if v := s.config.GetInt(cfgChunkOverlap); v > 0 {
			opts = append(opts, chunker.WithOverlap(v))
		}
		if v := s.config.GetInt(cfgMaxChunks); v > 0 {
			opts = append(opts, chunker.WithMaxChunks(v))
		}
	}
	return chunker.New(opts...)
}

// ignoreSet returns the directory names to prune.
func (s *ScanService) ignoreSet() map[string]struct{} {
	names := defaultIgnoreDirs
	if s.config != nil {
		if v := s.config.GetStringSlice(cfgIgnoreDirs); len(v) > 0 {
			names = v
		}
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// rebuildIndex refreshes the vector index from persisted chunks.
// Failures are logged and swallowed.
func (s *ScanService) rebuildIndex(ctx context.Context) {
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

	start := time.Now()
	if err := s.index.Rebuild(ctx, entries); err != nil {
		logger.Warn("Index rebuild failed: %v", err)
		return
	}
	logger.Debug("Index rebuilt from %d chunks in %s", len(entries), time.Since(start))
}

// detectMediaType guesses a MIME type from the file extension.
func detectMediaType(path string) string {
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mediaType == "" {
		return "application/octet-stream"
	}
	// Strip parameters such as "; charset=utf-8".
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	return mediaType
}
