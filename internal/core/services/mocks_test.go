package services

import (
	"context"
	"strings"

	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	vectors  [][]float32 // Returned per batch call when set.
	fixed    []float32   // Returned for every input when vectors is nil.
	embedErr error
	dims     int
	calls    int
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.vectors != nil {
		return m.vectors, nil
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.fixed
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return m.dims }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response    string
	generateErr error
	visionText  string
	visionErr   error
	prompts     []string // Captured Generate prompts.
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) DescribeImage(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	if m.visionErr != nil {
		return "", m.visionErr
	}
	return m.visionText, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits       []driven.VectorHit
	searchErr  error
	rebuildErr error
	rebuilt    [][]driven.VectorEntry
}

func (m *mockVectorIndex) Rebuild(_ context.Context, entries []driven.VectorEntry) error {
	m.rebuilt = append(m.rebuilt, entries)
	return m.rebuildErr
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockPromptStore implements driven.PromptStore with fixed templates.
type mockPromptStore struct{}

func (mockPromptStore) Load(name string) (string, error) {
	if name == driven.PromptAnswer {
		return "Context:\n%s\n\nQuestion: %s\nAnswer:", nil
	}
	return "Summarize:", nil
}

// mockExtractor implements driven.Extractor returning fixed text.
type mockExtractor struct {
	text       string
	extractErr error
	mimeTypes  []string
}

func (m *mockExtractor) SupportedMIMETypes() []string { return m.mimeTypes }
func (m *mockExtractor) Priority() int                { return 1 }

func (m *mockExtractor) Extract(_ context.Context, _ string) (string, error) {
	if m.extractErr != nil {
		return "", m.extractErr
	}
	return m.text, nil
}

// mockRegistry implements driven.ExtractorRegistry.
type mockRegistry struct {
	extractor driven.Extractor
}

func (m *mockRegistry) Resolve(mediaType string) driven.Extractor {
	if m.extractor == nil {
		return nil
	}
	for _, mt := range m.extractor.SupportedMIMETypes() {
		if mt == mediaType || (strings.HasSuffix(mt, "/*") && strings.HasPrefix(mediaType, strings.TrimSuffix(mt, "*"))) {
			return m.extractor
		}
	}
	return nil
}
