package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driving"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// Retrieval and generation defaults.
const (
	cfgScoreThreshold = "ask.score_threshold"

	defaultTopK           = 5
	defaultScoreThreshold = 0.15
	answerTemperature     = 0.2
	answerMaxTokens       = 400
	contextPreviewLimit   = 300
	summaryDescLimit      = 200
)

// AskService answers questions grounded in retrieved chunks.
type AskService struct {
	store   driven.DocumentStore
	gateway *EmbeddingGateway
	index   driven.VectorIndex
	llm     driven.LLMService
	prompts driven.PromptStore
	config  driven.ConfigStore
}

// NewAskService creates a new ask service. llm may be nil; Ask then
// fails with domain.ErrLLMUnavailable.
func NewAskService(
	store driven.DocumentStore,
	gateway *EmbeddingGateway,
	index driven.VectorIndex,
	llm driven.LLMService,
	prompts driven.PromptStore,
	config driven.ConfigStore,
) *AskService {
	return &AskService{
		store:   store,
		gateway: gateway,
		index:   index,
		llm:     llm,
		prompts: prompts,
		config:  config,
	}
}

// Ask retrieves similar chunks, gates on confidence, and composes a
// grounded answer.
func (s *AskService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error) {
	logger.Section("Question Answering")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, fmt.Errorf("%w: asking requires a configured AI provider", domain.ErrLLMUnavailable)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	retrieval := s.retrieve(ctx, question, topK)
	retrieval.Results = applyTagFilters(retrieval.Results, opts)
	logger.Debug("Retrieval state: %d, results: %d, top score: %.3f",
		retrieval.State, len(retrieval.Results), retrieval.TopScore())

	contextText, contexts := s.buildContext(ctx, retrieval)

	template, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return nil, fmt.Errorf("loading answer prompt: %w", err)
	}

	answer, err := s.llm.Generate(ctx, fmt.Sprintf(template, contextText, question), driven.GenerateOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
		System:      "You answer with grounded, concise responses.",
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &domain.Answer{
		Answer:   strings.TrimSpace(answer),
		Contexts: contexts,
	}, nil
}

// retrieve embeds the question and finds the most similar chunks,
// falling back to a brute-force scan when no index exists.
func (s *AskService) retrieve(ctx context.Context, question string, topK int) domain.Retrieval {
	queryVec, err := s.gateway.EmbedQuery(ctx, question)
	if err != nil {
		logger.Debug("Query embedding unavailable: %v", err)
		return domain.Retrieval{State: domain.RetrievalUnavailable}
	}

	hits, err := s.index.Search(ctx, queryVec, topK)
	switch {
	case err == nil:
		return s.hydrate(ctx, hits)
	case errors.Is(err, domain.ErrVectorIndexUnavailable):
		logger.Debug("No persisted index, using brute-force similarity")
		return s.bruteForce(ctx, queryVec, topK)
	default:
		logger.Warn("Index search failed: %v", err)
		return s.bruteForce(ctx, queryVec, topK)
	}
}

// hydrate resolves index hits into scored chunks, preserving rank order.
func (s *AskService) hydrate(ctx context.Context, hits []driven.VectorHit) domain.Retrieval {
	if len(hits) == 0 {
		return domain.Retrieval{State: domain.RetrievalEmpty}
	}

	ids := make([]string, len(hits))
	scores := make(map[string]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
		scores[h.ChunkID] = h.Similarity
	}

	rows, err := s.store.ChunksByIDs(ctx, ids)
	if err != nil {
		logger.Warn("Hydrating hits failed: %v", err)
		return domain.Retrieval{State: domain.RetrievalUnavailable}
	}

	byID := make(map[string]domain.ChunkWithDocument, len(rows))
	for _, row := range rows {
		byID[row.Chunk.ID] = row
	}

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			continue // Index can trail the store briefly.
		}
		results = append(results, domain.ScoredChunk{
			Chunk:    row.Chunk,
			Document: row.Document,
			Score:    scores[id],
		})
	}
	if len(results) == 0 {
		return domain.Retrieval{State: domain.RetrievalEmpty}
	}
	return domain.Retrieval{State: domain.RetrievalFound, Results: results}
}

// bruteForce computes cosine similarity over every stored chunk.
// Chunks with empty or mismatched vectors are skipped.
func (s *AskService) bruteForce(ctx context.Context, queryVec []float32, topK int) domain.Retrieval {
	rows, err := s.store.AllChunks(ctx)
	if err != nil {
		logger.Warn("Loading chunks for brute-force search failed: %v", err)
		return domain.Retrieval{State: domain.RetrievalUnavailable}
	}

	var results []domain.ScoredChunk
	for _, row := range rows {
		if len(row.Chunk.Embedding) != len(queryVec) {
			continue
		}
		results = append(results, domain.ScoredChunk{
			Chunk:    row.Chunk,
			Document: row.Document,
			Score:    cosine(queryVec, row.Chunk.Embedding),
		})
	}
	if len(results) == 0 {
		return domain.Retrieval{State: domain.RetrievalEmpty}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return domain.Retrieval{State: domain.RetrievalFound, Results: results}
}

// buildContext assembles the grounding text. Weak or missing retrieval
// falls back to a deterministic database summary so generic questions
// still get a useful answer.
func (s *AskService) buildContext(ctx context.Context, retrieval domain.Retrieval) (string, []domain.AnswerContext) {
	threshold := defaultScoreThreshold
	if s.config != nil {
		if v := s.config.GetFloat(cfgScoreThreshold); v > 0 {
			threshold = v
		}
	}

	if retrieval.State == domain.RetrievalFound && retrieval.TopScore() >= threshold {
		var snippets []string
		contexts := make([]domain.AnswerContext, 0, len(retrieval.Results))
		for _, sc := range retrieval.Results {
			snippets = append(snippets, fmt.Sprintf("[Score %.2f] From %s:\n%s",
				sc.Score, sc.Document.Name, sc.Chunk.Text))
			contexts = append(contexts, domain.AnswerContext{
				DocumentID: sc.Document.ID,
				FileName:   sc.Document.Name,
				Score:      sc.Score,
				Preview:    truncate(sc.Chunk.Text, contextPreviewLimit),
			})
		}
		return strings.Join(snippets, "\n\n"), contexts
	}

	logger.Debug("Weak retrieval, falling back to database summary")
	return s.summaryContext(ctx), nil
}

// summaryContext renders library statistics as grounding text.
func (s *AskService) summaryContext(ctx context.Context) string {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		logger.Warn("Loading library stats failed: %v", err)
		return "The document database is currently empty or unavailable."
	}

	lines := []string{
		fmt.Sprintf("Documents: %d", stats.DocumentCount),
		fmt.Sprintf("Projects: %s", joinOrNA(stats.Projects)),
		fmt.Sprintf("Contractors: %s", joinOrNA(stats.Contractors)),
		"Recent files:",
	}
	for _, d := range stats.Recent {
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Name, truncate(d.Description, summaryDescLimit)))
	}
	return strings.Join(lines, "\n")
}

// applyTagFilters keeps results matching the project and contractor
// substring filters. A filter that would eliminate everything is
// ignored, mirroring the lenient behaviour users expect from tags.
func applyTagFilters(results []domain.ScoredChunk, opts domain.AskOptions) []domain.ScoredChunk {
	project := strings.ToLower(strings.TrimSpace(opts.Project))
	contractor := strings.ToLower(strings.TrimSpace(opts.Contractor))
	if project == "" && contractor == "" {
		return results
	}

	var kept []domain.ScoredChunk
	for _, sc := range results {
		if project != "" && !strings.Contains(strings.ToLower(sc.Document.Project), project) {
			continue
		}
		if contractor != "" && !strings.Contains(strings.ToLower(sc.Document.Contractor), contractor) {
			continue
		}
		kept = append(kept, sc)
	}
	if len(kept) == 0 {
		return results
	}
	return kept
}

// cosine computes cosine similarity between two vectors of equal length.
func cosine(a []float32, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func joinOrNA(values []string) string {
	if len(values) == 0 {
		return "n/a"
	}
	return strings.Join(values, ", ")
}
