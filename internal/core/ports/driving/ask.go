package driving

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// AskService answers natural-language questions over the corpus.
type AskService interface {
	// Ask embeds the question, retrieves the most similar chunks
	// (brute-force when no index exists), gates on retrieval
	// confidence, and composes a grounded answer. Fails with
	// domain.ErrInvalidInput for an empty question and
	// domain.ErrLLMUnavailable when no generation service is
	// configured.
	Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error)
}
