package driving

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// ScanService ingests a directory tree into the document store.
type ScanService interface {
	// Scan walks the directory, ingests eligible files inside one
	// atomic unit of work, and triggers a best-effort index rebuild.
	// Fails with domain.ErrInvalidInput when the root is not a readable
	// directory and domain.ErrLLMUnavailable when no generation service
	// is configured.
	Scan(ctx context.Context, opts domain.ScanOptions) (*domain.ScanResult, error)
}
