// Package plaintext extracts text media by direct passthrough.
package plaintext

import (
	"context"
	"os"
	"strings"

	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text media.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
// "text/*" matches any text subtype via the registry.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/*",
		"application/json",
		"application/xml",
		"application/yaml",
		"application/toml",
		"application/javascript",
		"application/x-sh",
		"image/svg+xml",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract reads the file as UTF-8 text, replacing invalid sequences.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
