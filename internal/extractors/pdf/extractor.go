// Package pdf extracts text from PDF files via the pdftotext tool.
package pdf

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// CommandRunner executes an external command and returns its stdout.
// Abstracted for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor handles PDF documents by shelling out to pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates a new PDF extractor using pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract returns the concatenated text of all pages. pdftotext emits
// pages separated by form feeds; those become newlines.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	text := strings.ReplaceAll(string(out), "\f", "\n")
	return strings.TrimRight(text, "\n"), nil
}
