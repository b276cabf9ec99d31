package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/extractors/pdf"
	"github.com/arkive-labs/arkive-cli/internal/extractors/plaintext"
)

// stubExtractor claims a fixed MIME set with a fixed priority.
type stubExtractor struct {
	mimes    []string
	priority int
}

func (s *stubExtractor) SupportedMIMETypes() []string { return s.mimes }
func (s *stubExtractor) Priority() int                { return s.priority }
func (s *stubExtractor) Extract(context.Context, string) (string, error) {
	return "", nil
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry(plaintext.New(), pdf.New())

	t.Run("exact match", func(t *testing.T) {
		require.NotNil(t, r.Resolve("application/pdf"))
		assert.IsType(t, &pdf.Extractor{}, r.Resolve("application/pdf"))
	})

	t.Run("text wildcard", func(t *testing.T) {
		require.NotNil(t, r.Resolve("text/plain"))
		require.NotNil(t, r.Resolve("text/markdown"))
		assert.IsType(t, &plaintext.Extractor{}, r.Resolve("text/x-go"))
	})

	t.Run("parameters stripped", func(t *testing.T) {
		assert.NotNil(t, r.Resolve("text/plain; charset=utf-8"))
	})

	t.Run("unknown media", func(t *testing.T) {
		assert.Nil(t, r.Resolve("application/octet-stream"))
		assert.Nil(t, r.Resolve("image/png"))
		assert.Nil(t, r.Resolve(""))
	})
}

func TestRegistry_PriorityWins(t *testing.T) {
	low := &stubExtractor{mimes: []string{"application/pdf"}, priority: 1}
	r := NewRegistry(low, pdf.New())

	assert.IsType(t, &pdf.Extractor{}, r.Resolve("application/pdf"))

	r = NewRegistry(pdf.New(), low)
	assert.IsType(t, &pdf.Extractor{}, r.Resolve("application/pdf"))
}
