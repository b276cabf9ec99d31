package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

func TestDescribe_UsesTextWhenAvailable(t *testing.T) {
	llm := &mockLLMService{response: "A budget summary."}
	d := newDescriber(llm, mockPromptStore{})

	desc := d.describe(context.Background(), "/x/budget.txt", "text/plain", "budget content", domain.DescribeConcise)
	assert.Equal(t, "A budget summary.", desc)
}

func TestDescribe_TruncatesLongText(t *testing.T) {
	llm := &mockLLMService{response: "ok"}
	d := newDescriber(llm, mockPromptStore{})

	long := make([]byte, describePrefixLimit*2)
	for i := range long {
		long[i] = 'x'
	}
	d.describe(context.Background(), "/x/big.txt", "text/plain", string(long), domain.DescribeConcise)

	require.NotEmpty(t, llm.prompts)
	assert.LessOrEqual(t, len(llm.prompts[0]), describePrefixLimit+100)
}

func TestDescribe_FallsBackToVisionForImages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("fakepng"), 0644))

	llm := &mockLLMService{generateErr: assert.AnError, visionText: "A site photo."}
	d := newDescriber(llm, mockPromptStore{})

	desc := d.describe(context.Background(), path, "image/png", "", domain.DescribeConcise)
	assert.Equal(t, "A site photo.", desc)
}

func TestDescribe_FilenameFallback(t *testing.T) {
	llm := &mockLLMService{generateErr: assert.AnError, visionErr: assert.AnError}
	d := newDescriber(llm, mockPromptStore{})

	desc := d.describe(context.Background(), "/x/drawing.dwg", "application/octet-stream", "", domain.DescribeConcise)
	assert.Equal(t, "File named drawing.dwg.", desc)
}

func TestDescribe_TextFailureFallsThrough(t *testing.T) {
	llm := &mockLLMService{generateErr: assert.AnError}
	d := newDescriber(llm, mockPromptStore{})

	desc := d.describe(context.Background(), "/x/notes.txt", "text/plain", "some text", domain.DescribeConcise)
	assert.Equal(t, "File named notes.txt.", desc)
}

func TestDescribePromptNames(t *testing.T) {
	assert.Equal(t, "describe_concise", describePromptName(domain.DescribeConcise))
	assert.Equal(t, "describe_detailed", describePromptName(domain.DescribeDetailed))
	assert.Equal(t, "describe_creative", describePromptName(domain.DescribeCreative))
	assert.Equal(t, "vision_detailed", visionPromptName(domain.DescribeDetailed))
}
