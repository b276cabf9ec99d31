package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// describePrefixLimit bounds how much extracted text is sent for
// summarisation.
const describePrefixLimit = 6000

// Generation parameters for descriptions.
const (
	describeTemperature = 0.2
	describeMaxTokens   = 160
)

// describer produces short file descriptions with a three-tier
// fallback: text summarisation, then vision for images, then a plain
// filename sentence. It never fails; the last tier always applies.
type describer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

func newDescriber(llm driven.LLMService, prompts driven.PromptStore) *describer {
	return &describer{llm: llm, prompts: prompts}
}

// describe returns a description for the file. text is the extracted
// content, possibly empty.
func (d *describer) describe(ctx context.Context, path, mediaType, text string, mode domain.DescribeMode) string {
	if text != "" {
		desc, err := d.describeText(ctx, text, mode)
		if err == nil && desc != "" {
			return desc
		}
		if err != nil {
			logger.Debug("Text description failed for %s: %v", path, err)
		}
	}

	if strings.HasPrefix(mediaType, "image/") {
		desc, err := d.describeImage(ctx, path, mediaType, mode)
		if err == nil && desc != "" {
			return desc
		}
		if err != nil {
			logger.Debug("Vision description failed for %s: %v", path, err)
		}
	}

	return fmt.Sprintf("File named %s.", filepath.Base(path))
}

func (d *describer) describeText(ctx context.Context, text string, mode domain.DescribeMode) (string, error) {
	style, err := d.prompts.Load(describePromptName(mode))
	if err != nil {
		return "", err
	}

	if len(text) > describePrefixLimit {
		text = text[:describePrefixLimit]
	}

	result, err := d.llm.Generate(ctx, style+"\n\n"+text, driven.GenerateOptions{
		MaxTokens:   describeMaxTokens,
		Temperature: describeTemperature,
		System:      "You are a helpful assistant that writes concise summaries.",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

func (d *describer) describeImage(ctx context.Context, path, mediaType string, mode domain.DescribeMode) (string, error) {
	instruction, err := d.prompts.Load(visionPromptName(mode))
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	result, err := d.llm.DescribeImage(ctx, mediaType, data, instruction)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

func describePromptName(mode domain.DescribeMode) string {
	switch mode {
	case domain.DescribeDetailed:
		return driven.PromptDescribeDetailed
	case domain.DescribeCreative:
		return driven.PromptDescribeCreative
	default:
		return driven.PromptDescribeConcise
	}
}

func visionPromptName(mode domain.DescribeMode) string {
	switch mode {
	case domain.DescribeDetailed:
		return driven.PromptVisionDetailed
	case domain.DescribeCreative:
		return driven.PromptVisionCreative
	default:
		return driven.PromptVisionConcise
	}
}
