package driven

// Prompt names for user-customisable templates.
const (
	// PromptDescribeConcise summarises extracted text in 1-3 sentences.
	PromptDescribeConcise = "describe_concise"
	// PromptDescribeDetailed summarises extracted text in 3-6 sentences.
	PromptDescribeDetailed = "describe_detailed"
	// PromptDescribeCreative summarises extracted text in 1-3 punchy sentences.
	PromptDescribeCreative = "describe_creative"

	// PromptVisionConcise describes an image in 1-3 sentences.
	PromptVisionConcise = "vision_concise"
	// PromptVisionDetailed describes an image in 2-4 sentences.
	PromptVisionDetailed = "vision_detailed"
	// PromptVisionCreative describes an image in 1-2 punchy sentences.
	PromptVisionCreative = "vision_creative"

	// PromptAnswer is the grounding prompt combining context and question.
	PromptAnswer = "answer"
)

// PromptStore loads prompt templates, falling back to embedded
// defaults when a template is missing.
type PromptStore interface {
	// Load returns the template for the given prompt name.
	Load(name string) (string, error)
}
