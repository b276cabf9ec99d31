package domain

// RetrievalState distinguishes the three outcomes of a similarity
// lookup so callers cannot conflate "no persisted index" with
// "no matches".
type RetrievalState int

const (
	// RetrievalFound means ranked results were produced.
	RetrievalFound RetrievalState = iota
	// RetrievalEmpty means the lookup ran but matched nothing.
	RetrievalEmpty
	// RetrievalUnavailable means no index existed and no fallback
	// produced results either.
	RetrievalUnavailable
)

// ScoredChunk is a retrieved chunk with its owning document and
// similarity score on the normalised cosine scale.
type ScoredChunk struct {
	Chunk    Chunk
	Document Document
	Score    float64
}

// Retrieval is the tri-state result of a similarity lookup.
type Retrieval struct {
	State   RetrievalState
	Results []ScoredChunk
}

// TopScore returns the maximum similarity among the results, used as
// the confidence signal gating the database-summary fallback.
func (r Retrieval) TopScore() float64 {
	best := 0.0
	for _, sc := range r.Results {
		if sc.Score > best {
			best = sc.Score
		}
	}
	return best
}

// AnswerContext exposes one context item actually used to ground an
// answer, for traceability.
type AnswerContext struct {
	DocumentID string  `json:"document_id"`
	FileName   string  `json:"file_name"`
	Score      float64 `json:"score"`
	Preview    string  `json:"preview"`
}

// Answer is the result of a question against the corpus.
type Answer struct {
	Answer   string          `json:"answer"`
	Contexts []AnswerContext `json:"contexts"`
}

// AskOptions configures a question.
type AskOptions struct {
	// TopK is the number of chunks to retrieve. Defaults to 5.
	TopK int

	// Project and Contractor are case-insensitive substring filters
	// over the owning document's tags. A filter that would eliminate
	// every result is ignored for that call.
	Project    string
	Contractor string
}
