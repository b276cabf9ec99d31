package domain

import "time"

// LibraryStats is the deterministic database summary used as fallback
// context when retrieval confidence is low.
type LibraryStats struct {
	// DocumentCount is the total number of documents.
	DocumentCount int

	// Projects and Contractors are the distinct non-empty tag values.
	Projects    []string
	Contractors []string

	// Recent holds the five most recently updated documents.
	Recent []Document
}

// ExportChunk is one chunk in a portable export. Embeddings are
// intentionally omitted.
type ExportChunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ExportDocument is one document with its ordered chunk texts in a
// portable export.
type ExportDocument struct {
	Path        string        `json:"file_path"`
	Name        string        `json:"file_name"`
	MediaType   string        `json:"file_type"`
	Contractor  string        `json:"contractor"`
	Project     string        `json:"project"`
	SizeBytes   int64         `json:"size_bytes"`
	ModifiedAt  *time.Time    `json:"modified_at"`
	Description string        `json:"description"`
	Chunks      []ExportChunk `json:"chunks"`
}
