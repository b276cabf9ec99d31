package driven

import "context"

// Extractor produces plain text from a file of a supported media type.
// Files without a matching extractor yield empty text, never an error.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority when several extractors
	// claim the same MIME type (higher = preferred).
	Priority() int

	// Extract reads the file and returns its plain text content.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry resolves the extractor for a media type.
type ExtractorRegistry interface {
	// Resolve returns the highest-priority extractor for the media
	// type, or nil when none handles it.
	Resolve(mediaType string) Extractor
}
