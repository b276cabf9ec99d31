package extractors

import (
	"strings"

	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps media types to extractors. When several extractors
// claim the same MIME type the highest priority wins.
type Registry struct {
	byMIME map[string]driven.Extractor
}

// NewRegistry creates a registry from the given extractors.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byMIME: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		for _, mimeType := range e.SupportedMIMETypes() {
			existing, ok := r.byMIME[mimeType]
			if !ok || e.Priority() > existing.Priority() {
				r.byMIME[mimeType] = e
			}
		}
	}
	return r
}

// Resolve returns the extractor for a media type, or nil when none
// handles it. Parameters (e.g. "; charset=utf-8") are stripped, and a
// bare "text/*" registration matches any text subtype.
func (r *Registry) Resolve(mediaType string) driven.Extractor {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	if e, ok := r.byMIME[mediaType]; ok {
		return e
	}
	if strings.HasPrefix(mediaType, "text/") {
		if e, ok := r.byMIME["text/*"]; ok {
			return e
		}
	}
	return nil
}
