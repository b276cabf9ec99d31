// Package extractors provides per-media-type text extraction.
// Each extractor handles a closed set of MIME types; media without an
// extractor yields empty text, never an error.
package extractors
