package driven

import (
	"context"

	"github.com/veldtlabs/quarry/internal/core/domain"
)

// Extractor converts fetched bytes into a structured RawDocument.
// Each extractor handles specific MIME types; heavier engines (PDF,
// office formats) plug in behind this same port.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract parses content into structural blocks. Returns
	// domain.ErrCorruptInput when the payload cannot be parsed.
	Extract(ctx context.Context, sourceID string, content []byte) (*domain.RawDocument, error)
}

// ExtractorRegistry selects an extractor by MIME type.
type ExtractorRegistry interface {
	// ForMIMEType returns the extractor for the given MIME type, or
	// domain.ErrUnsupportedFormat when none is registered.
	ForMIMEType(mimeType string) (Extractor, error)
}
