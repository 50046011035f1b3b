// Package extractors converts fetched bytes into structured documents.
// The built-in extractors cover HTML and plain text; heavier conversion
// engines (PDF, office formats) plug in behind the same port.
package extractors

import (
	"fmt"
	"strings"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry selects an extractor by MIME type.
type Registry struct {
	byMIME map[string]driven.Extractor
}

// NewRegistry creates a registry with the given extractors. Later
// registrations win on MIME-type conflicts.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{byMIME: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		for _, mt := range e.SupportedMIMETypes() {
			r.byMIME[strings.ToLower(mt)] = e
		}
	}
	return r
}

// DefaultRegistry returns a registry with the built-in extractors.
func DefaultRegistry() *Registry {
	return NewRegistry(NewPlaintext(), NewHTML())
}

// ForMIMEType returns the extractor registered for mimeType.
func (r *Registry) ForMIMEType(mimeType string) (driven.Extractor, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i > 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if e, ok := r.byMIME[mt]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, mimeType)
}
