package driven

import "context"

// FetchResponse is the payload of one successful fetch.
type FetchResponse struct {
	// Body is the fetched content.
	Body []byte

	// MIMEType is the content type reported by the server or inferred
	// from the path extension.
	MIMEType string

	// StatusCode is the HTTP status, 0 for local files.
	StatusCode int
}

// Fetcher retrieves the bytes behind a source identifier.
// Implementations must honour the context for cancellation and timeouts.
type Fetcher interface {
	// Fetch retrieves the content at url. A non-2xx status is returned as
	// a response, not an error, so the caller can apply its retry policy.
	Fetch(ctx context.Context, url string) (*FetchResponse, error)
}
