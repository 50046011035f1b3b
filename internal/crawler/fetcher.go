package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// Ensure HTTPFetcher implements the interface.
var _ driven.Fetcher = (*HTTPFetcher)(nil)

// DefaultFetchTimeout bounds one fetch attempt.
const DefaultFetchTimeout = 30 * time.Second

// userAgent identifies the crawler to origin servers.
const userAgent = "QuarryBot/1.0 (+https://github.com/veldtlabs/quarry)"

// HTTPFetcher fetches remote sources over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given timeout. A zero
// timeout means DefaultFetchTimeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the content at url. Non-2xx statuses are returned in
// the response so the crawler can apply its retry policy.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*driven.FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i > 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.TrimSpace(mimeType)

	return &driven.FetchResponse{
		Body:       body,
		MIMEType:   mimeType,
		StatusCode: resp.StatusCode,
	}, nil
}
