package crawler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockFetcher implements driven.Fetcher with scripted responses per URL.
// Responses for the same URL are consumed in order, so retry sequences
// (429 then 200) can be expressed directly.
type mockFetcher struct {
	responses map[string][]*driven.FetchResponse
	errs      map[string]error
	calls     []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*driven.FetchResponse, error) {
	m.calls = append(m.calls, url)
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	queue := m.responses[url]
	if len(queue) == 0 {
		return &driven.FetchResponse{StatusCode: 404}, nil
	}
	resp := queue[0]
	if len(queue) > 1 {
		m.responses[url] = queue[1:]
	}
	return resp, nil
}

func (m *mockFetcher) callCount(url string) int {
	n := 0
	for _, c := range m.calls {
		if c == url {
			n++
		}
	}
	return n
}

func htmlResponse(body string) *driven.FetchResponse {
	return &driven.FetchResponse{
		Body:       []byte(body),
		MIMEType:   "text/html",
		StatusCode: 200,
	}
}

// newTestCrawler builds a crawler with no rate limiting and no backoff
// sleeps so retry tests run instantly.
func newTestCrawler(fetcher driven.Fetcher, cfg Config) *Crawler {
	c := New(fetcher, NewRateLimiter(0), cfg)
	c.sleep = func(_ context.Context, _ time.Duration) error { return nil }
	return c
}

func drain(t *testing.T, s *Stream) []*FetchResult {
	t.Helper()
	var results []*FetchResult
	for {
		r, ok := s.Next(context.Background())
		if !ok {
			return results
		}
		results = append(results, r)
	}
}

// --- Tests ---

func TestCrawler_Crawl_DeduplicatesSeeds(t *testing.T) {
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		"https://example.com/page": {htmlResponse("<p>hello</p>")},
	}}
	c := newTestCrawler(fetcher, Config{})

	stream := c.Crawl([]string{
		"https://example.com/page",
		"https://EXAMPLE.com/page/",
		"https://example.com/page#section",
	})
	results := drain(t, stream)

	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/page", results[0].Source.ID)
	assert.Equal(t, 1, fetcher.callCount("https://example.com/page"))
}

func TestCrawler_Crawl_SuccessfulFetch(t *testing.T) {
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		"https://example.com/doc": {htmlResponse("<p>content</p>")},
	}}
	c := newTestCrawler(fetcher, Config{})

	results := drain(t, c.Crawl([]string{"https://example.com/doc"}))

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []byte("<p>content</p>"), results[0].Body)
	assert.Equal(t, "text/html", results[0].MIMEType)
}

func TestCrawler_Crawl_RetriesExhaustedOn429(t *testing.T) {
	url := "https://example.com/busy"
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		url: {
			{StatusCode: 429},
			{StatusCode: 429},
			htmlResponse("<p>never reached</p>"),
		},
	}}
	c := newTestCrawler(fetcher, Config{
		Retry: RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})

	results := drain(t, c.Crawl([]string{url}))

	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.ErrorIs(t, results[0].Err, domain.ErrFetch)
	assert.Equal(t, domain.ReasonFetchError, results[0].Reason)
	assert.Equal(t, 2, fetcher.callCount(url))
}

func TestCrawler_Crawl_RetrySucceedsAfter429(t *testing.T) {
	url := "https://example.com/flaky"
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		url: {
			{StatusCode: 429},
			htmlResponse("<p>recovered</p>"),
		},
	}}
	c := newTestCrawler(fetcher, Config{})

	results := drain(t, c.Crawl([]string{url}))

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []byte("<p>recovered</p>"), results[0].Body)
	assert.Equal(t, 2, fetcher.callCount(url))
}

func TestCrawler_Crawl_Terminal404DoesNotRetry(t *testing.T) {
	url := "https://example.com/missing"
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		url: {{StatusCode: 404}},
	}}
	c := newTestCrawler(fetcher, Config{})

	results := drain(t, c.Crawl([]string{url}))

	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Equal(t, 1, fetcher.callCount(url))
}

func TestCrawler_Crawl_TransportErrorRetries(t *testing.T) {
	url := "https://example.com/down"
	fetcher := &mockFetcher{errs: map[string]error{
		url: errors.New("connection refused"),
	}}
	c := newTestCrawler(fetcher, Config{
		Retry: RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})

	results := drain(t, c.Crawl([]string{url}))

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, domain.ErrFetch)
	assert.Equal(t, 3, fetcher.callCount(url))
}

func TestCrawler_Crawl_EnqueuesSameSiteLinks(t *testing.T) {
	page := `<html><body>
		<a href="/about">About</a>
		<a href="https://example.com/services">Services</a>
		<a href="https://other.com/external">External</a>
		<a href="/style.css">Styles</a>
		<a href="/contact">Contact</a>
	</body></html>`
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		"https://example.com":          {htmlResponse(page)},
		"https://example.com/about":    {htmlResponse("<p>about</p>")},
		"https://example.com/services": {htmlResponse("<p>services</p>")},
	}}
	c := newTestCrawler(fetcher, Config{MaxDepth: 1, SameSiteOnly: true})

	results := drain(t, c.Crawl([]string{"https://example.com"}))

	require.Len(t, results, 3)
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Source.ID
	}
	assert.Contains(t, ids, "https://example.com/about")
	assert.Contains(t, ids, "https://example.com/services")
	assert.NotContains(t, ids, "https://other.com/external")
	assert.NotContains(t, ids, "https://example.com/contact")
	assert.NotContains(t, ids, "https://example.com/style.css")
}

func TestCrawler_Crawl_WWWHostTreatedAsSameSite(t *testing.T) {
	page := `<a href="https://www.example.com/team">Team</a>`
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		"https://example.com":          {htmlResponse(page)},
		"https://www.example.com/team": {htmlResponse("<p>team</p>")},
	}}
	c := newTestCrawler(fetcher, Config{MaxDepth: 1, SameSiteOnly: true})

	results := drain(t, c.Crawl([]string{"https://example.com"}))

	require.Len(t, results, 2)
	assert.Equal(t, "https://www.example.com/team", results[1].Source.ID)
	assert.Equal(t, domain.OriginDiscovered, results[1].Source.Origin)
	assert.Equal(t, 1, results[1].Source.Depth)
}

func TestCrawler_Crawl_DepthCeilingStopsDiscovery(t *testing.T) {
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		"https://example.com":        {htmlResponse(`<a href="/depth1">d1</a>`)},
		"https://example.com/depth1": {htmlResponse(`<a href="/depth2">d2</a>`)},
	}}
	c := newTestCrawler(fetcher, Config{MaxDepth: 1, SameSiteOnly: true})

	results := drain(t, c.Crawl([]string{"https://example.com"}))

	// depth1 is fetched but its links are not followed.
	require.Len(t, results, 2)
	assert.Equal(t, 0, fetcher.callCount("https://example.com/depth2"))
}

func TestCrawler_Crawl_ZeroDepthDisablesDiscovery(t *testing.T) {
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		"https://example.com": {htmlResponse(`<a href="/other">other</a>`)},
	}}
	c := newTestCrawler(fetcher, Config{SameSiteOnly: true})

	results := drain(t, c.Crawl([]string{"https://example.com"}))

	require.Len(t, results, 1)
}

func TestCrawler_Crawl_DiscoveredLinkDedupedAgainstSeed(t *testing.T) {
	page := `<a href="https://example.com/">Home</a><a href="/about">About</a>`
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		"https://example.com":       {htmlResponse(page)},
		"https://example.com/about": {htmlResponse("<p>about</p>")},
	}}
	c := newTestCrawler(fetcher, Config{MaxDepth: 2, SameSiteOnly: true})

	results := drain(t, c.Crawl([]string{"https://example.com"}))

	require.Len(t, results, 2)
	assert.Equal(t, 1, fetcher.callCount("https://example.com"))
}

func TestCrawler_Crawl_OversizedPayloadRejected(t *testing.T) {
	url := "https://example.com/huge"
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		url: {{
			Body:       make([]byte, 2048),
			MIMEType:   "text/html",
			StatusCode: 200,
		}},
	}}
	c := newTestCrawler(fetcher, Config{MaxFetchBytes: 1024})

	results := drain(t, c.Crawl([]string{url}))

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, domain.ErrTooLarge)
	assert.Equal(t, domain.ReasonTooLarge, results[0].Reason)
}

func TestCrawler_Crawl_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("local content"), 0600))

	c := newTestCrawler(&mockFetcher{}, Config{})
	results := drain(t, c.Crawl([]string{path}))

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []byte("local content"), results[0].Body)
	assert.Equal(t, "text/plain", results[0].MIMEType)
	assert.Equal(t, domain.SourceLocal, results[0].Source.Kind)
}

func TestCrawler_Crawl_LocalFileMissing(t *testing.T) {
	c := newTestCrawler(&mockFetcher{}, Config{})

	results := drain(t, c.Crawl([]string{filepath.Join(t.TempDir(), "absent.txt")}))

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, domain.ErrFetch)
	assert.Equal(t, domain.ReasonFetchError, results[0].Reason)
}

func TestCrawler_Crawl_FailureDoesNotAbortRun(t *testing.T) {
	fetcher := &mockFetcher{
		responses: map[string][]*driven.FetchResponse{
			"https://example.com/ok": {htmlResponse("<p>fine</p>")},
		},
		errs: map[string]error{
			"https://example.com/bad": errors.New("dial timeout"),
		},
	}
	c := newTestCrawler(fetcher, Config{
		Retry: RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
	})

	results := drain(t, c.Crawl([]string{
		"https://example.com/bad",
		"https://example.com/ok",
	}))

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestCrawler_Next_ContextCancelled(t *testing.T) {
	fetcher := &mockFetcher{responses: map[string][]*driven.FetchResponse{
		"https://example.com": {htmlResponse("<p>x</p>")},
	}}
	c := New(fetcher, NewRateLimiter(time.Hour), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := c.Crawl([]string{"https://example.com"})
	// The limiter token bucket grants one immediate slot, so burn it.
	require.NoError(t, c.limiter.Wait(context.Background()))

	result, ok := stream.Next(ctx)
	require.True(t, ok)
	assert.Error(t, result.Err)
}

func TestExcludedPath(t *testing.T) {
	tests := []struct {
		path     string
		excluded bool
	}{
		{"/about", false},
		{"/services/physio", false},
		{"/contact", true},
		{"/book-online", true},
		{"/cart/items", true},
		{"/wp-admin/settings", true},
		{"/assets/logo.png", true},
		{"/doc.pdf", false},
		{"/script.js", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.excluded, excludedPath(tt.path), "path %s", tt.path)
	}
}

func TestMimeFromPath(t *testing.T) {
	assert.Equal(t, "text/html", mimeFromPath("/docs/index.html"))
	assert.Equal(t, "text/plain", mimeFromPath("/docs/readme"))
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML("text/html"))
	assert.True(t, isHTML("text/html; charset=utf-8"))
	assert.False(t, isHTML("application/pdf"))
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
	}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 5*time.Second, p.NextDelay(4))
	assert.Equal(t, 5*time.Second, p.NextDelay(10))
	assert.Equal(t, time.Second, p.NextDelay(0))
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.BaseDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
}

func TestRateLimiter_SpacesRequests(t *testing.T) {
	interval := 20 * time.Millisecond
	limiter := NewRateLimiter(interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	elapsed := time.Since(start)

	// First token is immediate; the next two wait an interval each.
	assert.GreaterOrEqual(t, elapsed, 2*interval-5*time.Millisecond,
		fmt.Sprintf("3 requests finished in %v", elapsed))
}

func TestRateLimiter_ZeroIntervalDoesNotBlock(t *testing.T) {
	limiter := NewRateLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiter_WaitHonoursCancellation(t *testing.T) {
	limiter := NewRateLimiter(time.Hour)
	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, limiter.Wait(cancelled))
}
