// Package crawler discovers and fetches candidate documents. It keeps a
// FIFO frontier seeded from the caller's sources, dedups discovered
// links by normalised identifier, and applies the politeness and retry
// policies for all outbound fetches. The crawl is a lazy, single-pass,
// non-restartable sequence: the frontier is not persisted across runs.
package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
	"github.com/veldtlabs/quarry/internal/logger"
)

// DefaultMaxFetchBytes rejects pathologically large payloads post-fetch.
// Size is unknown until fetched, so this cannot gate enqueueing.
const DefaultMaxFetchBytes = 10 << 20

// Config controls one crawl.
type Config struct {
	// MaxDepth bounds link discovery: links are enqueued only while the
	// discovering page's depth is below it. Zero disables discovery.
	MaxDepth int

	// SameSiteOnly restricts discovered links to the seed's registrable
	// domain.
	SameSiteOnly bool

	// MaxFetchBytes is the post-fetch byte ceiling. Zero means
	// DefaultMaxFetchBytes.
	MaxFetchBytes int

	// Retry is the fetch retry policy.
	Retry RetryPolicy
}

// FetchResult is one sourced document, ready for extraction, or a
// per-source failure. A failure never aborts the crawl.
type FetchResult struct {
	// Source is the fetched source.
	Source domain.Source

	// Body is the payload; nil on failure.
	Body []byte

	// MIMEType is the reported or inferred content type.
	MIMEType string

	// Err is non-nil when the source failed terminally.
	Err error

	// Reason is the recorded failure reason ("fetch-error", "too-large").
	Reason string
}

// Crawler fetches a deduplicated, filtered stream of documents.
type Crawler struct {
	fetcher driven.Fetcher
	limiter *RateLimiter
	cfg     Config
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a crawler. The RateLimiter is the process-wide instance;
// it is injected so tests can pass a no-delay limiter.
func New(fetcher driven.Fetcher, limiter *RateLimiter, cfg Config) *Crawler {
	if cfg.MaxFetchBytes <= 0 {
		cfg.MaxFetchBytes = DefaultMaxFetchBytes
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &Crawler{
		fetcher: fetcher,
		limiter: limiter,
		cfg:     cfg,
		sleep:   sleepCtx,
	}
}

// Crawl starts a crawl from the given seeds and returns the lazy result
// stream. Duplicate seeds collapse to one frontier entry.
func (c *Crawler) Crawl(seeds []string) *Stream {
	s := &Stream{
		crawler: c,
		seen:    make(map[string]bool),
	}
	for _, raw := range seeds {
		src := domain.NewSource(raw, 0, domain.OriginSeed)
		if src.ID == "" || s.seen[src.ID] {
			continue
		}
		s.seen[src.ID] = true
		s.frontier = append(s.frontier, src)
	}
	return s
}

// Stream is the pull-based crawl sequence. Each call to Next fetches
// the next frontier entry; the sequence ends when the frontier drains.
type Stream struct {
	crawler  *Crawler
	frontier []domain.Source
	seen     map[string]bool
}

// Next fetches the next source. The second return is false when the
// frontier is exhausted. Failed sources are returned with Err set so
// the caller can record them in order.
func (s *Stream) Next(ctx context.Context) (*FetchResult, bool) {
	if len(s.frontier) == 0 {
		return nil, false
	}
	src := s.frontier[0]
	s.frontier = s.frontier[1:]

	if src.Kind == domain.SourceLocal {
		return s.fetchLocal(src), true
	}
	return s.fetchRemote(ctx, src), true
}

func (s *Stream) fetchLocal(src domain.Source) *FetchResult {
	body, err := os.ReadFile(src.ID)
	if err != nil {
		return &FetchResult{
			Source: src,
			Err:    fmt.Errorf("%w: %v", domain.ErrFetch, err),
			Reason: domain.ReasonFetchError,
		}
	}
	if len(body) > s.crawler.cfg.MaxFetchBytes {
		return &FetchResult{
			Source: src,
			Err:    domain.ErrTooLarge,
			Reason: domain.ReasonTooLarge,
		}
	}
	return &FetchResult{
		Source:   src,
		Body:     body,
		MIMEType: mimeFromPath(src.ID),
	}
}

func (s *Stream) fetchRemote(ctx context.Context, src domain.Source) *FetchResult {
	resp, err := s.crawler.fetchWithRetry(ctx, src.ID)
	if err != nil {
		logger.Debug("Fetch failed for %s: %v", src.ID, err)
		return &FetchResult{
			Source: src,
			Err:    err,
			Reason: domain.ReasonFetchError,
		}
	}
	if len(resp.Body) > s.crawler.cfg.MaxFetchBytes {
		logger.Debug("Rejecting %s: %d bytes over ceiling", src.ID, len(resp.Body))
		return &FetchResult{
			Source: src,
			Err:    domain.ErrTooLarge,
			Reason: domain.ReasonTooLarge,
		}
	}

	if isHTML(resp.MIMEType) && src.Depth < s.crawler.cfg.MaxDepth {
		s.enqueueLinks(src, resp.Body)
	}

	return &FetchResult{
		Source:   src,
		Body:     resp.Body,
		MIMEType: resp.MIMEType,
	}
}

// enqueueLinks extracts same-site document links from an HTML page and
// appends them to the frontier, one frontier entry per normalised
// identifier for the whole run.
func (s *Stream) enqueueLinks(from domain.Source, body []byte) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return
	}
	base, err := url.Parse(from.ID)
	if err != nil {
		return
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if s.crawler.cfg.SameSiteOnly &&
			domain.RegistrableHost(abs.String()) != domain.RegistrableHost(from.ID) {
			return
		}
		if excludedPath(abs.Path) {
			return
		}
		link := domain.NewSource(abs.String(), from.Depth+1, domain.OriginDiscovered)
		if link.ID == "" || s.seen[link.ID] {
			return
		}
		s.seen[link.ID] = true
		s.frontier = append(s.frontier, link)
		logger.Debug("Discovered %s (depth %d)", link.ID, link.Depth)
	})
}

// fetchWithRetry applies the rate limiter and retry policy. HTTP 4xx is
// terminal except 429; 429, 5xx and transport errors retry with
// exponential backoff until the attempt ceiling.
func (c *Crawler) fetchWithRetry(ctx context.Context, rawURL string) (*driven.FetchResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.cfg.Retry.NextDelay(attempt-1)); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrFetch, err)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: HTTP %d", domain.ErrFetch, resp.StatusCode)
		default:
			// Remaining 4xx are terminal for this source.
			return nil, fmt.Errorf("%w: HTTP %d", domain.ErrFetch, resp.StatusCode)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

// excludedSegments are path fragments that mark transactional or
// navigation-only pages with no document value.
var excludedSegments = []string{
	"booking", "book-online", "contact", "cart", "checkout", "login",
	"signin", "sign-in", "signup", "sign-up", "account", "wp-admin",
}

// excludedExtensions are non-document file types.
var excludedExtensions = map[string]bool{
	".css": true, ".js": true, ".json": true, ".xml": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".ico": true, ".webp": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true,
}

func excludedPath(p string) bool {
	lower := strings.ToLower(p)
	for _, seg := range excludedSegments {
		if strings.Contains(lower, seg) {
			return true
		}
	}
	return excludedExtensions[strings.ToLower(path.Ext(lower))]
}

func isHTML(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/html") ||
		strings.HasPrefix(mimeType, "application/xhtml")
}

func mimeFromPath(p string) string {
	ext := filepath.Ext(p)
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.Index(t, ";"); i > 0 {
			return t[:i]
		}
		return t
	}
	return "text/plain"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
