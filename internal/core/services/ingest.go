package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veldtlabs/quarry/internal/chunker"
	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
	"github.com/veldtlabs/quarry/internal/core/ports/driving"
	"github.com/veldtlabs/quarry/internal/crawler"
	"github.com/veldtlabs/quarry/internal/logger"
	"github.com/veldtlabs/quarry/internal/normalize"
)

// Ensure IngestCoordinator implements the interface.
var _ driving.Ingestor = (*IngestCoordinator)(nil)

// DefaultMaxDocWords rejects documents whose extracted word count makes
// them unusable as retrieval sources.
const DefaultMaxDocWords = 100_000

// embedRetryAttempts bounds the embedding retry loop at the call site.
const embedRetryAttempts = 3

// IngestCoordinator drives the crawl -> extract -> normalize -> chunk
// -> embed -> store pipeline. Failure at any stage is recorded per
// source and the run continues: partial success is the expected
// outcome, not an error state.
type IngestCoordinator struct {
	fetcher     driven.Fetcher
	limiter     *crawler.RateLimiter
	registry    driven.ExtractorRegistry
	tokenizer   driven.Tokenizer
	embedder    driven.EmbeddingService
	store       driven.VectorStore
	maxDocWords int
	retry       crawler.RetryPolicy
}

// NewIngestCoordinator creates a coordinator. The rate limiter is the
// process-wide instance shared by all runs.
func NewIngestCoordinator(
	fetcher driven.Fetcher,
	limiter *crawler.RateLimiter,
	registry driven.ExtractorRegistry,
	tokenizer driven.Tokenizer,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *IngestCoordinator {
	return &IngestCoordinator{
		fetcher:     fetcher,
		limiter:     limiter,
		registry:    registry,
		tokenizer:   tokenizer,
		embedder:    embedder,
		store:       store,
		maxDocWords: DefaultMaxDocWords,
		retry:       crawler.DefaultRetryPolicy(),
	}
}

// SetMaxDocWords overrides the per-document word ceiling.
func (c *IngestCoordinator) SetMaxDocWords(n int) {
	if n > 0 {
		c.maxDocWords = n
	}
}

// SetRetryPolicy overrides the fetch retry policy.
func (c *IngestCoordinator) SetRetryPolicy(p crawler.RetryPolicy) {
	c.retry = p
}

// Ingest runs the pipeline for the requested sources.
func (c *IngestCoordinator) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	if err := validateIngest(req); err != nil {
		return nil, err
	}

	table := req.TableName
	if table == "" {
		table = GenerateTableName()
	}
	table = SanitizeTableName(table)

	if err := c.store.CreateTable(ctx, table); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	maxDepth := 0
	if req.CrawlInternal {
		maxDepth = req.MaxDepth
		if maxDepth <= 0 {
			maxDepth = 1
		}
	}
	crawl := crawler.New(c.fetcher, c.limiter, crawler.Config{
		MaxDepth:     maxDepth,
		SameSiteOnly: true,
		Retry:        c.retry,
	})
	assembler := chunker.New(c.tokenizer,
		chunker.WithMaxTokens(req.MaxTokens),
		chunker.WithMinWords(req.MinWords),
		chunker.WithCategory(req.Category),
	)

	logger.Section("Ingest")
	logger.Info("Table %s, %d seed source(s)", table, len(req.Sources))

	result := &domain.IngestResult{TableName: table}
	stream := crawl.Crawl(req.Sources)

	for {
		// Cooperative cancellation between sources; in-flight fetches
		// complete or time out naturally.
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fetched, ok := stream.Next(ctx)
		if !ok {
			break
		}
		if fetched.Err != nil {
			result.Failed = append(result.Failed, domain.SourceFailure{
				SourceID: fetched.Source.ID,
				Stage:    domain.StageCrawl,
				Reason:   fetched.Reason,
			})
			continue
		}

		stored, failure := c.processOne(ctx, table, req, assembler, fetched)
		if failure != nil {
			logger.Warn("Source %s failed at %s: %s", failure.SourceID, failure.Stage, failure.Reason)
			result.Failed = append(result.Failed, *failure)
			continue
		}
		result.Stored = append(result.Stored, fetched.Source.ID)
		result.ChunkCount += stored
	}

	logger.Info("Ingest complete: %d chunks, %d stored, %d failed",
		result.ChunkCount, len(result.Stored), len(result.Failed))
	return result, nil
}

// processOne runs one fetched document through the remaining stages.
// Returns the number of chunks stored, or a stage-tagged failure.
func (c *IngestCoordinator) processOne(
	ctx context.Context,
	table string,
	req driving.IngestRequest,
	assembler *chunker.Assembler,
	fetched *crawler.FetchResult,
) (int, *domain.SourceFailure) {
	fail := func(stage string, err error) *domain.SourceFailure {
		return &domain.SourceFailure{
			SourceID: fetched.Source.ID,
			Stage:    stage,
			Reason:   err.Error(),
		}
	}

	extractor, err := c.registry.ForMIMEType(fetched.MIMEType)
	if err != nil {
		return 0, fail(domain.StageExtract, err)
	}
	raw, err := extractor.Extract(ctx, fetched.Source.ID, fetched.Body)
	if err != nil {
		return 0, fail(domain.StageExtract, err)
	}

	// Word-count ceiling is the crawler's size gate; it can only be
	// applied once the document has been extracted.
	if raw.WordCount > c.maxDocWords {
		return 0, &domain.SourceFailure{
			SourceID: fetched.Source.ID,
			Stage:    domain.StageCrawl,
			Reason:   domain.ReasonTooLarge,
		}
	}

	blocks := normalize.Normalize(raw)
	logger.Debug("Normalized %s: %d blocks", fetched.Source.ID, len(blocks))

	chunks := assembler.Assemble(blocks)
	if len(chunks) == 0 {
		logger.Debug("No chunks above threshold for %s", fetched.Source.ID)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := c.embedWithRetry(ctx, texts)
	if err != nil {
		return 0, fail(domain.StageEmbed, err)
	}

	rows := make([]driven.Row, len(chunks))
	for i := range chunks {
		rows[i] = driven.Row{
			ID:       chunks[i].ID,
			Text:     chunks[i].Text,
			Vector:   vectors[i],
			TenantID: req.BusinessID,
			Metadata: chunkMetadata(&chunks[i], raw.Title),
		}
	}
	if err := c.store.Upsert(ctx, table, rows); err != nil {
		return 0, fail(domain.StageStore, err)
	}

	logger.Debug("Stored %d chunks for %s", len(chunks), fetched.Source.ID)
	return len(chunks), nil
}

// embedWithRetry retries transient embedding failures with the backoff
// curve of the retry policy before escalating.
func (c *IngestCoordinator) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= embedRetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retry.NextDelay(attempt - 1)):
			}
		}
		vectors, err := c.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		logger.Debug("Embedding attempt %d failed: %v", attempt, err)
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, lastErr)
}

func chunkMetadata(chunk *domain.Chunk, docTitle string) map[string]any {
	title := chunk.Title()
	if title == "" {
		title = docTitle
	}
	md := map[string]any{
		"filename": chunk.SourceID,
		"title":    title,
	}
	if len(chunk.Pages) > 0 {
		md["page_numbers"] = chunk.Pages
	}
	if chunk.Category != "" {
		md["category"] = chunk.Category
	}
	return md
}

func validateIngest(req driving.IngestRequest) error {
	if len(req.Sources) == 0 {
		return fmt.Errorf("%w: at least one source is required", domain.ErrInvalidConfig)
	}
	if strings.TrimSpace(req.BusinessID) == "" {
		return fmt.Errorf("%w: business ID is required", domain.ErrInvalidConfig)
	}
	if req.MaxTokens < 0 {
		return fmt.Errorf("%w: max tokens must be positive", domain.ErrInvalidConfig)
	}
	if req.MinWords < 0 {
		return fmt.Errorf("%w: min words must be positive", domain.ErrInvalidConfig)
	}
	if req.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must be positive", domain.ErrInvalidConfig)
	}
	return nil
}

// GenerateTableName returns a collision-resistant table name. Concurrent
// runs may target the same backing store, so the name embeds a timestamp
// and a random suffix.
func GenerateTableName() string {
	return fmt.Sprintf("documents_%d_%s", time.Now().Unix(), uuid.New().String()[:8])
}

// SanitizeTableName maps a caller-supplied name onto the store's
// identifier alphabet.
func SanitizeTableName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
