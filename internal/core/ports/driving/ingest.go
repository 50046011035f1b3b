package driving

import (
	"context"

	"github.com/veldtlabs/quarry/internal/core/domain"
)

// IngestRequest describes one ingestion run.
type IngestRequest struct {
	// Sources are the seed URLs or local paths.
	Sources []string

	// BusinessID is the tenant the chunks belong to. Required.
	BusinessID string

	// TableName targets an existing or new table. When empty, a
	// collision-resistant name is generated for the run.
	TableName string

	// MaxTokens caps the tokenised chunk length. Zero means the default.
	MaxTokens int

	// MinWords drops chunks below this word count. Zero means the default.
	MinWords int

	// CrawlInternal enables same-site link discovery from the seeds.
	CrawlInternal bool

	// MaxDepth bounds link discovery. Zero means seeds only.
	MaxDepth int

	// Category is an optional tag stored with every chunk.
	Category string
}

// Ingestor drives the crawl -> normalize -> chunk -> embed -> store
// pipeline and reports per-source outcomes.
type Ingestor interface {
	// Ingest runs the pipeline for the requested sources. Per-source
	// failures are recorded in the result; only configuration errors and
	// context cancellation abort the run.
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestResult, error)
}
