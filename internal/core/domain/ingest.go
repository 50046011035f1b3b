package domain

// Stage tags identify where in the pipeline a source failed.
const (
	StageCrawl     = "crawl"
	StageExtract   = "extract"
	StageNormalize = "normalize"
	StageChunk     = "chunk"
	StageEmbed     = "embed"
	StageStore     = "store"
)

// Failure reasons used in IngestResult reporting.
const (
	ReasonFetchError = "fetch-error"
	ReasonTooLarge   = "too-large"
)

// SourceFailure records one source that did not make it into the store,
// with the stage it failed at and a human-readable reason.
type SourceFailure struct {
	// SourceID is the normalised source identifier.
	SourceID string

	// Stage is one of the Stage* constants.
	Stage string

	// Reason is a human-readable explanation.
	Reason string
}

// IngestResult summarises one ingestion run. Partial success is the
// expected outcome: failed sources are listed, not escalated. Immutable
// once the run completes.
type IngestResult struct {
	// TableName is the store table/collection the run wrote to.
	TableName string

	// ChunkCount is the total number of chunks stored.
	ChunkCount int

	// Stored lists source identifiers that were fully ingested.
	Stored []string

	// Failed lists sources that failed, with stage and reason.
	Failed []SourceFailure
}
