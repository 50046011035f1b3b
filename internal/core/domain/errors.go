package domain

import "errors"

// Domain errors represent pipeline failures.
// Per-source errors are recorded in IngestResult and never abort a run;
// configuration errors fail fast before any I/O.
var (
	// ErrInvalidConfig indicates an out-of-range option or missing credential.
	// Validation happens at the boundary, before any work begins.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotFound indicates a requested entity (table, row) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFetch indicates a network, timeout or HTTP failure while fetching
	// a source. Retried per the crawler's retry policy before surfacing.
	ErrFetch = errors.New("fetch failed")

	// ErrTooLarge indicates a document exceeded the configured size ceiling.
	// Terminal for that source; never retried.
	ErrTooLarge = errors.New("document too large")

	// ErrUnsupportedFormat indicates no extractor handles the document's
	// content type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptInput indicates the extractor could not parse the document.
	ErrCorruptInput = errors.New("corrupt input")

	// ErrEmbedding indicates the embedding service failed. Transient;
	// retried with backoff at the call site before escalating.
	ErrEmbedding = errors.New("embedding service failed")

	// ErrStore indicates a vector store connection or write failure.
	// Aborts the current source only.
	ErrStore = errors.New("vector store failed")

	// ErrRateLimited indicates an upstream service rejected the request
	// for quota reasons.
	ErrRateLimited = errors.New("rate limited")

	// ErrLLMUnavailable indicates no completion service is configured.
	// Queries still return ranked sources without a composed answer.
	ErrLLMUnavailable = errors.New("completion service unavailable")
)
