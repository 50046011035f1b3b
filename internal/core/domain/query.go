package domain

// RankedContext is one retrieved chunk handed to answer composition.
// Produced per query and never persisted.
type RankedContext struct {
	// Text is the chunk content.
	Text string

	// Similarity is the cosine similarity score in [0,1].
	Similarity float64

	// Metadata carries the stored chunk metadata (filename, pages, title,
	// category).
	Metadata map[string]any
}

// QueryResult is the outcome of one knowledge-base query.
type QueryResult struct {
	// Answer is the composed answer, empty when no completion service is
	// configured or no context cleared the threshold.
	Answer string

	// Sources is the ranked, thresholded context set, best first.
	Sources []RankedContext

	// ContextCount is len(Sources), surfaced for callers that only need
	// the count.
	ContextCount int
}
