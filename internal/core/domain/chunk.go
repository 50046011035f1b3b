package domain

// Chunk is a bounded-size retrieval unit prepared for embedding.
// Invariants: TokenCount is at most the configured maximum; WordCount is
// at least the configured minimum (smaller chunks are dropped, never
// stored); HeadingPath is the most specific common ancestor of the
// constituent blocks.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the concatenated content.
	Text string

	// TokenCount is the tokenised length under the embedding model's
	// tokenisation scheme.
	TokenCount int

	// WordCount is the whitespace-separated word count.
	WordCount int

	// HeadingPath is the hierarchical context shared by the content.
	HeadingPath []string

	// SourceID identifies the originating source.
	SourceID string

	// Pages is the sorted set of page numbers the content spans.
	Pages []int

	// Category is an optional caller-supplied tag.
	Category string
}

// Title returns the outermost heading for metadata purposes, or the
// empty string when the chunk has no heading context.
func (c *Chunk) Title() string {
	if len(c.HeadingPath) == 0 {
		return ""
	}
	return c.HeadingPath[0]
}
