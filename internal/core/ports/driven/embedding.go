package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: this is separate from VectorStore, which persists and searches
// vectors. EmbeddingService generates them.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// More efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 1536, 3072).
	// This must match the VectorStore's configured dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}

// Tokenizer counts tokens the way the embedding model does. MaxTokens is
// an embedding-model input-length contract, so chunking must measure
// length with the model's own tokenisation scheme.
type Tokenizer interface {
	// CountTokens returns the tokenised length of text.
	CountTokens(text string) int
}
