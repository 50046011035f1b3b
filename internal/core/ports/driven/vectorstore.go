package driven

import "context"

// Row is one chunk prepared for storage.
type Row struct {
	// ID is the unique row identifier.
	ID string

	// Text is the chunk content.
	Text string

	// Vector is the embedding.
	Vector []float32

	// TenantID scopes the row to one business.
	TenantID string

	// Metadata carries filename, page_numbers, title and category.
	Metadata map[string]any
}

// Hit is one similarity search result.
type Hit struct {
	// Text is the stored chunk content.
	Text string

	// Similarity is the cosine similarity score in [0,1].
	Similarity float64

	// Metadata is the stored chunk metadata.
	Metadata map[string]any
}

// VectorStore persists embedded chunks and answers nearest-neighbour
// queries scoped by tenant. Failures surface as domain.ErrStore, or
// domain.ErrNotFound for a missing table.
type VectorStore interface {
	// CreateTable creates the named table and its similarity index if
	// they do not already exist.
	CreateTable(ctx context.Context, table string) error

	// Upsert stores rows into table. Ownership of the chunks passes to
	// the store once this returns.
	Upsert(ctx context.Context, table string, rows []Row) error

	// Query returns up to topK rows nearest to vector, scoped to
	// tenantID, ordered by descending similarity.
	Query(ctx context.Context, table string, vector []float32, tenantID string, topK int) ([]Hit, error)

	// Close releases resources.
	Close() error
}
