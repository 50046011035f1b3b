package driving

import (
	"context"

	"github.com/veldtlabs/quarry/internal/core/domain"
)

// QueryRequest describes one knowledge-base question.
type QueryRequest struct {
	// Question is the natural-language query.
	Question string

	// BusinessID scopes retrieval to one tenant. Required.
	BusinessID string

	// TableName is the table to search. Required.
	TableName string

	// MatchThreshold is the minimum similarity in [0,1]. Zero means the
	// default.
	MatchThreshold float64

	// MatchCount is the maximum number of context chunks. Zero means the
	// default.
	MatchCount int
}

// QueryService answers questions against the knowledge base.
type QueryService interface {
	// Query embeds the question, retrieves and ranks context, and
	// optionally composes an answer. An empty context set is a valid
	// result, not an error.
	Query(ctx context.Context, req QueryRequest) (*domain.QueryResult, error)
}
