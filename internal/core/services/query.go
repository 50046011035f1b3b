package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
	"github.com/veldtlabs/quarry/internal/core/ports/driving"
	"github.com/veldtlabs/quarry/internal/logger"
)

// Ensure RetrievalRanker implements the interface.
var _ driving.QueryService = (*RetrievalRanker)(nil)

// Default retrieval parameters.
const (
	DefaultMatchThreshold = 0.7
	DefaultMatchCount     = 3
)

// RetrievalRanker answers questions by embedding them, querying the
// vector store scoped to a tenant, and assembling the ranked,
// thresholded context set. Read-only and stateless; queries run fully
// concurrently with each other and with ingestion.
type RetrievalRanker struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	llm      driven.CompletionService
}

// NewRetrievalRanker creates a ranker. The completion service is
// optional; when nil, queries return ranked sources without a composed
// answer.
func NewRetrievalRanker(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.CompletionService,
) *RetrievalRanker {
	return &RetrievalRanker{
		embedder: embedder,
		store:    store,
		llm:      llm,
	}
}

// Query retrieves and ranks context for the question. An empty context
// set is a valid result: the caller decides how to present "no answer
// found".
func (r *RetrievalRanker) Query(ctx context.Context, req driving.QueryRequest) (*domain.QueryResult, error) {
	threshold := req.MatchThreshold
	if threshold == 0 {
		threshold = DefaultMatchThreshold
	}
	count := req.MatchCount
	if count == 0 {
		count = DefaultMatchCount
	}
	if err := validateQuery(req, threshold, count); err != nil {
		return nil, err
	}

	logger.Section("Query")
	logger.Debug("Question: %q", req.Question)
	logger.Debug("Table %s, tenant %s, threshold %.2f, count %d",
		req.TableName, req.BusinessID, threshold, count)

	vector, err := r.embedder.Embed(ctx, req.Question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}

	hits, err := r.store.Query(ctx, req.TableName, vector, req.BusinessID, count)
	if err != nil {
		return nil, err
	}
	logger.Debug("Store returned %d candidate(s)", len(hits))

	sources := Rank(hits, threshold, count)

	result := &domain.QueryResult{
		Sources:      sources,
		ContextCount: len(sources),
	}
	if len(sources) == 0 {
		logger.Info("No context cleared the threshold")
		return result, nil
	}

	if r.llm != nil {
		answer, err := r.llm.Complete(ctx, composePrompt(req.Question, sources))
		if err != nil {
			return nil, fmt.Errorf("compose answer: %w", err)
		}
		result.Answer = answer
	}
	return result, nil
}

// Rank filters candidates below threshold, orders by descending
// similarity with the store's original order breaking ties, and
// truncates to count. Pure so the ranking policy is independently
// testable.
func Rank(hits []driven.Hit, threshold float64, count int) []domain.RankedContext {
	kept := make([]domain.RankedContext, 0, len(hits))
	for _, h := range hits {
		if h.Similarity < threshold {
			continue
		}
		kept = append(kept, domain.RankedContext{
			Text:       h.Text,
			Similarity: h.Similarity,
			Metadata:   h.Metadata,
		})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Similarity > kept[j].Similarity
	})
	if len(kept) > count {
		kept = kept[:count]
	}
	return kept
}

// composePrompt builds the answer-composition prompt from the question
// and the ranked context.
func composePrompt(question string, sources []domain.RankedContext) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the context below. ")
	b.WriteString("If the context does not contain the answer, say so.\n\nContext:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, s.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func validateQuery(req driving.QueryRequest, threshold float64, count int) error {
	if strings.TrimSpace(req.Question) == "" {
		return fmt.Errorf("%w: question is required", domain.ErrInvalidConfig)
	}
	if strings.TrimSpace(req.BusinessID) == "" {
		return fmt.Errorf("%w: business ID is required", domain.ErrInvalidConfig)
	}
	if strings.TrimSpace(req.TableName) == "" {
		return fmt.Errorf("%w: table name is required", domain.ErrInvalidConfig)
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: match threshold must be in [0,1]", domain.ErrInvalidConfig)
	}
	if count <= 0 {
		return fmt.Errorf("%w: match count must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
