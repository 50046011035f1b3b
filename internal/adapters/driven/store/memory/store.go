// Package memory provides an in-memory VectorStore for tests and
// development. Search is a brute-force cosine scan.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory vector store keyed by table name.
type Store struct {
	mu     sync.RWMutex
	tables map[string][]driven.Row
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{tables: make(map[string][]driven.Row)}
}

// CreateTable creates the named table if it does not exist.
func (s *Store) CreateTable(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = nil
	}
	return nil
}

// Upsert stores rows, replacing rows with matching IDs.
func (s *Store) Upsert(_ context.Context, table string, rows []driven.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("%w: table %s", domain.ErrNotFound, table)
	}

	byID := make(map[string]int, len(existing))
	for i, row := range existing {
		byID[row.ID] = i
	}
	for _, row := range rows {
		if i, ok := byID[row.ID]; ok {
			existing[i] = row
			continue
		}
		existing = append(existing, row)
		byID[row.ID] = len(existing) - 1
	}
	s.tables[table] = existing
	return nil
}

// Query returns the topK rows nearest to vector, scoped to tenantID.
func (s *Store) Query(_ context.Context, table string, vector []float32, tenantID string, topK int) ([]driven.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: table %s", domain.ErrNotFound, table)
	}

	var hits []driven.Hit
	for _, row := range rows {
		if row.TenantID != tenantID {
			continue
		}
		hits = append(hits, driven.Hit{
			Text:       row.Text,
			Similarity: cosine(vector, row.Vector),
			Metadata:   row.Metadata,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// Rows returns a copy of the table contents, for test assertions.
func (s *Store) Rows(table string) []driven.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.tables[table]
	out := make([]driven.Row, len(rows))
	copy(out, rows)
	return out
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
