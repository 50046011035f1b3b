package mcp

import (
	"context"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driving"
)

// mockIngestor is a mock implementation of driving.Ingestor.
type mockIngestor struct {
	result  *domain.IngestResult
	err     error
	lastReq driving.IngestRequest
}

func (m *mockIngestor) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	m.lastReq = req
	return m.result, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result  *domain.QueryResult
	err     error
	lastReq driving.QueryRequest
}

func (m *mockQueryService) Query(_ context.Context, req driving.QueryRequest) (*domain.QueryResult, error) {
	m.lastReq = req
	return m.result, m.err
}
