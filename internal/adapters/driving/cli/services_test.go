package cli

import (
	"context"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driving"
)

// fakeIngestor is a scripted driving.Ingestor for command tests.
type fakeIngestor struct {
	result  *domain.IngestResult
	err     error
	lastReq driving.IngestRequest
}

func (f *fakeIngestor) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	f.lastReq = req
	return f.result, f.err
}

// fakeQueryService is a scripted driving.QueryService for command tests.
type fakeQueryService struct {
	result  *domain.QueryResult
	err     error
	lastReq driving.QueryRequest
}

func (f *fakeQueryService) Query(_ context.Context, req driving.QueryRequest) (*domain.QueryResult, error) {
	f.lastReq = req
	return f.result, f.err
}

// setupTestServices installs fakes and returns a cleanup restoring the
// previous wiring.
func setupTestServices(ingest *fakeIngestor, query *fakeQueryService) func() {
	prevIngest, prevQuery := ingestService, queryService
	ingestService = ingest
	queryService = query
	return func() {
		ingestService = prevIngest
		queryService = prevQuery
	}
}
