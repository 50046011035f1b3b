package mcp

import (
	"github.com/veldtlabs/quarry/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point.
type Ports struct {
	// Ingest drives the document ingestion pipeline.
	Ingest driving.Ingestor

	// Query answers questions against the knowledge base.
	Query driving.QueryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingest == nil {
		return ErrMissingIngestor
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
