// Package mcp provides an MCP (Model Context Protocol) server adapter
// for Quarry. It exposes knowledge-base loading and querying as tools
// so AI assistants can ingest documents and ground their answers.
package mcp

import "errors"

// ErrMissingIngestor is returned when the ingest service is not provided.
var ErrMissingIngestor = errors.New("mcp: ingest service is required")

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
