package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veldtlabs/quarry/internal/core/ports/driving"
)

// LoadDocumentsInput is the input schema for the load_documents tool.
type LoadDocumentsInput struct {
	Sources       []string `json:"sources" jsonschema:"URLs or file paths to ingest"`
	BusinessID    string   `json:"business_id" jsonschema:"tenant identifier the documents belong to"`
	TableName     string   `json:"table_name,omitempty" jsonschema:"target table; auto-generated when omitted"`
	MaxTokens     int      `json:"max_tokens,omitempty" jsonschema:"maximum tokens per chunk (default 512)"`
	CrawlInternal bool     `json:"crawl_internal,omitempty" jsonschema:"follow same-site links from the seeds"`
	MaxDepth      int      `json:"max_depth,omitempty" jsonschema:"link discovery depth when crawling (default 1)"`
	Category      string   `json:"category,omitempty" jsonschema:"optional tag stored with every chunk"`
}

// SourceFailureOutput reports one failed source.
type SourceFailureOutput struct {
	Source string `json:"source"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// LoadDocumentsOutput is the output schema for the load_documents tool.
type LoadDocumentsOutput struct {
	TableName string                `json:"table_name"`
	RowCount  int                   `json:"row_count"`
	Stored    []string              `json:"stored_files"`
	Failed    []SourceFailureOutput `json:"failed_sources,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// QueryKnowledgeInput is the input schema for the query_knowledge tool.
type QueryKnowledgeInput struct {
	Question       string  `json:"question" jsonschema:"the natural-language question to answer"`
	BusinessID     string  `json:"business_id" jsonschema:"tenant identifier to scope retrieval"`
	TableName      string  `json:"table_name" jsonschema:"table containing the knowledge base"`
	MatchThreshold float64 `json:"match_threshold,omitempty" jsonschema:"minimum similarity score 0-1 (default 0.7)"`
	MatchCount     int     `json:"match_count,omitempty" jsonschema:"maximum context chunks to return (default 3)"`
}

// SourceOutput is one ranked context chunk.
type SourceOutput struct {
	Text       string         `json:"text"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// QueryKnowledgeOutput is the output schema for the query_knowledge tool.
type QueryKnowledgeOutput struct {
	Answer       string         `json:"answer,omitempty"`
	Sources      []SourceOutput `json:"sources"`
	ContextCount int            `json:"context_count"`
	Error        string         `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_documents",
		Description: "Ingest documents (URLs or files) into the knowledge base",
	}, s.handleLoadDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_knowledge",
		Description: "Query the knowledge base with a natural-language question",
	}, s.handleQueryKnowledge)
}

// handleLoadDocuments handles the load_documents tool invocation.
func (s *Server) handleLoadDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadDocumentsInput,
) (*mcp.CallToolResult, LoadDocumentsOutput, error) {
	result, err := s.ports.Ingest.Ingest(ctx, driving.IngestRequest{
		Sources:       input.Sources,
		BusinessID:    input.BusinessID,
		TableName:     input.TableName,
		MaxTokens:     input.MaxTokens,
		CrawlInternal: input.CrawlInternal,
		MaxDepth:      input.MaxDepth,
		Category:      input.Category,
	})
	if err != nil {
		// Configuration errors surface as structured output so the
		// calling assistant can render a graceful failure.
		return nil, LoadDocumentsOutput{Error: err.Error()}, nil
	}

	output := LoadDocumentsOutput{
		TableName: result.TableName,
		RowCount:  result.ChunkCount,
		Stored:    result.Stored,
	}
	for _, f := range result.Failed {
		output.Failed = append(output.Failed, SourceFailureOutput{
			Source: f.SourceID,
			Stage:  f.Stage,
			Reason: f.Reason,
		})
	}
	return nil, output, nil
}

// handleQueryKnowledge handles the query_knowledge tool invocation.
func (s *Server) handleQueryKnowledge(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryKnowledgeInput,
) (*mcp.CallToolResult, QueryKnowledgeOutput, error) {
	result, err := s.ports.Query.Query(ctx, driving.QueryRequest{
		Question:       input.Question,
		BusinessID:     input.BusinessID,
		TableName:      input.TableName,
		MatchThreshold: input.MatchThreshold,
		MatchCount:     input.MatchCount,
	})
	if err != nil {
		return nil, QueryKnowledgeOutput{Error: err.Error()}, nil
	}

	output := QueryKnowledgeOutput{
		Answer:       result.Answer,
		Sources:      make([]SourceOutput, len(result.Sources)),
		ContextCount: result.ContextCount,
	}
	for i, src := range result.Sources {
		output.Sources[i] = SourceOutput{
			Text:       src.Text,
			Similarity: src.Similarity,
			Metadata:   src.Metadata,
		}
	}
	return nil, output, nil
}
