// Package domain contains the core types of the ingestion and retrieval
// pipeline: sources, extracted documents, annotated blocks, chunks and
// run results. It has no dependencies on adapters or infrastructure.
package domain
