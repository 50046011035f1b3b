// Package driven provides interfaces for infrastructure collaborators
// (secondary/outbound ports): fetching, extraction, embedding, vector
// storage and answer composition. The pipeline consumes these contracts;
// their implementations live under internal/adapters/driven and
// internal/extractors.
package driven
