// Package driving provides interfaces for user-facing surfaces
// (primary/inbound ports). The CLI and MCP adapters call these; the
// implementations live in internal/core/services.
package driving
