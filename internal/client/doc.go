// Package client implements the stateful Client for MCP tool servers.
//
// The client package provides a connection to a single server subprocess
// that persists across many tool invocations. Unlike the one-shot Call()
// function, Client enables:
//   - Many tool calls over one spawned subprocess
//   - Concurrent calls multiplexed over the same stdio pipes
//   - Tool discovery with a cached tool list
//   - Graceful shutdown of the server process
//
// The Client uses the protocol package for request/response correlation
// and manages its own goroutines for transport monitoring.
package client
