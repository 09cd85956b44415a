// Package protocol implements JSON-RPC 2.0 request multiplexing for MCP servers.
//
// The protocol package provides a Mux that manages request/response
// correlation over a single stdio transport. Many goroutines can issue
// requests concurrently; responses are matched back to their callers by
// integer ID regardless of arrival order.
//
// The Mux handles:
//   - Assigning monotonically increasing request IDs
//   - Receiving and correlating responses
//   - Request timeout enforcement
//   - Dispatching server notifications
//
// Session builds the MCP layer on top: the initialize handshake, tool
// discovery, and tools/call invocation.
//
// Example usage:
//
//	transport := subprocess.NewStdioTransport(log, options)
//	transport.Start(ctx)
//
//	mux := protocol.NewMux(log, transport, nil)
//	mux.Start(ctx)
//
//	session := protocol.NewSession(log, mux, options)
//	session.Initialize(ctx)
//
//	text, err := session.CallToolText(ctx, "read_file", map[string]any{"path": "go.mod"})
package protocol
