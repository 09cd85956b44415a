package tracing

// Span attribute keys used by the MCP client instrumentation.
const (
	// AttrToolName is the tool invoked by a tools/call operation.
	AttrToolName = "mcp.tool.name"

	// AttrRequestID is the JSON-RPC request id assigned to a call.
	AttrRequestID = "mcp.request.id"

	// AttrRPCMethod is the JSON-RPC method of a request.
	AttrRPCMethod = "rpc.method"

	// AttrSessionID identifies the client session a span belongs to.
	AttrSessionID = "session.id"

	// AttrServerName is the server implementation name from initialize.
	AttrServerName = "mcp.server.name"
)

// Span name prefixes for consistent naming across the client.
const (
	// SpanPrefixTool prefixes tools/call spans, e.g. "mcp.tool.read_file".
	SpanPrefixTool = "mcp.tool."

	// SpanPrefixRPC prefixes wire-level request spans, e.g.
	// "mcp.rpc.tools/list".
	SpanPrefixRPC = "mcp.rpc."

	// SpanInitialize names the handshake span.
	SpanInitialize = "mcp.initialize"

	// SpanToolsList names the tool discovery span.
	SpanToolsList = "mcp.tools.list"
)
