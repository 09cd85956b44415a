// Package subprocess provides the stdio transport for MCP servers.
//
// This package implements the Transport interface by spawning an MCP server
// as a child process and communicating via stdin/stdout. It handles process
// lifecycle management, message framing, and error handling.
package subprocess
