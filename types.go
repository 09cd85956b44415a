package mcpclient

import (
	"github.com/Sathishruw/mcp-filesystem-client/internal/config"
	"github.com/Sathishruw/mcp-filesystem-client/internal/rpc"
)

// Re-export types from internal packages

// ===== Options and Configuration =====

// Options contains all configuration for a client connection.
// Prefer the functional options (WithCommand, WithLogger, ...) over
// constructing this directly.
type Options = config.Options

// NotificationHandler receives server notifications: the method name and the
// raw params payload. Notifications carry no id and expect no response.
type NotificationHandler = config.NotificationHandler

// ServerDef describes one launchable server in a servers.yaml file.
type ServerDef = config.ServerDef

// ===== Wire Types =====

// Tool describes one tool offered by a server: its name, human-readable
// description, and JSON Schema for its arguments. The schema is kept opaque;
// servers own their own validation.
type Tool = rpc.Tool

// ToolResult is the decoded result of a tools/call invocation.
// Content holds the returned blocks; IsError marks a tool-level failure.
type ToolResult = rpc.CallToolResult

// ContentItem is a single content block in a tool result.
type ContentItem = rpc.ContentItem

// InitializeResult is the server's response to the initialize handshake.
type InitializeResult = rpc.InitializeResult

// ImplementationInfo identifies a client or server implementation by name
// and version.
type ImplementationInfo = rpc.ImplementationInfo

// ServerCapabilities enumerates the protocol features a server supports.
type ServerCapabilities = rpc.ServerCapabilities

// ProtocolVersion is the MCP protocol revision this client speaks.
const ProtocolVersion = rpc.ProtocolVersion
