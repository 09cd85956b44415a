package mcpclient

import (
	"context"
)

// Version is the client library version reported to servers during the
// initialize handshake.
const Version = "1.0.0"

// defaultClientName is reported to servers unless overridden via WithClientInfo.
const defaultClientName = "mcp-filesystem-client"

// Client provides a stateful connection to an MCP tool server subprocess.
//
// Unlike the one-shot Call() function, Client keeps the server running across
// many tool invocations and multiplexes concurrent calls over the same
// stdin/stdout pipes.
//
// Lifecycle: Clients are single-use. After Close(), create a new client with
// NewClient().
//
// Example usage:
//
//	client := NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    WithCommand("mcp-fileserver", "--base-dir", "."),
//	    WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Discover what the server offers
//	tools, err := client.ListTools(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Invoke a tool
//	text, err := client.CallToolText(ctx, "read_file", map[string]any{
//	    "path": "go.mod",
//	})
type Client interface {
	// Start spawns the server subprocess and begins reading its output.
	// Must be called before any other methods.
	// Returns LaunchError if the executable cannot be found or started.
	Start(ctx context.Context, opts ...Option) error

	// Initialize performs the MCP handshake: initialize request, then the
	// notifications/initialized notification. Runs at most once per client;
	// a second call returns ErrAlreadyInitialized. Tool operations before
	// Initialize return ErrNotInitialized.
	Initialize(ctx context.Context) error

	// ListTools queries the server for its tool list and caches the result.
	ListTools(ctx context.Context) ([]Tool, error)

	// AvailableTools returns the cached tool list from the most recent
	// ListTools, or nil if tools have not been listed yet.
	AvailableTools() []Tool

	// CallTool invokes a named tool and returns its decoded result.
	// Protocol failures (error response, timeout, dead session) surface as
	// errors; a result flagged isError is returned as-is for inspection.
	CallTool(ctx context.Context, name string, arguments map[string]any) (*ToolResult, error)

	// CallToolText invokes a tool and returns the joined text content.
	// A result flagged isError is folded into a ToolError.
	CallToolText(ctx context.Context, name string, arguments map[string]any) (string, error)

	// Ping checks that the server is responsive.
	Ping(ctx context.Context) error

	// ServerInfo returns the server's handshake response (name, version,
	// capabilities), or nil before Initialize.
	ServerInfo() *InitializeResult

	// Close terminates the server subprocess: graceful signal first, forced
	// kill after the grace period. After Close(), the client cannot be
	// reused. Safe to call multiple times.
	Close() error
}

// NewClient creates a new client.
//
// Call Start() with options to spawn the server, then Initialize():
//
//	client := NewClient()
//	err := client.Start(ctx,
//	    WithCommand("mcp-fileserver", "--base-dir", "."),
//	    WithLogger(slog.Default()),
//	)
func NewClient() Client {
	return newClientImpl()
}
