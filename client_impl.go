package mcpclient

import (
	"context"

	"github.com/Sathishruw/mcp-filesystem-client/internal/client"
	"github.com/Sathishruw/mcp-filesystem-client/internal/config"
)

// clientWrapper wraps the internal client to adapt it to the public interface.
type clientWrapper struct {
	impl *client.Client
}

// Compile-time check that *clientWrapper implements the Client interface.
var _ Client = (*clientWrapper)(nil)

// newClientImpl creates the internal client implementation.
func newClientImpl() Client {
	return &clientWrapper{impl: client.New()}
}

// Start spawns the server subprocess and begins reading its output.
func (c *clientWrapper) Start(ctx context.Context, opts ...Option) error {
	return c.impl.Start(ctx, applyOptionsToConfig(opts))
}

// Initialize performs the MCP handshake.
func (c *clientWrapper) Initialize(ctx context.Context) error {
	return c.impl.Initialize(ctx)
}

// ListTools queries the server for its tool list and caches the result.
func (c *clientWrapper) ListTools(ctx context.Context) ([]Tool, error) {
	return c.impl.ListTools(ctx)
}

// AvailableTools returns the cached tool list.
func (c *clientWrapper) AvailableTools() []Tool {
	return c.impl.AvailableTools()
}

// CallTool invokes a named tool and returns its decoded result.
func (c *clientWrapper) CallTool(
	ctx context.Context,
	name string,
	arguments map[string]any,
) (*ToolResult, error) {
	return c.impl.CallTool(ctx, name, arguments)
}

// CallToolText invokes a tool and returns the joined text content.
func (c *clientWrapper) CallToolText(
	ctx context.Context,
	name string,
	arguments map[string]any,
) (string, error) {
	return c.impl.CallToolText(ctx, name, arguments)
}

// Ping checks that the server is responsive.
func (c *clientWrapper) Ping(ctx context.Context) error {
	return c.impl.Ping(ctx)
}

// ServerInfo returns the server's handshake response.
func (c *clientWrapper) ServerInfo() *InitializeResult {
	return c.impl.ServerInfo()
}

// Close terminates the server subprocess.
func (c *clientWrapper) Close() error {
	return c.impl.Close()
}

// applyOptionsToConfig converts public options to internal config.Options.
func applyOptionsToConfig(opts []Option) *config.Options {
	// Options is a type alias to config.Options, so direct use works
	return applyOptions(opts)
}
