// Package github runs GitHub's official MCP server in a container and wraps
// its most used tools as typed Go methods.
//
// The personal access token is an opaque credential. It reaches the container
// through the subprocess environment, never through command arguments, and is
// never parsed or logged by this package.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	mcpclient "github.com/Sathishruw/mcp-filesystem-client"
)

// DefaultImage is the official GitHub MCP server container image.
const DefaultImage = "ghcr.io/github/github-mcp-server"

const (
	// tokenEnvVar is the variable the server reads its credential from.
	tokenEnvVar = "GITHUB_PERSONAL_ACCESS_TOKEN"

	// toolsetsEnvVar selects which tool groups the server enables.
	toolsetsEnvVar = "GITHUB_TOOLSETS"
)

// DefaultToolsets are the tool groups enabled when none are configured.
var DefaultToolsets = []string{"repos", "issues", "pull_requests", "code_security"}

// ErrNoToken is returned by NewClient when the token is empty.
var ErrNoToken = errors.New("github personal access token required")

// Client is a session with the GitHub MCP server. Create one with NewClient,
// bring it up with Start, and Close it when done.
type Client struct {
	log        *slog.Logger
	mcp        mcpclient.Client
	clientOpts []mcpclient.Option

	skipDockerCheck bool

	limiter *rate.Limiter
	cache   *gocache.Cache
}

// NewClient builds a client that will run the GitHub MCP server via
// `docker run`. The token must be a GitHub personal access token; it is
// forwarded to the container environment as-is.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = mcpclient.NopLogger()
	}

	// The -e flags name variables without values, so Docker copies them
	// from the subprocess environment. The token never appears in argv.
	clientOpts := []mcpclient.Option{
		mcpclient.WithCommand("docker", "run", "-i", "--rm",
			"-e", tokenEnvVar,
			"-e", toolsetsEnvVar,
			options.Image),
		mcpclient.WithEnv(map[string]string{
			tokenEnvVar:    token,
			toolsetsEnvVar: strings.Join(options.Toolsets, ","),
		}),
		mcpclient.WithClientInfo("mcp-github-client", mcpclient.Version),
		mcpclient.WithLogger(log),
	}
	if options.CallTimeout > 0 {
		clientOpts = append(clientOpts, mcpclient.WithCallTimeout(options.CallTimeout))
	}
	clientOpts = append(clientOpts, options.ClientOptions...)

	c := &Client{
		log:             log.With("component", "github"),
		mcp:             mcpclient.NewClient(),
		clientOpts:      clientOpts,
		skipDockerCheck: options.SkipDockerCheck,
	}

	if options.RateLimit > 0 {
		burst := options.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(options.RateLimit, burst)
	}

	if options.CacheTTL > 0 {
		c.cache = gocache.New(options.CacheTTL, 2*options.CacheTTL)
	}

	return c, nil
}

// Start launches the server container, performs the MCP handshake, and
// discovers the available tools. Docker availability is verified first so a
// missing runtime fails fast with a LaunchError.
func (c *Client) Start(ctx context.Context) error {
	if !c.skipDockerCheck {
		if err := checkDocker(ctx); err != nil {
			return err
		}
	}

	if err := c.mcp.Start(ctx, c.clientOpts...); err != nil {
		return fmt.Errorf("start github server: %w", err)
	}

	if err := c.mcp.Initialize(ctx); err != nil {
		_ = c.mcp.Close()
		return fmt.Errorf("initialize github server: %w", err)
	}

	tools, err := c.mcp.ListTools(ctx)
	if err != nil {
		_ = c.mcp.Close()
		return fmt.Errorf("list github tools: %w", err)
	}

	c.log.Info("GitHub MCP server ready", "tools", len(tools))

	return nil
}

// Close terminates the server container and releases the session.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// ServerInfo returns the server's initialize result, or nil before Start.
func (c *Client) ServerInfo() *mcpclient.InitializeResult {
	return c.mcp.ServerInfo()
}

// ListTools fetches the server's current tool list.
func (c *Client) ListTools(ctx context.Context) ([]mcpclient.Tool, error) {
	return c.mcp.ListTools(ctx)
}

// CallTool invokes any server tool by name, including ones without a typed
// wrapper. The call is rate limited but never cached.
func (c *Client) CallTool(ctx context.Context, tool string, args map[string]any) (*mcpclient.ToolResult, error) {
	return c.call(ctx, tool, args, false)
}

// AvailableTools returns the tools discovered during Start.
func (c *Client) AvailableTools() []mcpclient.Tool {
	return c.mcp.AvailableTools()
}

// ToolInfo looks up a discovered tool by name.
func (c *Client) ToolInfo(name string) (*mcpclient.Tool, bool) {
	for _, tool := range c.mcp.AvailableTools() {
		if tool.Name == name {
			return &tool, true
		}
	}

	return nil, false
}

// call funnels every wrapper through rate limiting and, for read-only tools,
// the result cache.
func (c *Client) call(ctx context.Context, tool string, args map[string]any, readOnly bool) (*mcpclient.ToolResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var key string
	if readOnly && c.cache != nil {
		if encoded, err := json.Marshal(args); err == nil {
			key = tool + ":" + string(encoded)
			if cached, ok := c.cache.Get(key); ok {
				c.log.Debug("Cache hit", "tool", tool)
				return cached.(*mcpclient.ToolResult), nil
			}
		}
	}

	result, err := c.mcp.CallTool(ctx, tool, args)
	if err != nil {
		return nil, err
	}

	if key != "" && !result.IsError {
		c.cache.Set(key, result, gocache.DefaultExpiration)
	}

	return result, nil
}
